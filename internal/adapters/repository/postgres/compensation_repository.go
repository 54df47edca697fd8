package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/codex-reporting-api/internal/core/compensation"
	pgdb "github.com/ogurasousui/codex-reporting-api/internal/platform/db/postgres"
)

// salary は numeric の精度を保つため text で受け渡します。
const compensationColumns = `id::text, employee_id::text, salary::text, effective_date, created_at`

const (
	insertCompensationQuery = `
        INSERT INTO compensations (id, employee_id, salary, effective_date, created_at)
        VALUES ($1, $2, $3::numeric, $4, $5)
        RETURNING ` + compensationColumns

	findCompensationQuery = `
        SELECT ` + compensationColumns + `
          FROM compensations
         WHERE employee_id = $1
         LIMIT 1`
)

// CompensationRepository は PostgreSQL を利用した報酬情報の永続化実装です。
type CompensationRepository struct {
	pool pgdb.Queryer
}

// NewCompensationRepository は CompensationRepository を生成します。
func NewCompensationRepository(pool pgdb.Queryer) *CompensationRepository {
	return &CompensationRepository{pool: pool}
}

// Create は報酬情報を登録します。
func (r *CompensationRepository) Create(ctx context.Context, c *compensation.Compensation) (*compensation.Compensation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertCompensationQuery,
		c.ID,
		c.EmployeeID,
		c.Salary.String(),
		c.EffectiveDate,
		c.CreatedAt,
	)

	created, err := scanCompensation(row)
	if err != nil {
		return nil, translateCompensationPgError(err)
	}
	return created, nil
}

// FindByEmployeeID は社員 ID に紐づく報酬情報を取得します。
func (r *CompensationRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*compensation.Compensation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanCompensation(exec.QueryRow(ctx, findCompensationQuery, employeeID))
	if err != nil {
		return nil, translateCompensationPgError(err)
	}
	return found, nil
}

func scanCompensation(row pgx.Row) (*compensation.Compensation, error) {
	var (
		id            string
		employeeID    string
		salaryText    string
		effectiveDate *time.Time
		createdAt     time.Time
	)

	if err := row.Scan(&id, &employeeID, &salaryText, &effectiveDate, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, compensation.ErrCompensationNotFound
		}
		return nil, err
	}

	salary, err := decimal.NewFromString(salaryText)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse salary %q: %w", salaryText, err)
	}

	if effectiveDate != nil {
		t := effectiveDate.UTC()
		effectiveDate = &t
	}

	return &compensation.Compensation{
		ID:            id,
		EmployeeID:    employeeID,
		Salary:        salary,
		EffectiveDate: effectiveDate,
		CreatedAt:     createdAt.UTC(),
	}, nil
}

func translateCompensationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return compensation.ErrCompensationNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return compensation.ErrCompensationAlreadyExists
		case foreignKeyViolationCode:
			return compensation.ErrEmployeeNotFound
		case checkViolationCode:
			return compensation.ErrInvalidSalary
		}
	}

	return err
}
