package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-reporting-api/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

const employeeColumns = `id::text, first_name, last_name, position, department, parent_id::text, created_at, updated_at`

const (
	insertEmployeeQuery = `
        INSERT INTO employees (id, first_name, last_name, position, department, parent_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + employeeColumns

	updateEmployeeQuery = `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               position = $3,
               department = $4,
               parent_id = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING ` + employeeColumns

	deleteEmployeeQuery = `DELETE FROM employees WHERE id = $1`

	findEmployeeQuery = `
        SELECT ` + employeeColumns + `
          FROM employees
         WHERE id = $1
         LIMIT 1`

	findDirectReportsQuery = `
        SELECT ` + employeeColumns + `
          FROM employees
         WHERE parent_id = $1
         ORDER BY created_at, id`

	employeeExistsQuery = `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`
)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
// 階層の読み込み (FindDirectReports) と報酬側の存在確認 (EmployeeExists) も担います。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertEmployeeQuery,
		e.ID,
		e.FirstName,
		e.LastName,
		e.Position,
		e.Department,
		e.ParentID,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員の属性と上司を置き換えます。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, updateEmployeeQuery,
		e.FirstName,
		e.LastName,
		e.Position,
		e.Department,
		e.ParentID,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。部下が残っている場合は外部キー制約で失敗します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, deleteEmployeeQuery, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return employee.ErrEmployeeHasReports
		}
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。存在しない場合は employee.ErrEmployeeNotFound を返します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanEmployee(exec.QueryRow(ctx, findEmployeeQuery, id))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindDirectReports は managerID を上司とする社員を作成順で返します。
// 返却される各社員の部下コレクションは未読み込みです。
func (r *EmployeeRepository) FindDirectReports(ctx context.Context, managerID string) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, findDirectReportsQuery, managerID)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	reports := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		reports = append(reports, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return reports, nil
}

// EmployeeExists は社員の存在有無を返します。
func (r *EmployeeRepository) EmployeeExists(ctx context.Context, id string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, employeeExistsQuery, id).Scan(&exists); err != nil {
		return false, translateEmployeePgError(err)
	}
	return exists, nil
}

// List は社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.ParentID != nil {
		args = append(args, *filter.ParentID)
		whereClause = " WHERE parent_id = $" + strconv.Itoa(len(args))
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at, id
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id         string
		firstName  sql.NullString
		lastName   sql.NullString
		position   sql.NullString
		department sql.NullString
		parentID   sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(
		&id,
		&firstName,
		&lastName,
		&position,
		&department,
		&parentID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		ID:         id,
		FirstName:  nullableString(firstName),
		LastName:   nullableString(lastName),
		Position:   nullableString(position),
		Department: nullableString(department),
		ParentID:   nullableString(parentID),
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
	}, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmployeeExists
		case foreignKeyViolationCode:
			return employee.ErrParentNotFound
		case checkViolationCode:
			// employees_parent_not_self
			return employee.ErrHierarchyCycle
		}
	}

	return err
}
