package compensation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// UseCase は報酬ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCompensation(ctx context.Context, in CreateCompensationInput) (*Compensation, error)
	GetCompensation(ctx context.Context, in GetCompensationInput) (*Compensation, error)
}

// Service は報酬に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	employees EmployeeChecker
	clock     Clock
	tx        TransactionManager
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeChecker, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employees: employees, clock: clock, tx: tx}
}

// CreateCompensationInput は報酬作成時の入力です。
type CreateCompensationInput struct {
	EmployeeID    string
	Salary        decimal.Decimal
	EffectiveDate *time.Time
}

// GetCompensationInput は社員 ID による報酬取得の入力です。
type GetCompensationInput struct {
	EmployeeID string
}

// CreateCompensation は既存の社員に報酬を登録します。社員 1 名につき 1 件までです。
func (s *Service) CreateCompensation(ctx context.Context, in CreateCompensationInput) (*Compensation, error) {
	employeeID, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if in.Salary.IsNegative() {
		return nil, ErrInvalidSalary
	}

	var created *Compensation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exists, err := s.employees.EmployeeExists(txCtx, employeeID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEmployeeNotFound
		}

		existing, err := s.repo.FindByEmployeeID(txCtx, employeeID)
		if err != nil && !errors.Is(err, ErrCompensationNotFound) {
			return err
		}
		if existing != nil {
			return ErrCompensationAlreadyExists
		}

		var effective *time.Time
		if in.EffectiveDate != nil {
			t := in.EffectiveDate.UTC()
			effective = &t
		}

		result, err := s.repo.Create(txCtx, &Compensation{
			ID:            uuid.NewString(),
			EmployeeID:    employeeID,
			Salary:        in.Salary,
			EffectiveDate: effective,
			CreatedAt:     s.clock.Now(),
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetCompensation は社員の報酬を取得します。
func (s *Service) GetCompensation(ctx context.Context, in GetCompensationInput) (*Compensation, error) {
	employeeID, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	var result *Compensation
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByEmployeeID(txCtx, employeeID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeEmployeeID(raw string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}
	return parsed.String(), nil
}
