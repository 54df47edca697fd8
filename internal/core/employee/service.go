package employee

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
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
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxAttributeLength  = 100
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	newID func() string
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	ReplaceEmployee(ctx context.Context, in ReplaceEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, newID: uuid.NewString}
}

// Attributes は社員の可変属性です。空文字列は未設定として扱います。
type Attributes struct {
	FirstName  *string
	LastName   *string
	Position   *string
	Department *string
	ParentID   *string
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Attributes
}

// ReplaceEmployeeInput は社員の全属性を置き換える際の入力です。
type ReplaceEmployeeInput struct {
	ID string
	Attributes
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	ParentID  *string
	PageSize  int
	PageToken string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	attrs, err := normalizeAttributes(in.Attributes)
	if err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if attrs.ParentID != nil {
			if err := s.ensureParentExists(txCtx, *attrs.ParentID); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		emp := &Employee{
			ID:         s.newID(),
			FirstName:  attrs.FirstName,
			LastName:   attrs.LastName,
			Position:   attrs.Position,
			Department: attrs.Department,
			ParentID:   attrs.ParentID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		result, err := s.repo.Create(txCtx, emp)
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

// ReplaceEmployee は社員の属性をすべて置き換えます。上司の変更は循環しないことを検証します。
func (s *Service) ReplaceEmployee(ctx context.Context, in ReplaceEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	attrs, err := normalizeAttributes(in.Attributes)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if attrs.ParentID != nil && !sameID(existing.ParentID, attrs.ParentID) {
			if err := s.ensureNoCycle(txCtx, id, *attrs.ParentID); err != nil {
				return err
			}
		}

		existing.FirstName = attrs.FirstName
		existing.LastName = attrs.LastName
		existing.Position = attrs.Position
		existing.Department = attrs.Department
		existing.ParentID = attrs.ParentID
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。直属の部下が残っている場合は削除できません。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		reports, err := s.repo.FindDirectReports(txCtx, id)
		if err != nil {
			return err
		}
		if len(reports) > 0 {
			return ErrEmployeeHasReports
		}
		return s.repo.Delete(txCtx, id)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
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

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	parentID, err := normalizeOptionalID(in.ParentID, ErrInvalidParentID)
	if err != nil {
		return nil, err
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			ParentID: parentID,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) ensureParentExists(ctx context.Context, parentID string) error {
	if _, err := s.repo.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return ErrParentNotFound
		}
		return err
	}
	return nil
}

// ensureNoCycle は新しい上司から祖先方向へ辿り、id 自身に到達しないことを確認します。
func (s *Service) ensureNoCycle(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return ErrHierarchyCycle
	}

	seen := map[string]struct{}{}
	current := parentID
	for {
		ancestor, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, ErrEmployeeNotFound) && current == parentID {
				return ErrParentNotFound
			}
			return err
		}
		if ancestor.ID == id {
			return ErrHierarchyCycle
		}
		if _, dup := seen[ancestor.ID]; dup {
			return fmt.Errorf("ancestor %s: %w", ancestor.ID, ErrHierarchyCycle)
		}
		seen[ancestor.ID] = struct{}{}

		if ancestor.ParentID == nil {
			return nil
		}
		current = *ancestor.ParentID
	}
}

func normalizeAttributes(in Attributes) (Attributes, error) {
	var out Attributes
	var err error

	if out.FirstName, err = normalizeText(in.FirstName); err != nil {
		return Attributes{}, fmt.Errorf("first_name: %w", err)
	}
	if out.LastName, err = normalizeText(in.LastName); err != nil {
		return Attributes{}, fmt.Errorf("last_name: %w", err)
	}
	if out.Position, err = normalizeText(in.Position); err != nil {
		return Attributes{}, fmt.Errorf("position: %w", err)
	}
	if out.Department, err = normalizeText(in.Department); err != nil {
		return Attributes{}, fmt.Errorf("department: %w", err)
	}
	if out.ParentID, err = normalizeOptionalID(in.ParentID, ErrInvalidParentID); err != nil {
		return Attributes{}, err
	}
	return out, nil
}

func normalizeText(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxAttributeLength {
		return nil, ErrInvalidName
	}
	return &trimmed, nil
}

func normalizeID(raw string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return parsed.String(), nil
}

func normalizeOptionalID(raw *string, invalid error) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, invalid
	}
	id := parsed.String()
	return &id, nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
