package employee

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; ok {
		return nil, ErrEmployeeExists
	}
	r.employees[e.ID] = cloneEmployee(e)
	r.order = append(r.order, e.ID)
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[e.ID] = cloneEmployee(e)
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) FindDirectReports(_ context.Context, managerID string) ([]*Employee, error) {
	reports := []*Employee{}
	for _, id := range r.order {
		emp := r.employees[id]
		if emp.ParentID != nil && *emp.ParentID == managerID {
			reports = append(reports, cloneEmployee(emp))
		}
	}
	return reports, nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	var filtered []*Employee
	for _, id := range r.order {
		emp := r.employees[id]
		if filter.ParentID != nil && (emp.ParentID == nil || *emp.ParentID != *filter.ParentID) {
			continue
		}
		filtered = append(filtered, cloneEmployee(emp))
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, "", nil
	}

	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	nextToken := ""
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return filtered[filter.Offset:end], nextToken, nil
}

func cloneEmployee(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	copy := *emp
	copy.FirstName = cloneString(emp.FirstName)
	copy.LastName = cloneString(emp.LastName)
	copy.Position = cloneString(emp.Position)
	copy.Department = cloneString(emp.Department)
	copy.ParentID = cloneString(emp.ParentID)
	return &copy
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func strPtr(s string) *string {
	return &s
}

func mustCreate(t *testing.T, svc *Service, attrs Attributes) *Employee {
	t.Helper()
	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Attributes: attrs})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	return created
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Attributes: Attributes{
		FirstName:  strPtr("  John "),
		LastName:   strPtr(" Lennon "),
		Position:   strPtr("Development Manager"),
		Department: strPtr("   "),
	}})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("expected generated uuid, got %q", created.ID)
	}
	if created.FirstName == nil || *created.FirstName != "John" {
		t.Fatalf("expected trimmed first name, got %+v", created.FirstName)
	}
	if created.LastName == nil || *created.LastName != "Lennon" {
		t.Fatalf("expected trimmed last name, got %+v", created.LastName)
	}
	if created.Department != nil {
		t.Fatalf("expected blank department to be nil, got %q", *created.Department)
	}
	if !created.IsRoot() {
		t.Fatalf("expected employee without parent to be a root")
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_WithParent(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	manager := mustCreate(t, svc, Attributes{FirstName: strPtr("John")})
	report := mustCreate(t, svc, Attributes{FirstName: strPtr("Paul"), ParentID: strPtr(manager.ID)})

	if report.ParentID == nil || *report.ParentID != manager.ID {
		t.Fatalf("expected parent %s, got %+v", manager.ID, report.ParentID)
	}
}

func TestService_CreateEmployee_UnknownParent(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Attributes: Attributes{
		ParentID: strPtr(uuid.NewString()),
	}})
	if !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
}

func TestService_CreateEmployee_InvalidParentID(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Attributes: Attributes{
		ParentID: strPtr("not-a-uuid"),
	}})
	if !errors.Is(err, ErrInvalidParentID) {
		t.Fatalf("expected ErrInvalidParentID, got %v", err)
	}
}

func TestService_ReplaceEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	manager := mustCreate(t, svc, Attributes{FirstName: strPtr("John")})
	created := mustCreate(t, svc, Attributes{FirstName: strPtr("Ringo"), Position: strPtr("Developer V")})

	clk.now = clk.now.Add(time.Hour)

	updated, err := svc.ReplaceEmployee(context.Background(), ReplaceEmployeeInput{
		ID: created.ID,
		Attributes: Attributes{
			FirstName: strPtr(" Ringo "),
			LastName:  strPtr("Starr"),
			ParentID:  strPtr(manager.ID),
		},
	})
	if err != nil {
		t.Fatalf("ReplaceEmployee returned error: %v", err)
	}

	if updated.LastName == nil || *updated.LastName != "Starr" {
		t.Fatalf("expected last name to be replaced, got %+v", updated.LastName)
	}
	if updated.Position != nil {
		t.Fatalf("expected omitted position to be cleared, got %q", *updated.Position)
	}
	if updated.ParentID == nil || *updated.ParentID != manager.ID {
		t.Fatalf("expected parent to be replaced, got %+v", updated.ParentID)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}
}

func TestService_ReplaceEmployee_RejectsCycle(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	root := mustCreate(t, svc, Attributes{FirstName: strPtr("A")})
	child := mustCreate(t, svc, Attributes{FirstName: strPtr("B"), ParentID: strPtr(root.ID)})
	grandchild := mustCreate(t, svc, Attributes{FirstName: strPtr("C"), ParentID: strPtr(child.ID)})

	_, err := svc.ReplaceEmployee(context.Background(), ReplaceEmployeeInput{
		ID:         root.ID,
		Attributes: Attributes{FirstName: strPtr("A"), ParentID: strPtr(grandchild.ID)},
	})
	if !errors.Is(err, ErrHierarchyCycle) {
		t.Fatalf("expected ErrHierarchyCycle, got %v", err)
	}

	_, err = svc.ReplaceEmployee(context.Background(), ReplaceEmployeeInput{
		ID:         child.ID,
		Attributes: Attributes{FirstName: strPtr("B"), ParentID: strPtr(child.ID)},
	})
	if !errors.Is(err, ErrHierarchyCycle) {
		t.Fatalf("expected self parent to be rejected, got %v", err)
	}
}

func TestService_ReplaceEmployee_NotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	_, err := svc.ReplaceEmployee(context.Background(), ReplaceEmployeeInput{ID: uuid.NewString()})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_GetEmployee_InvalidID(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	for _, id := range []string{"", "   ", "emp-1"} {
		if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: id}); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID for %q, got %v", id, err)
		}
	}
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	manager := mustCreate(t, svc, Attributes{FirstName: strPtr("John")})
	report := mustCreate(t, svc, Attributes{FirstName: strPtr("Paul"), ParentID: strPtr(manager.ID)})

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: manager.ID}); !errors.Is(err, ErrEmployeeHasReports) {
		t.Fatalf("expected ErrEmployeeHasReports, got %v", err)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: report.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: manager.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: manager.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound after delete, got %v", err)
	}
}

func TestService_ListEmployees_FilterAndPagination(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	manager := mustCreate(t, svc, Attributes{FirstName: strPtr("John")})
	for i := 0; i < 3; i++ {
		mustCreate(t, svc, Attributes{FirstName: strPtr("Report" + strconv.Itoa(i)), ParentID: strPtr(manager.ID)})
	}

	page1, err := svc.ListEmployees(context.Background(), ListEmployeesInput{ParentID: strPtr(manager.ID), PageSize: 2})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(page1.Employees) != 2 {
		t.Fatalf("expected 2 employees on first page, got %d", len(page1.Employees))
	}
	if page1.NextPageToken == "" {
		t.Fatalf("expected next page token")
	}

	page2, err := svc.ListEmployees(context.Background(), ListEmployeesInput{
		ParentID:  strPtr(manager.ID),
		PageSize:  2,
		PageToken: page1.NextPageToken,
	})
	if err != nil {
		t.Fatalf("ListEmployees page2 returned error: %v", err)
	}
	if len(page2.Employees) != 1 || page2.NextPageToken != "" {
		t.Fatalf("expected last page with 1 employee, got %d (token %q)", len(page2.Employees), page2.NextPageToken)
	}

	all, err := svc.ListEmployees(context.Background(), ListEmployeesInput{})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(all.Employees) != 4 {
		t.Fatalf("expected 4 employees without filter, got %d", len(all.Employees))
	}
}

func TestService_ListEmployees_InvalidPaging(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "-1"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
