// Package presenter は HTTP と gRPC で共通のレスポンス表現を組み立てます。
package presenter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/codex-reporting-api/internal/core/compensation"
	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
)

// EmployeeView は社員の JSON 表現です。部下は読み込み済みの場合のみ含まれます。
type EmployeeView struct {
	EmployeeID    string          `json:"employeeId"`
	FirstName     *string         `json:"firstName"`
	LastName      *string         `json:"lastName"`
	Position      *string         `json:"position"`
	Department    *string         `json:"department"`
	ParentID      *string         `json:"parentId,omitempty"`
	DirectReports []*EmployeeView `json:"directReports,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ReportingStructureView は報告ラインの JSON 表現です。
type ReportingStructureView struct {
	Employee        *EmployeeView `json:"employee"`
	NumberOfReports int           `json:"numberOfReports"`
}

// EmployeeListView は社員一覧の JSON 表現です。
type EmployeeListView struct {
	Employees     []*EmployeeView `json:"employees"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

// CompensationView は報酬情報の JSON 表現です。
type CompensationView struct {
	CompensationID string          `json:"compensationId"`
	EmployeeID     string          `json:"employeeId"`
	Salary         decimal.Decimal `json:"salary"`
	EffectiveDate  *time.Time      `json:"effectiveDate,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NewEmployeeView は社員と読み込み済みの部下ツリーを変換します。
// 深い階層でもスタックを消費しないよう明示的なスタックで辿ります。
func NewEmployeeView(root *employee.Employee) *EmployeeView {
	if root == nil {
		return nil
	}

	type pending struct {
		src *employee.Employee
		dst *EmployeeView
	}

	rootView := newFlatEmployeeView(root)
	stack := []pending{{src: root, dst: rootView}}
	for len(stack) > 0 {
		last := len(stack) - 1
		p := stack[last]
		stack = stack[:last]

		if !p.src.DirectReportsLoaded() {
			continue
		}
		reports := p.src.DirectReports()
		p.dst.DirectReports = make([]*EmployeeView, len(reports))
		for i, report := range reports {
			view := newFlatEmployeeView(report)
			p.dst.DirectReports[i] = view
			stack = append(stack, pending{src: report, dst: view})
		}
	}
	return rootView
}

func newFlatEmployeeView(e *employee.Employee) *EmployeeView {
	return &EmployeeView{
		EmployeeID: e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Position:   e.Position,
		Department: e.Department,
		ParentID:   e.ParentID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// NewEmployeeListView は一覧結果を変換します。
func NewEmployeeListView(result *employee.ListEmployeesResult) *EmployeeListView {
	view := &EmployeeListView{Employees: make([]*EmployeeView, 0)}
	if result == nil {
		return view
	}
	for _, e := range result.Employees {
		view.Employees = append(view.Employees, newFlatEmployeeView(e))
	}
	view.NextPageToken = result.NextPageToken
	return view
}

// NewReportingStructureView は見つかった報告ラインを変換します。未検出の場合は nil です。
func NewReportingStructureView(rs *reporting.ReportingStructure) *ReportingStructureView {
	if !rs.Found() {
		return nil
	}
	count := 0
	if rs.NumberOfReports != nil {
		count = *rs.NumberOfReports
	}
	return &ReportingStructureView{
		Employee:        NewEmployeeView(rs.Employee),
		NumberOfReports: count,
	}
}

// NewCompensationView は報酬情報を変換します。
func NewCompensationView(c *compensation.Compensation) *CompensationView {
	if c == nil {
		return nil
	}
	return &CompensationView{
		CompensationID: c.ID,
		EmployeeID:     c.EmployeeID,
		Salary:         c.Salary,
		EffectiveDate:  c.EffectiveDate,
		CreatedAt:      c.CreatedAt,
	}
}
