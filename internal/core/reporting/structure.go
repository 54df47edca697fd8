package reporting

import "github.com/ogurasousui/codex-reporting-api/internal/core/employee"

// ReportingStructure はリクエストごとに算出される報告ラインのビューです。永続化されません。
// ルート社員が存在しない場合は両フィールドとも nil になります。
type ReportingStructure struct {
	Employee        *employee.Employee
	NumberOfReports *int
}

// Found はルート社員が見つかったかを返します。
func (r *ReportingStructure) Found() bool {
	return r != nil && r.Employee != nil
}

func newReportingStructure(root *employee.Employee, count int) *ReportingStructure {
	return &ReportingStructure{Employee: root, NumberOfReports: &count}
}
