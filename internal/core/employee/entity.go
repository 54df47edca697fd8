package employee

import "time"

// Employee は組織階層の 1 ノードを表す社員エンティティです。
// 上司との関係は ParentID のみで保持し、部下コレクションは必要になった時点で明示的に読み込みます。
type Employee struct {
	ID         string
	FirstName  *string
	LastName   *string
	Position   *string
	Department *string
	ParentID   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	directReports []*Employee
	reportsLoaded bool
}

// DirectReports は読み込み済みの直属の部下を返します。未読み込みの場合は nil です。
func (e *Employee) DirectReports() []*Employee {
	if e == nil {
		return nil
	}
	return e.directReports
}

// SetDirectReports は直属の部下コレクションを設定し、読み込み済みとして扱います。
func (e *Employee) SetDirectReports(reports []*Employee) {
	if reports == nil {
		reports = []*Employee{}
	}
	e.directReports = reports
	e.reportsLoaded = true
}

// DirectReportsLoaded は部下コレクションが読み込み済みかを返します。
func (e *Employee) DirectReportsLoaded() bool {
	return e != nil && e.reportsLoaded
}

// IsRoot は上司を持たない組織のルートかを返します。
func (e *Employee) IsRoot() bool {
	return e.ParentID == nil
}
