package compensation

import "context"

// Repository は報酬情報の永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, c *Compensation) (*Compensation, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Compensation, error)
}

// EmployeeChecker は報酬を紐づける社員の存在確認を行います。
type EmployeeChecker interface {
	EmployeeExists(ctx context.Context, id string) (bool, error)
}
