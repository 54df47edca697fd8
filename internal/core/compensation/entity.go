package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Compensation は社員 1 名に紐づく報酬情報です。
type Compensation struct {
	ID            string
	EmployeeID    string
	Salary        decimal.Decimal
	EffectiveDate *time.Time
	CreatedAt     time.Time
}
