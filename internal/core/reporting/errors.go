package reporting

import (
	"errors"

	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
)

var (
	ErrInvalidID = errors.New("reporting: invalid employee id")
	// ErrHierarchyCycle は employee.ErrHierarchyCycle と同一で、どちらの errors.Is でも判定できます。
	ErrHierarchyCycle = employee.ErrHierarchyCycle
)
