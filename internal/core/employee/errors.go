package employee

import "errors"

var (
	ErrInvalidID          = errors.New("employee: invalid id")
	ErrInvalidParentID    = errors.New("employee: invalid parent id")
	ErrInvalidName        = errors.New("employee: invalid name")
	ErrInvalidPageSize    = errors.New("employee: invalid page size")
	ErrInvalidPageToken   = errors.New("employee: invalid page token")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrParentNotFound     = errors.New("employee: parent not found")
	ErrEmployeeExists     = errors.New("employee: already exists")
	ErrHierarchyCycle     = errors.New("employee: reporting hierarchy contains a cycle")
	ErrEmployeeHasReports = errors.New("employee: has direct reports")
)
