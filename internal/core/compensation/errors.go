package compensation

import "errors"

var (
	ErrInvalidEmployeeID         = errors.New("compensation: invalid employee id")
	ErrInvalidSalary             = errors.New("compensation: salary must not be negative")
	ErrEmployeeNotFound          = errors.New("compensation: employee not found")
	ErrCompensationNotFound      = errors.New("compensation: not found")
	ErrCompensationAlreadyExists = errors.New("compensation: already exists for employee")
)
