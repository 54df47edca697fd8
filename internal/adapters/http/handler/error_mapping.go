package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ogurasousui/codex-reporting-api/internal/core/compensation"
	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
	"github.com/ogurasousui/codex-reporting-api/internal/platform/logging"
)

const (
	codeInvalidArgument = "invalid_argument"
	codeNotFound        = "not_found"
	codeConflict        = "conflict"
	codeTimeout         = "timeout"
	codeInternal        = "internal"
)

func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidParentID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, compensation.ErrInvalidEmployeeID),
		errors.Is(err, compensation.ErrInvalidSalary),
		errors.Is(err, reporting.ErrInvalidID):
		return http.StatusBadRequest, codeInvalidArgument
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrParentNotFound),
		errors.Is(err, compensation.ErrEmployeeNotFound),
		errors.Is(err, compensation.ErrCompensationNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, employee.ErrEmployeeExists),
		errors.Is(err, employee.ErrHierarchyCycle),
		errors.Is(err, employee.ErrEmployeeHasReports),
		errors.Is(err, compensation.ErrCompensationAlreadyExists):
		return http.StatusConflict, codeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeError はドメインエラーをステータスに変換して返します。5xx の詳細はログのみに出力します。
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFromError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		message = http.StatusText(status)
	}
	writeAPIError(w, r, status, code, message)
}
