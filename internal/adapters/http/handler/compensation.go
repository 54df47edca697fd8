package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/codex-reporting-api/internal/adapters/presenter"
	"github.com/ogurasousui/codex-reporting-api/internal/core/compensation"
)

type compensationRequest struct {
	EmployeeID    string           `json:"employeeId" validate:"required,uuid"`
	Salary        *decimal.Decimal `json:"salary" validate:"required"`
	EffectiveDate *time.Time       `json:"effectiveDate"`
}

func (h *Handler) createCompensation(w http.ResponseWriter, r *http.Request) {
	var req compensationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.compensations.CreateCompensation(r.Context(), compensation.CreateCompensationInput{
		EmployeeID:    req.EmployeeID,
		Salary:        *req.Salary,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, presenter.NewCompensationView(created))
}

// getCompensation は社員 ID に紐づく報酬情報を返します。
func (h *Handler) getCompensation(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.compensations.GetCompensation(r.Context(), compensation.GetCompensationInput{EmployeeID: employeeID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewCompensationView(found))
}
