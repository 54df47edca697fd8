package handler

import (
	"net/http"

	"github.com/ogurasousui/codex-reporting-api/internal/adapters/presenter"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
)

// getReportingStructure は社員を起点とした部下ツリーと部下総数を返します。
func (h *Handler) getReportingStructure(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.reporting.GetReportingStructure(r.Context(), reporting.GetReportingStructureInput{EmployeeID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !result.Found() {
		writeAPIError(w, r, http.StatusNotFound, codeNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewReportingStructureView(result))
}
