package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ogurasousui/codex-reporting-api/internal/adapters/presenter"
	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
)

type employeeRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Position   *string `json:"position" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	ParentID   *string `json:"parentId"`
}

func (req employeeRequest) attributes() employee.Attributes {
	return employee.Attributes{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Position:   req.Position,
		Department: req.Department,
		ParentID:   req.ParentID,
	}
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.employees.CreateEmployee(r.Context(), employee.CreateEmployeeInput{Attributes: req.attributes()})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/employee/"+created.ID)
	writeJSON(w, http.StatusCreated, presenter.NewEmployeeView(created))
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewEmployeeView(found))
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in := employee.ListEmployeesInput{PageToken: strings.TrimSpace(q.Get("pageToken"))}
	if raw := strings.TrimSpace(q.Get("pageSize")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, codeInvalidArgument, "pageSize must be an integer")
			return
		}
		in.PageSize = size
	}
	if parent := strings.TrimSpace(q.Get("parentId")); parent != "" {
		in.ParentID = &parent
	}

	result, err := h.employees.ListEmployees(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewEmployeeListView(result))
}

func (h *Handler) replaceEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req employeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.employees.ReplaceEmployee(r.Context(), employee.ReplaceEmployeeInput{ID: id, Attributes: req.attributes()})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewEmployeeView(updated))
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.employees.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{ID: id}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
