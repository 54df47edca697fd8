// Package handler は社員・報酬・報告ラインの HTTP API を提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/codex-reporting-api/internal/core/compensation"
	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
)

// HealthChecker は依存先の疎通確認を行います。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies は Handler が利用するユースケース群です。
type Dependencies struct {
	Employees      employee.UseCase
	Compensations  compensation.UseCase
	Reporting      reporting.UseCase
	Health         HealthChecker
	Logger         *logrus.Logger
	AllowedOrigins []string
}

// Handler は HTTP リクエストをユースケースへ委譲します。
type Handler struct {
	employees      employee.UseCase
	compensations  compensation.UseCase
	reporting      reporting.UseCase
	health         HealthChecker
	logger         *logrus.Logger
	validate       *validator.Validate
	allowedOrigins []string
}

// NewHandler は Handler を生成します。
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		employees:      deps.Employees,
		compensations:  deps.Compensations,
		reporting:      deps.Reporting,
		health:         deps.Health,
		logger:         logger,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		allowedOrigins: deps.AllowedOrigins,
	}
}

// Routes はミドルウェアを適用したルーターを返します。
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.requestContext, instrument)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/employee", h.createEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employee", h.listEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employee/{id}", h.getEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employee/{id}", h.replaceEmployee).Methods(http.MethodPut)
	api.HandleFunc("/employee/{id}", h.deleteEmployee).Methods(http.MethodDelete)
	api.HandleFunc("/compensation", h.createCompensation).Methods(http.MethodPost)
	api.HandleFunc("/compensation/{id}", h.getCompensation).Methods(http.MethodGet)
	api.HandleFunc("/reporting/{id}", h.getReportingStructure).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeAPIError(w, req, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeAPIError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	if len(h.allowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(r)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.logger.WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID はパスの {id} を UUID として検証します。失敗時はレスポンスを書き込み false を返します。
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	id, err := uuid.Parse(raw)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeInvalidArgument, "id must be a UUID")
		return "", false
	}
	return id.String(), true
}

// decodeAndValidate はリクエスト本文を読み込み validator で検証します。
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return false
	}
	return true
}
