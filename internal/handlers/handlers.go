// Package handlers содержит HTTP обработчики API планировщика.
//
// Маршруты:
//
//	POST /v1/plans/solve             решить план (JSON или текстовый формат)
//	GET  /v1/solutions               список сохранённых решений
//	GET  /v1/solutions/{id}          решение по идентификатору
//	GET  /v1/solutions/{id}/export   выгрузка решения (csv, xlsx, pdf)
//	GET  /healthz                    проверка живости
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"techsel/internal/loader"
	"techsel/internal/presenter"
	"techsel/internal/report"
	"techsel/internal/service"
	"techsel/pkg/apperror"
	"techsel/pkg/config"
	"techsel/pkg/domain"
	"techsel/pkg/logger"
)

// Handler обработчики API планировщика
type Handler struct {
	svc *service.PlannerService
	cfg *config.Config
}

// New создаёт обработчики
func New(svc *service.PlannerService, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// Register вешает маршруты API на роутер
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.Healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/plans/solve", h.SolvePlan)
		r.Get("/solutions", h.ListSolutions)
		r.Get("/solutions/{id}", h.GetSolution)
		r.Get("/solutions/{id}/export", h.ExportSolution)
	})
}

// Healthz проверка живости
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SolvePlan решает план выбора технологий. Принимает JSON-план либо
// текстовый формат (Content-Type: text/plain).
func (h *Handler) SolvePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.readPlan(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	result, err := h.svc.Solve(r.Context(), plan)
	if err != nil {
		writeErr(w, err)
		return
	}

	view := presenter.FromSolution(result.Solution)
	view.Cached = result.Cached

	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) readPlan(r *http.Request) (*domain.Plan, error) {
	maxBytes := h.cfg.Solver.MaxPlanBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	body := http.MaxBytesReader(nil, r.Body, maxBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/plain") {
		return loader.Parse(body)
	}

	var plan domain.Plan
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperror.New(apperror.CodeInvalidArgument,
				fmt.Sprintf("plan exceeds %d bytes", maxErr.Limit))
		}
		return nil, apperror.Wrap(err, apperror.CodeMalformedPlan, "invalid plan payload")
	}

	return &plan, nil
}

// ListSolutions возвращает страницу сохранённых решений
func (h *Handler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	sols, total, err := h.svc.ListSolutions(r.Context(), filter)
	if err != nil {
		writeErr(w, err)
		return
	}

	views := make([]*presenter.SolutionView, 0, len(sols))
	for _, sol := range sols {
		views = append(views, presenter.FromSolution(sol))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"solutions": views,
		"total":     total,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}

// GetSolution возвращает решение по идентификатору
func (h *Handler) GetSolution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sol, err := h.svc.GetSolution(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, presenter.FromSolution(sol))
}

// ExportSolution выгружает решение в формате csv, xlsx или pdf
func (h *Handler) ExportSolution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErr(w, err)
		return
	}

	sol, err := h.svc.GetSolution(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}

	gen, err := report.New(format, h.cfg.Report)
	if err != nil {
		writeErr(w, err)
		return
	}

	data, err := gen.Generate(r.Context(), &report.ReportData{
		Solution:    sol,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		writeErr(w, apperror.Wrap(err, apperror.CodeInternal, "failed to generate report"))
		return
	}

	filename := fmt.Sprintf("solution-%s.%s", sol.ID, format)
	w.Header().Set("Content-Type", gen.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		logger.Log.Warn("Failed to write report", "error", err, "solution_id", sol.ID)
	}
}

func parseFilter(r *http.Request) (*domain.SolutionFilter, error) {
	filter := &domain.SolutionFilter{}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidPagination, "limit must be an integer")
		}
		filter.Limit = limit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidPagination, "offset must be an integer")
		}
		filter.Offset = offset
	}

	filter.Normalize()
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Warn("Failed to encode response", "error", err)
	}
}

func writeErr(w http.ResponseWriter, err error) {
	body := map[string]any{
		"error": map[string]any{
			"code":    string(apperror.Code(err)),
			"message": err.Error(),
		},
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		body["error"].(map[string]any)["details"] = appErr.Details
	}

	writeJSON(w, apperror.HTTPStatus(err), body)
}
