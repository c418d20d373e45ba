package handler

import (
	"encoding/json"
	"net/http"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Inconsistencies — staff review surface
// ============================================================

func listInconsistenciesHandler(svc *service.InconsistencyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/inconsistencies")
		defer span.End()

		status := r.URL.Query().Get("status")
		page, pageSize := parsePagination(r)

		items, err := svc.List(ctx, status, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if items == nil {
			items = []domain.Inconsistency{}
		}

		writeJSON(w, http.StatusOK, domain.ListResponse[domain.Inconsistency]{
			Data:     items,
			Total:    len(items),
			Page:     page,
			PageSize: pageSize,
			HasMore:  len(items) == pageSize,
		})
	}
}

func getInconsistencyHandler(svc *service.InconsistencyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/inconsistencies/{inconsistencyId}")
		defer span.End()

		id := chi.URLParam(r, "inconsistencyId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "inconsistencyId is required")
			return
		}
		span.SetAttributes(attribute.String("inconsistency.id", id))

		inc, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, inc)
	}
}

func updateInconsistencyStatusHandler(svc *service.InconsistencyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/admin/inconsistencies/{inconsistencyId}/status")
		defer span.End()

		id := chi.URLParam(r, "inconsistencyId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "inconsistencyId is required")
			return
		}
		span.SetAttributes(attribute.String("inconsistency.id", id))

		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Status == "" {
			writeError(w, http.StatusBadRequest, "status is required")
			return
		}

		inc, err := svc.UpdateStatus(ctx, id, body.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, inc)
	}
}
