package handler

import (
	"net/http"

	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Classification — the purchase-completion trigger
// ============================================================

func classifyHandler(svc *service.ClassificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{userId}/declarations/{declarationId}/classification")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		declarationID := chi.URLParam(r, "declarationId")
		if userID == "" || declarationID == "" {
			writeError(w, http.StatusBadRequest, "userId and declarationId are required")
			return
		}
		span.SetAttributes(
			attribute.String("user.id", userID),
			attribute.String("declaration.id", declarationID),
		)

		verdict, err := svc.ClassifyPurchase(ctx, userID, declarationID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, verdict)
	}
}

// previewMetricsHandler computes the metrics reduction without
// classifying. GET /v1/users/{userId}/classification/metrics
func previewMetricsHandler(svc *service.ClassificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/classification/metrics")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		metrics, err := svc.PreviewMetrics(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, metrics)
	}
}
