package handler

import (
	"encoding/json"
	"net/http"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Checkout — GET /v1/checkout/price
// ============================================================

func getPriceHandler(svc *service.PolicyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/checkout/price")
		defer span.End()

		price, err := svc.GetPrice(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, price)
	}
}

// ============================================================
// Admin settings — threshold + price
// ============================================================

func getThresholdHandler(svc *service.PolicyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/settings/threshold")
		defer span.End()

		threshold, err := svc.GetThreshold(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, threshold)
	}
}

// putThresholdHandler replaces the whole threshold block. Staff submit
// the complete document; partial merges are not supported.
func putThresholdHandler(svc *service.PolicyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/settings/threshold")
		defer span.End()

		var threshold domain.AutonomousThreshold
		if err := json.NewDecoder(r.Body).Decode(&threshold); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.ReplaceThreshold(ctx, &threshold); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, threshold)
	}
}

func getAdminPriceHandler(svc *service.PolicyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/settings/price")
		defer span.End()

		price, err := svc.GetPrice(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, price)
	}
}

func putPriceHandler(svc *service.PolicyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/settings/price")
		defer span.End()

		var price domain.DeclarationPrice
		if err := json.NewDecoder(r.Body).Decode(&price); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.ReplacePrice(ctx, &price); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, price)
	}
}
