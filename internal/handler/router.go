package handler

import (
	"net/http"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups everything the router depends on.
type Services struct {
	Classification  *service.ClassificationService
	Policy          *service.PolicyService
	Inconsistencies *service.InconsistencyService
	Auth            *service.AuthService
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(s Services) http.Handler {
	r := chi.NewRouter()
	logger := s.Logger

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(s.Policy, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Checkout — public
		// GET /v1/checkout/price
		// =============================================
		r.Get("/checkout/price", getPriceHandler(s.Policy, logger))

		// =============================================
		// Classification snapshot — operational
		// GET /v1/metrics/classification
		// =============================================
		r.Get("/metrics/classification", classificationStatsHandler(s.Metrics))

		// =============================================
		// Classification trigger — internal service key
		// POST /v1/users/{userId}/declarations/{declarationId}/classification
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(ServiceKeyMiddleware(s.Auth, logger))
			r.Post("/users/{userId}/declarations/{declarationId}/classification",
				classifyHandler(s.Classification, logger))
		})

		// =============================================
		// Staff surface — JWT with staff role
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(StaffAuthMiddleware(s.Auth, logger))

			r.Get("/users/{userId}/classification/metrics",
				previewMetricsHandler(s.Classification, logger))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/settings/threshold", getThresholdHandler(s.Policy, logger))
				r.Put("/settings/threshold", putThresholdHandler(s.Policy, logger))
				r.Get("/settings/price", getAdminPriceHandler(s.Policy, logger))
				r.Put("/settings/price", putPriceHandler(s.Policy, logger))

				r.Get("/inconsistencies", listInconsistenciesHandler(s.Inconsistencies, logger))
				r.Get("/inconsistencies/{inconsistencyId}", getInconsistencyHandler(s.Inconsistencies, logger))
				r.Patch("/inconsistencies/{inconsistencyId}/status", updateInconsistencyStatusHandler(s.Inconsistencies, logger))
			})
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(policySvc *service.PolicyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "classifier-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		status := "healthy"
		if _, err := policySvc.GetThreshold(ctx); err != nil {
			logger.Warn("healthz: record store check failed", zap.Error(err))
			status = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "supabase", Status: status,
			LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func classificationStatsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetClassificationSnapshot())
	}
}
