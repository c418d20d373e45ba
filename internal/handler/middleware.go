package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const staffIDKey contextKey = "staffID"

// StaffAuthMiddleware validates staff Bearer tokens on the admin
// surface and injects the staff id into context.
func StaffAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			claims, err := authSvc.ValidateStaffToken(parts[1])
			if err != nil {
				logger.Warn("auth: rejected staff token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), staffIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServiceKeyMiddleware guards the classification trigger: only the
// purchase flow, presenting the internal service key in X-Service-Key,
// may start a classification.
func ServiceKeyMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Service-Key")
			if key == "" {
				logger.Warn("auth: missing service key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Chave de serviço não fornecida")
				return
			}

			if err := authSvc.ValidateServiceKey(key); err != nil {
				logger.Warn("auth: rejected service key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				handleServiceError(w, err, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StaffIDFromContext extracts the authenticated staff id from context.
func StaffIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(staffIDKey).(string)
	return v
}
