package service

import (
	"fmt"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================
// Staff token validation — used by the admin middleware
// ============================================================

// StaffClaims represents the custom claims in staff access tokens
// issued by the platform's identity service.
type StaffClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// AuthService validates the two credentials this service accepts: staff
// JWTs on the admin surface, and the internal service key on the
// classification trigger.
type AuthService struct {
	jwtSecret      []byte
	serviceKeyHash []byte
}

// NewAuthService creates a new auth service. serviceKeyHash is the
// bcrypt hash of the internal service key, never the key itself.
func NewAuthService(jwtSecret, serviceKeyHash []byte) *AuthService {
	return &AuthService{jwtSecret: jwtSecret, serviceKeyHash: serviceKeyHash}
}

// ValidateStaffToken parses and verifies a staff access token. Tokens
// without the staff role are rejected with ErrForbidden so the handler
// can answer 403 instead of 401.
func (s *AuthService) ValidateStaffToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	if claims.Role != "staff" {
		return nil, &domain.ErrForbidden{Action: "acesso restrito à equipe de revisão"}
	}

	return claims, nil
}

// ValidateServiceKey checks the internal service key presented by the
// purchase flow against the configured bcrypt hash.
func (s *AuthService) ValidateServiceKey(key string) error {
	if err := bcrypt.CompareHashAndPassword(s.serviceKeyHash, []byte(key)); err != nil {
		return &domain.ErrUnauthorized{Message: "Chave de serviço inválida"}
	}
	return nil
}
