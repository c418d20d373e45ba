// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
)

// DeclarationStore reads a taxpayer's declared collections. All methods
// are read-only and keyed by user id; an empty collection is a valid
// result, never an error.
type DeclarationStore interface {
	ListAssets(ctx context.Context, userID string) ([]domain.DeclaredAsset, error)
	ListDebts(ctx context.Context, userID string) ([]domain.DeclaredDebt, error)
	ListIncomes(ctx context.Context, userID string) ([]domain.IncomeRecord, error)
	ListDeductibleExpenses(ctx context.Context, userID string) ([]domain.DeductibleExpense, error)
	ListCapitalGains(ctx context.Context, userID string) ([]domain.CapitalGainEvent, error)
	ListStockOperations(ctx context.Context, userID string) ([]domain.StockOperation, error)
	ListCryptoOperations(ctx context.Context, userID string) ([]domain.CryptoOperation, error)
	GetTaxpayerProfile(ctx context.Context, userID string) (*domain.TaxpayerProfile, error)
}

// PolicyStore reads and replaces the active policy. The price and the
// threshold live under independent setting keys; each replace overwrites
// only its own key, atomically.
type PolicyStore interface {
	GetThreshold(ctx context.Context) (*domain.AutonomousThreshold, error)
	ReplaceThreshold(ctx context.Context, t *domain.AutonomousThreshold) error
	GetPrice(ctx context.Context) (*domain.DeclarationPrice, error)
	ReplacePrice(ctx context.Context, p *domain.DeclarationPrice) error
}

// InconsistencyStore persists and mutates review cases.
type InconsistencyStore interface {
	CreateInconsistency(ctx context.Context, inc *domain.Inconsistency) (*domain.Inconsistency, error)
	ListInconsistencies(ctx context.Context, status string, page, pageSize int) ([]domain.Inconsistency, error)
	GetInconsistency(ctx context.Context, id string) (*domain.Inconsistency, error)
	UpdateInconsistencyStatus(ctx context.Context, id, status string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
