// Package service provides the business logic layer (use cases):
// policy management, profile metrics aggregation, eligibility
// classification and the inconsistency review lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var policyTracer = otel.Tracer("service/policy")

const priceCacheKey = "price:active"

// PolicyService manages the active platform policy: the declaration
// price and the autonomous threshold. The threshold used by
// classification is always read fresh; only the public price read is
// cached.
type PolicyService struct {
	store   port.PolicyStore
	cache   port.Cache[*domain.DeclarationPrice]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPolicyService creates a new policy service.
func NewPolicyService(store port.PolicyStore, cache port.Cache[*domain.DeclarationPrice], metrics *observability.Metrics, logger *zap.Logger) *PolicyService {
	return &PolicyService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// GetActivePolicy returns the full policy snapshot (price + threshold).
// Fails with ErrPolicyNotConfigured when first-run setup never ran.
func (s *PolicyService) GetActivePolicy(ctx context.Context) (*domain.Policy, error) {
	ctx, span := policyTracer.Start(ctx, "PolicyService.GetActivePolicy")
	defer span.End()

	threshold, err := s.store.GetThreshold(ctx)
	if err != nil {
		return nil, err
	}
	price, err := s.store.GetPrice(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Policy{
		Price:     *price,
		Threshold: *threshold,
		UpdatedAt: time.Now(),
	}, nil
}

// GetThreshold returns the active autonomous threshold, read fresh so
// every classification uses a consistent snapshot of the moment it ran.
func (s *PolicyService) GetThreshold(ctx context.Context) (*domain.AutonomousThreshold, error) {
	ctx, span := policyTracer.Start(ctx, "PolicyService.GetThreshold")
	defer span.End()

	return s.store.GetThreshold(ctx)
}

// ReplaceThreshold overwrites the whole threshold block. Partial merges
// are not supported: staff submit the complete document.
func (s *PolicyService) ReplaceThreshold(ctx context.Context, t *domain.AutonomousThreshold) error {
	ctx, span := policyTracer.Start(ctx, "PolicyService.ReplaceThreshold")
	defer span.End()

	if err := validateThreshold(t); err != nil {
		return err
	}
	if err := s.store.ReplaceThreshold(ctx, t); err != nil {
		return err
	}

	s.logger.Info("autonomous threshold replaced",
		zap.Int("max_assets", t.Assets.MaxCount),
		zap.Float64("max_asset_value", t.Assets.MaxTotalValue),
		zap.Bool("review_if_high_value", t.ReviewIfHighValue),
	)
	return nil
}

// GetPrice returns the declaration price, serving the public checkout
// read from cache when possible.
func (s *PolicyService) GetPrice(ctx context.Context) (*domain.DeclarationPrice, error) {
	ctx, span := policyTracer.Start(ctx, "PolicyService.GetPrice")
	defer span.End()

	if cached, ok := s.cache.Get(priceCacheKey); ok {
		s.metrics.IncrCacheHit("price")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("price")

	price, err := s.store.GetPrice(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(priceCacheKey, price)
	return price, nil
}

// ReplacePrice overwrites the price block and invalidates the cached
// copy. Independent of the threshold block.
func (s *PolicyService) ReplacePrice(ctx context.Context, p *domain.DeclarationPrice) error {
	ctx, span := policyTracer.Start(ctx, "PolicyService.ReplacePrice")
	defer span.End()

	if p.Amount < 0 {
		return &domain.ErrValidation{Field: "amount", Message: "não pode ser negativo"}
	}
	if p.Currency == "" {
		return &domain.ErrValidation{Field: "currency", Message: "required"}
	}

	if err := s.store.ReplacePrice(ctx, p); err != nil {
		return err
	}
	s.cache.Delete(priceCacheKey)

	s.logger.Info("declaration price replaced",
		zap.Float64("amount", p.Amount),
		zap.String("currency", p.Currency),
	)
	return nil
}

// EnsureDefaults seeds the policy rows on first run. Existing rows are
// never touched: staff edits always win over defaults.
func (s *PolicyService) EnsureDefaults(ctx context.Context) error {
	ctx, span := policyTracer.Start(ctx, "PolicyService.EnsureDefaults")
	defer span.End()

	var notConfigured *domain.ErrPolicyNotConfigured

	if _, err := s.store.GetThreshold(ctx); err != nil {
		if !errors.As(err, &notConfigured) {
			return fmt.Errorf("check threshold setting: %w", err)
		}
		def := domain.DefaultThreshold()
		if err := s.store.ReplaceThreshold(ctx, &def); err != nil {
			return fmt.Errorf("seed default threshold: %w", err)
		}
		s.logger.Info("seeded default autonomous threshold")
	}

	if _, err := s.store.GetPrice(ctx); err != nil {
		if !errors.As(err, &notConfigured) {
			return fmt.Errorf("check price setting: %w", err)
		}
		def := domain.DefaultPrice()
		if err := s.store.ReplacePrice(ctx, &def); err != nil {
			return fmt.Errorf("seed default price: %w", err)
		}
		s.logger.Info("seeded default declaration price",
			zap.Float64("amount", def.Amount),
			zap.String("currency", def.Currency),
		)
	}

	return nil
}

// validateThreshold rejects negative limits. Zero is valid and means
// "not permitted at all".
func validateThreshold(t *domain.AutonomousThreshold) error {
	limits := map[string]float64{
		"assets.max_count":                    float64(t.Assets.MaxCount),
		"assets.max_total_value":              t.Assets.MaxTotalValue,
		"max_real_estate":                     float64(t.MaxRealEstate),
		"max_vehicles":                        float64(t.MaxVehicles),
		"max_bank_accounts":                   float64(t.MaxBankAccounts),
		"debts.max_count":                     float64(t.Debts.MaxCount),
		"debts.max_total_value":               t.Debts.MaxTotalValue,
		"incomes.max_count":                   float64(t.Incomes.MaxCount),
		"incomes.max_total_value":             t.Incomes.MaxTotalValue,
		"max_dependents":                      float64(t.MaxDependents),
		"deductible_expenses.max_count":       float64(t.DeductibleExpenses.MaxCount),
		"deductible_expenses.max_total_value": t.DeductibleExpenses.MaxTotalValue,
		"max_capital_gains":                   float64(t.MaxCapitalGains),
		"max_stock_operations":                float64(t.MaxStockOperations),
		"max_crypto_operations":               float64(t.MaxCryptoOperations),
		"high_value_threshold":                t.HighValueThreshold,
	}
	for field, v := range limits {
		if v < 0 {
			return &domain.ErrValidation{Field: field, Message: "não pode ser negativo"}
		}
	}
	return nil
}
