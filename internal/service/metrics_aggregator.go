package service

import (
	"context"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/resilience"
	"github.com/joaodariop/foour-tax-sub000/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var aggregatorTracer = otel.Tracer("service/aggregator")

// MetricsAggregator reduces a taxpayer's declared collections to the
// fixed ProfileMetrics the evaluator consumes. Read-only; results are
// never cached so every classification sees the state at purchase time.
type MetricsAggregator struct {
	store    port.DeclarationStore
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewMetricsAggregator creates an aggregator whose concurrent reads are
// bounded by maxConcurrency.
func NewMetricsAggregator(store port.DeclarationStore, maxConcurrency int, metrics *observability.Metrics, logger *zap.Logger) *MetricsAggregator {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &MetricsAggregator{
		store:    store,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
		metrics:  metrics,
		logger:   logger,
	}
}

// ComputeMetrics reads the seven declared collections plus the taxpayer
// profile concurrently and reduces them. Any failed read aborts the
// whole computation: classification must not proceed on partial data.
func (a *MetricsAggregator) ComputeMetrics(ctx context.Context, userID string) (*domain.ProfileMetrics, error) {
	ctx, span := aggregatorTracer.Start(ctx, "MetricsAggregator.ComputeMetrics")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { a.metrics.RecordRequestDuration("compute_metrics", time.Since(start)) }()

	var (
		assets    []domain.DeclaredAsset
		debts     []domain.DeclaredDebt
		incomes   []domain.IncomeRecord
		expenses  []domain.DeductibleExpense
		gains     []domain.CapitalGainEvent
		stockOps  []domain.StockOperation
		cryptoOps []domain.CryptoOperation
		profile   *domain.TaxpayerProfile
	)

	g, gCtx := errgroup.WithContext(ctx)

	read := func(collection string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := a.bulkhead.Acquire(gCtx); err != nil {
				return err
			}
			defer a.bulkhead.Release()

			if err := fn(gCtx); err != nil {
				a.logger.Error("failed to read declared collection",
					zap.String("user_id", userID),
					zap.String("collection", collection),
					zap.Error(err),
				)
				a.metrics.IncrExternalError(collection)
				return &domain.ErrMetricsRead{Collection: collection, Err: err}
			}
			return nil
		})
	}

	read("declared_assets", func(ctx context.Context) error {
		var err error
		assets, err = a.store.ListAssets(ctx, userID)
		return err
	})
	read("declared_debts", func(ctx context.Context) error {
		var err error
		debts, err = a.store.ListDebts(ctx, userID)
		return err
	})
	read("income_records", func(ctx context.Context) error {
		var err error
		incomes, err = a.store.ListIncomes(ctx, userID)
		return err
	})
	read("deductible_expenses", func(ctx context.Context) error {
		var err error
		expenses, err = a.store.ListDeductibleExpenses(ctx, userID)
		return err
	})
	read("capital_gain_events", func(ctx context.Context) error {
		var err error
		gains, err = a.store.ListCapitalGains(ctx, userID)
		return err
	})
	read("stock_operations", func(ctx context.Context) error {
		var err error
		stockOps, err = a.store.ListStockOperations(ctx, userID)
		return err
	})
	read("crypto_operations", func(ctx context.Context) error {
		var err error
		cryptoOps, err = a.store.ListCryptoOperations(ctx, userID)
		return err
	})
	read("taxpayer_profiles", func(ctx context.Context) error {
		var err error
		profile, err = a.store.GetTaxpayerProfile(ctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reduceMetrics(assets, debts, incomes, expenses, gains, stockOps, cryptoOps, profile), nil
}

// reduceMetrics is the pure reduction step, separated so tests can
// exercise it without a store.
func reduceMetrics(
	assets []domain.DeclaredAsset,
	debts []domain.DeclaredDebt,
	incomes []domain.IncomeRecord,
	expenses []domain.DeductibleExpense,
	gains []domain.CapitalGainEvent,
	stockOps []domain.StockOperation,
	cryptoOps []domain.CryptoOperation,
	profile *domain.TaxpayerProfile,
) *domain.ProfileMetrics {
	m := &domain.ProfileMetrics{}

	for _, a := range assets {
		m.Assets.Count++
		m.Assets.TotalValue += a.Value
		switch a.Kind {
		case domain.AssetKindRealEstate:
			m.RealEstateCount++
		case domain.AssetKindVehicle:
			m.VehicleCount++
		case domain.AssetKindBankAccount:
			m.BankAccountCount++
		case domain.AssetKindFII:
			m.HasComplexInvestments = true
		}
	}

	for _, d := range debts {
		m.Debts.Count++
		m.Debts.TotalValue += d.Value
	}

	// Distinct payers, not record count: one payer can issue several
	// income records.
	payers := make(map[string]struct{})
	for _, in := range incomes {
		m.Incomes.Count++
		m.Incomes.TotalValue += in.Value
		if in.PayerDocument != "" {
			payers[in.PayerDocument] = struct{}{}
		}
	}
	m.IncomeSourceCount = len(payers)

	for _, e := range expenses {
		m.DeductibleExpenses.Count++
		m.DeductibleExpenses.TotalValue += e.Value
	}

	for _, g := range gains {
		m.CapitalGains.Count++
		m.CapitalGains.TotalValue += g.Value
	}

	for _, op := range stockOps {
		m.StockOperations.Count++
		m.StockOperations.TotalValue += op.Value
		if op.DayTrade || op.Market == "derivatives" {
			m.HasComplexInvestments = true
		}
	}

	for _, op := range cryptoOps {
		m.CryptoOperations.Count++
		m.CryptoOperations.TotalValue += op.Value
	}

	if profile != nil {
		m.DependentCount = profile.DependentCount
		m.HasForeignAssets = profile.HasForeignAssets
		m.HasRuralActivity = profile.HasRuralActivity
		m.HasDomesticEmployees = profile.HasDomesticEmployees
		m.SpouseHasIncome = profile.SpouseHasIncome
	}

	return m
}
