package service

import (
	"context"
	"fmt"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var classifierTracer = otel.Tracer("service/classification")

// Override trigger constant: more than this many distinct payers forces
// review when review_if_multiple_sources is enabled. Fixed by the
// trigger itself, independent of the configurable incomes limit.
const multipleSourcesLimit = 3

// ClassificationService runs the full pipeline: aggregate metrics, load
// the policy snapshot, evaluate, record the inconsistency when flagged.
type ClassificationService struct {
	aggregator      *MetricsAggregator
	policy          *PolicyService
	inconsistencies *InconsistencyService
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// NewClassificationService creates the classification service.
func NewClassificationService(
	aggregator *MetricsAggregator,
	policy *PolicyService,
	inconsistencies *InconsistencyService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ClassificationService {
	return &ClassificationService{
		aggregator:      aggregator,
		policy:          policy,
		inconsistencies: inconsistencies,
		metrics:         metrics,
		logger:          logger,
	}
}

// ClassifyPurchase is the purchase-completion trigger: computes fresh
// metrics, snapshots the active threshold, evaluates, and persists an
// inconsistency case when the verdict requires review. A failed case
// write is logged and counted but never fails the request —
// classification is advisory, not a gate on the purchase.
func (s *ClassificationService) ClassifyPurchase(ctx context.Context, userID, declarationID string) (*domain.ClassificationVerdict, error) {
	ctx, span := classifierTracer.Start(ctx, "ClassificationService.ClassifyPurchase")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("declaration.id", declarationID),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("classify", time.Since(start)) }()

	metrics, err := s.aggregator.ComputeMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The threshold is passed explicitly into Evaluate: a concurrent
	// policy update never changes a verdict already being computed.
	threshold, err := s.policy.GetThreshold(ctx)
	if err != nil {
		return nil, err
	}

	verdict := Evaluate(metrics, threshold)
	s.metrics.RecordVerdict(string(verdict.Profile), len(verdict.Violations))

	if verdict.RequiresManualReview {
		caseID, recErr := s.inconsistencies.RecordIfNeeded(ctx, userID, declarationID, verdict)
		if recErr != nil {
			s.logger.Error("failed to persist inconsistency case, verdict still returned",
				zap.String("user_id", userID),
				zap.String("declaration_id", declarationID),
				zap.Error(recErr),
			)
			s.metrics.IncrExternalError("supabase/inconsistencies")
		} else {
			s.logger.Info("declaration flagged for manual review",
				zap.String("user_id", userID),
				zap.String("declaration_id", declarationID),
				zap.String("inconsistency_id", caseID),
				zap.Int("violations", len(verdict.Violations)),
			)
		}
	} else {
		s.logger.Info("declaration classified as autonomous",
			zap.String("user_id", userID),
			zap.String("declaration_id", declarationID),
		)
	}

	return verdict, nil
}

// PreviewMetrics computes the metrics reduction without classifying or
// writing anything. Staff-facing diagnostic.
func (s *ClassificationService) PreviewMetrics(ctx context.Context, userID string) (*domain.ProfileMetrics, error) {
	ctx, span := classifierTracer.Start(ctx, "ClassificationService.PreviewMetrics")
	defer span.End()

	return s.aggregator.ComputeMetrics(ctx, userID)
}

// Evaluate applies the threshold to the metrics and returns the
// verdict. Pure computation: every rule is evaluated, nothing
// short-circuits, so the violation list is always complete. Limits are
// inclusive — a metric exactly at its maximum is within bounds.
func Evaluate(m *domain.ProfileMetrics, t *domain.AutonomousThreshold) *domain.ClassificationVerdict {
	var violations []domain.Violation

	add := func(rule string, observed, limit float64, message string) {
		violations = append(violations, domain.Violation{
			Rule:     rule,
			Observed: observed,
			Limit:    limit,
			Message:  message,
		})
	}

	checkDimension := func(dim domain.DimensionMetrics, limit domain.DimensionLimit, countRule, valueRule, singular, plural string) {
		if dim.Count > limit.MaxCount {
			add(countRule, float64(dim.Count), float64(limit.MaxCount),
				fmt.Sprintf("%d %s (limite: %d)", dim.Count, pluralize(dim.Count, singular, plural), limit.MaxCount))
		}
		if dim.TotalValue > limit.MaxTotalValue {
			add(valueRule, dim.TotalValue, limit.MaxTotalValue,
				fmt.Sprintf("valor total de %s %.2f (limite: %.2f)", plural, dim.TotalValue, limit.MaxTotalValue))
		}
	}

	checkCount := func(count, limit int, rule, singular, plural string) {
		if count > limit {
			add(rule, float64(count), float64(limit),
				fmt.Sprintf("%d %s (limite: %d)", count, pluralize(count, singular, plural), limit))
		}
	}

	// 1. Per-dimension count/value limits.
	checkDimension(m.Assets, t.Assets, domain.RuleMaxAssets, domain.RuleMaxAssetValue, "bem", "bens")
	checkCount(m.RealEstateCount, t.MaxRealEstate, domain.RuleMaxRealEstate, "imóvel", "imóveis")
	checkCount(m.VehicleCount, t.MaxVehicles, domain.RuleMaxVehicles, "veículo", "veículos")
	checkCount(m.BankAccountCount, t.MaxBankAccounts, domain.RuleMaxBankAccounts, "conta bancária", "contas bancárias")
	checkDimension(m.Debts, t.Debts, domain.RuleMaxDebts, domain.RuleMaxDebtValue, "dívida", "dívidas")
	checkDimension(m.Incomes, t.Incomes, domain.RuleMaxIncomes, domain.RuleMaxIncomeValue, "rendimento", "rendimentos")
	checkCount(m.DependentCount, t.MaxDependents, domain.RuleMaxDependents, "dependente", "dependentes")
	checkDimension(m.DeductibleExpenses, t.DeductibleExpenses, domain.RuleMaxDeductions, domain.RuleMaxDeductionValue, "despesa dedutível", "despesas dedutíveis")
	checkCount(m.CapitalGains.Count, t.MaxCapitalGains, domain.RuleMaxCapitalGains, "evento de ganho de capital", "eventos de ganho de capital")
	checkCount(m.StockOperations.Count, t.MaxStockOperations, domain.RuleMaxStockOperations, "operação em bolsa", "operações em bolsa")
	checkCount(m.CryptoOperations.Count, t.MaxCryptoOperations, domain.RuleMaxCryptoOperations, "operação com criptoativos", "operações com criptoativos")

	// 2. Capability flags: fact observed while the policy forbids it.
	if m.HasForeignAssets && !t.AllowForeignAssets {
		add(domain.RuleForeignAssets, 1, 0, "possui bens no exterior (não permitido no perfil autônomo)")
	}
	if m.HasRuralActivity && !t.AllowRuralActivity {
		add(domain.RuleRuralActivity, 1, 0, "possui atividade rural (não permitido no perfil autônomo)")
	}
	if m.HasComplexInvestments && !t.AllowComplexInvestments {
		add(domain.RuleComplexInvestments, 1, 0, "possui investimentos complexos (FII/day-trade/derivativos)")
	}
	if m.HasDomesticEmployees && !t.AllowDomesticEmployees {
		add(domain.RuleDomesticEmployees, 1, 0, "possui empregado doméstico (não permitido no perfil autônomo)")
	}

	// 3. Override triggers, each independent of the limits above.
	if t.ReviewIfSpouseHasIncome && m.SpouseHasIncome {
		add(domain.RuleSpouseHasIncome, 1, 0, "cônjuge possui rendimentos (revisão obrigatória)")
	}
	if t.ReviewIfMultipleSources && m.IncomeSourceCount > multipleSourcesLimit {
		add(domain.RuleMultipleIncomeSources, float64(m.IncomeSourceCount), multipleSourcesLimit,
			fmt.Sprintf("%d fontes pagadoras distintas (limite: %d)", m.IncomeSourceCount, multipleSourcesLimit))
	}
	if t.ReviewIfHighValue && m.Assets.TotalValue > t.HighValueThreshold {
		add(domain.RuleHighValue, m.Assets.TotalValue, t.HighValueThreshold,
			fmt.Sprintf("patrimônio total %.2f acima do limite de revisão %.2f", m.Assets.TotalValue, t.HighValueThreshold))
	}

	// 4/5. Verdict: autonomous iff zero violations. requiresManualReview
	// is derived here and nowhere else, so the two can never disagree.
	profile := domain.ProfileAutonomous
	if len(violations) > 0 {
		profile = domain.ProfileInconsistency
	}

	return &domain.ClassificationVerdict{
		Profile:              profile,
		Metrics:              *m,
		Thresholds:           *t,
		RequiresManualReview: profile != domain.ProfileAutonomous,
		Violations:           violations,
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
