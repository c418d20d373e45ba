package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/cache"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockDeclarationStore struct {
	assets    []domain.DeclaredAsset
	debts     []domain.DeclaredDebt
	incomes   []domain.IncomeRecord
	expenses  []domain.DeductibleExpense
	gains     []domain.CapitalGainEvent
	stockOps  []domain.StockOperation
	cryptoOps []domain.CryptoOperation
	profile   *domain.TaxpayerProfile

	assetsErr  error
	profileErr error
}

func (m *mockDeclarationStore) ListAssets(_ context.Context, _ string) ([]domain.DeclaredAsset, error) {
	return m.assets, m.assetsErr
}

func (m *mockDeclarationStore) ListDebts(_ context.Context, _ string) ([]domain.DeclaredDebt, error) {
	return m.debts, nil
}

func (m *mockDeclarationStore) ListIncomes(_ context.Context, _ string) ([]domain.IncomeRecord, error) {
	return m.incomes, nil
}

func (m *mockDeclarationStore) ListDeductibleExpenses(_ context.Context, _ string) ([]domain.DeductibleExpense, error) {
	return m.expenses, nil
}

func (m *mockDeclarationStore) ListCapitalGains(_ context.Context, _ string) ([]domain.CapitalGainEvent, error) {
	return m.gains, nil
}

func (m *mockDeclarationStore) ListStockOperations(_ context.Context, _ string) ([]domain.StockOperation, error) {
	return m.stockOps, nil
}

func (m *mockDeclarationStore) ListCryptoOperations(_ context.Context, _ string) ([]domain.CryptoOperation, error) {
	return m.cryptoOps, nil
}

func (m *mockDeclarationStore) GetTaxpayerProfile(_ context.Context, _ string) (*domain.TaxpayerProfile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if m.profile == nil {
		return &domain.TaxpayerProfile{}, nil
	}
	return m.profile, nil
}

type mockPolicyStore struct {
	mu        sync.Mutex
	threshold *domain.AutonomousThreshold
	price     *domain.DeclarationPrice

	thresholdErr error
	priceErr     error

	priceReads        int
	thresholdReplaces int
	priceReplaces     int
}

func (m *mockPolicyStore) GetThreshold(_ context.Context) (*domain.AutonomousThreshold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.thresholdErr != nil {
		return nil, m.thresholdErr
	}
	if m.threshold == nil {
		return nil, &domain.ErrPolicyNotConfigured{}
	}
	t := *m.threshold
	return &t, nil
}

func (m *mockPolicyStore) ReplaceThreshold(_ context.Context, t *domain.AutonomousThreshold) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.threshold = &cp
	m.thresholdReplaces++
	return nil
}

func (m *mockPolicyStore) GetPrice(_ context.Context) (*domain.DeclarationPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.priceErr != nil {
		return nil, m.priceErr
	}
	if m.price == nil {
		return nil, &domain.ErrPolicyNotConfigured{}
	}
	m.priceReads++
	p := *m.price
	return &p, nil
}

func (m *mockPolicyStore) ReplacePrice(_ context.Context, p *domain.DeclarationPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.price = &cp
	m.priceReplaces++
	return nil
}

type mockInconsistencyStore struct {
	mu      sync.Mutex
	created []domain.Inconsistency

	createErr error
	getErr    error
	updateErr error
}

func (m *mockInconsistencyStore) CreateInconsistency(_ context.Context, inc *domain.Inconsistency) (*domain.Inconsistency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, *inc)
	return inc, nil
}

func (m *mockInconsistencyStore) ListInconsistencies(_ context.Context, status string, _, _ int) ([]domain.Inconsistency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == "" {
		return m.created, nil
	}
	var out []domain.Inconsistency
	for _, inc := range m.created {
		if inc.Status == status {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (m *mockInconsistencyStore) GetInconsistency(_ context.Context, id string) (*domain.Inconsistency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.created {
		if m.created[i].ID == id {
			inc := m.created[i]
			return &inc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "inconsistency", ID: id}
}

func (m *mockInconsistencyStore) UpdateInconsistencyStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.created {
		if m.created[i].ID == id {
			m.created[i].Status = status
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "inconsistency", ID: id}
}

// --- Fixtures ---

func newPolicyFixture(store *mockPolicyStore) *service.PolicyService {
	return service.NewPolicyService(
		store,
		cache.New[*domain.DeclarationPrice](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func newClassificationFixture(declStore *mockDeclarationStore, incStore *mockInconsistencyStore) *service.ClassificationService {
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	th := domain.DefaultThreshold()
	price := domain.DefaultPrice()
	policyStore := &mockPolicyStore{threshold: &th, price: &price}

	return service.NewClassificationService(
		service.NewMetricsAggregator(declStore, 4, metrics, logger),
		newPolicyFixture(policyStore),
		service.NewInconsistencyService(incStore, metrics, logger),
		metrics,
		logger,
	)
}
