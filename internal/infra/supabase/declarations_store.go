package supabase

import (
	"context"
	"fmt"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Declared collections — read-only, keyed by user id
// (implements port.DeclarationStore)
// ============================================================

// Row types map table columns to the domain; monetary columns use
// flexValue so malformed values degrade to 0 instead of failing the
// whole aggregation.

type assetRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Value       flexValue `json:"value"`
}

type debtRow struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Value  flexValue `json:"value"`
}

type incomeRow struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PayerName     string    `json:"payer_name"`
	PayerDocument string    `json:"payer_document"`
	Value         flexValue `json:"value"`
}

type expenseRow struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Category string    `json:"category"`
	Value    flexValue `json:"value"`
}

type capitalGainRow struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Value  flexValue `json:"value"`
}

type stockOperationRow struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Market   string    `json:"market"`
	DayTrade bool      `json:"day_trade"`
	Value    flexValue `json:"value"`
}

type cryptoOperationRow struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Value  flexValue `json:"value"`
}

type taxpayerProfileRow struct {
	UserID               string `json:"user_id"`
	DependentCount       int    `json:"dependent_count"`
	HasForeignAssets     bool   `json:"has_foreign_assets"`
	HasRuralActivity     bool   `json:"has_rural_activity"`
	HasDomesticEmployees bool   `json:"has_domestic_employees"`
	SpouseHasIncome      bool   `json:"spouse_has_income"`
}

func (c *Client) ListAssets(ctx context.Context, userID string) ([]domain.DeclaredAsset, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAssets")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rows []assetRow
	if err := c.getJSON(ctx, fmt.Sprintf("declared_assets?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/declared_assets", Err: err}
	}

	assets := make([]domain.DeclaredAsset, 0, len(rows))
	for _, r := range rows {
		assets = append(assets, domain.DeclaredAsset{
			ID:          r.ID,
			UserID:      r.UserID,
			Kind:        r.Kind,
			Description: r.Description,
			Value:       float64(r.Value),
		})
	}
	return assets, nil
}

func (c *Client) ListDebts(ctx context.Context, userID string) ([]domain.DeclaredDebt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDebts")
	defer span.End()

	var rows []debtRow
	if err := c.getJSON(ctx, fmt.Sprintf("declared_debts?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/declared_debts", Err: err}
	}

	debts := make([]domain.DeclaredDebt, 0, len(rows))
	for _, r := range rows {
		debts = append(debts, domain.DeclaredDebt{ID: r.ID, UserID: r.UserID, Value: float64(r.Value)})
	}
	return debts, nil
}

func (c *Client) ListIncomes(ctx context.Context, userID string) ([]domain.IncomeRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListIncomes")
	defer span.End()

	var rows []incomeRow
	if err := c.getJSON(ctx, fmt.Sprintf("income_records?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/income_records", Err: err}
	}

	incomes := make([]domain.IncomeRecord, 0, len(rows))
	for _, r := range rows {
		incomes = append(incomes, domain.IncomeRecord{
			ID:            r.ID,
			UserID:        r.UserID,
			PayerName:     r.PayerName,
			PayerDocument: r.PayerDocument,
			Value:         float64(r.Value),
		})
	}
	return incomes, nil
}

func (c *Client) ListDeductibleExpenses(ctx context.Context, userID string) ([]domain.DeductibleExpense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDeductibleExpenses")
	defer span.End()

	var rows []expenseRow
	if err := c.getJSON(ctx, fmt.Sprintf("deductible_expenses?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/deductible_expenses", Err: err}
	}

	expenses := make([]domain.DeductibleExpense, 0, len(rows))
	for _, r := range rows {
		expenses = append(expenses, domain.DeductibleExpense{
			ID:       r.ID,
			UserID:   r.UserID,
			Category: r.Category,
			Value:    float64(r.Value),
		})
	}
	return expenses, nil
}

func (c *Client) ListCapitalGains(ctx context.Context, userID string) ([]domain.CapitalGainEvent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCapitalGains")
	defer span.End()

	var rows []capitalGainRow
	if err := c.getJSON(ctx, fmt.Sprintf("capital_gain_events?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/capital_gain_events", Err: err}
	}

	gains := make([]domain.CapitalGainEvent, 0, len(rows))
	for _, r := range rows {
		gains = append(gains, domain.CapitalGainEvent{ID: r.ID, UserID: r.UserID, Value: float64(r.Value)})
	}
	return gains, nil
}

func (c *Client) ListStockOperations(ctx context.Context, userID string) ([]domain.StockOperation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListStockOperations")
	defer span.End()

	var rows []stockOperationRow
	if err := c.getJSON(ctx, fmt.Sprintf("stock_operations?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/stock_operations", Err: err}
	}

	ops := make([]domain.StockOperation, 0, len(rows))
	for _, r := range rows {
		ops = append(ops, domain.StockOperation{
			ID:       r.ID,
			UserID:   r.UserID,
			Market:   r.Market,
			DayTrade: r.DayTrade,
			Value:    float64(r.Value),
		})
	}
	return ops, nil
}

func (c *Client) ListCryptoOperations(ctx context.Context, userID string) ([]domain.CryptoOperation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCryptoOperations")
	defer span.End()

	var rows []cryptoOperationRow
	if err := c.getJSON(ctx, fmt.Sprintf("crypto_operations?user_id=eq.%s", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/crypto_operations", Err: err}
	}

	ops := make([]domain.CryptoOperation, 0, len(rows))
	for _, r := range rows {
		ops = append(ops, domain.CryptoOperation{ID: r.ID, UserID: r.UserID, Value: float64(r.Value)})
	}
	return ops, nil
}

// GetTaxpayerProfile fetches the taxpayer record carrying the declared
// boolean facts. A taxpayer without a profile row cannot be classified.
func (c *Client) GetTaxpayerProfile(ctx context.Context, userID string) (*domain.TaxpayerProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTaxpayerProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rows []taxpayerProfileRow
	if err := c.getJSON(ctx, fmt.Sprintf("taxpayer_profiles?user_id=eq.%s&limit=1", userID), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/taxpayer_profiles", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "taxpayer_profile", ID: userID}
	}

	r := rows[0]
	return &domain.TaxpayerProfile{
		UserID:               r.UserID,
		DependentCount:       r.DependentCount,
		HasForeignAssets:     r.HasForeignAssets,
		HasRuralActivity:     r.HasRuralActivity,
		HasDomesticEmployees: r.HasDomesticEmployees,
		SpouseHasIncome:      r.SpouseHasIncome,
	}, nil
}
