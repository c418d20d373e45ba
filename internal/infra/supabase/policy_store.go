package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
)

// ============================================================
// Platform settings — the active policy (implements port.PolicyStore)
// ============================================================

// Each policy block lives under its own key in platform_settings and is
// replaced whole, independently of the other.
const (
	settingKeyThreshold = "autonomous_threshold"
	settingKeyPrice     = "declaration_price"
)

type settingRow struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}

// thresholdDoc mirrors the stored threshold document with every field
// optional. Nil means "field absent" and takes the documented default;
// an explicit zero stays zero ("not permitted"). This keeps absent and
// zero distinguishable at the type level instead of scattering fallback
// reads across call sites.
type thresholdDoc struct {
	Assets              *dimensionLimitDoc `json:"assets"`
	MaxRealEstate       *int               `json:"max_real_estate"`
	MaxVehicles         *int               `json:"max_vehicles"`
	MaxBankAccounts     *int               `json:"max_bank_accounts"`
	Debts               *dimensionLimitDoc `json:"debts"`
	Incomes             *dimensionLimitDoc `json:"incomes"`
	MaxDependents       *int               `json:"max_dependents"`
	DeductibleExpenses  *dimensionLimitDoc `json:"deductible_expenses"`
	MaxCapitalGains     *int               `json:"max_capital_gains"`
	MaxStockOperations  *int               `json:"max_stock_operations"`
	MaxCryptoOperations *int               `json:"max_crypto_operations"`

	AllowForeignAssets      *bool `json:"allow_foreign_assets"`
	AllowRuralActivity      *bool `json:"allow_rural_activity"`
	AllowComplexInvestments *bool `json:"allow_complex_investments"`
	AllowDomesticEmployees  *bool `json:"allow_domestic_employees"`

	ReviewIfSpouseHasIncome *bool    `json:"review_if_spouse_with_income"`
	ReviewIfMultipleSources *bool    `json:"review_if_multiple_sources"`
	ReviewIfHighValue       *bool    `json:"review_if_high_value"`
	HighValueThreshold      *float64 `json:"high_value_threshold"`
}

type dimensionLimitDoc struct {
	MaxCount      *int     `json:"max_count"`
	MaxTotalValue *float64 `json:"max_total_value"`
}

func (d *thresholdDoc) materialize() domain.AutonomousThreshold {
	t := domain.DefaultThreshold()

	applyLimit := func(dst *domain.DimensionLimit, src *dimensionLimitDoc) {
		if src == nil {
			return
		}
		if src.MaxCount != nil {
			dst.MaxCount = *src.MaxCount
		}
		if src.MaxTotalValue != nil {
			dst.MaxTotalValue = *src.MaxTotalValue
		}
	}
	applyInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	applyLimit(&t.Assets, d.Assets)
	applyInt(&t.MaxRealEstate, d.MaxRealEstate)
	applyInt(&t.MaxVehicles, d.MaxVehicles)
	applyInt(&t.MaxBankAccounts, d.MaxBankAccounts)
	applyLimit(&t.Debts, d.Debts)
	applyLimit(&t.Incomes, d.Incomes)
	applyInt(&t.MaxDependents, d.MaxDependents)
	applyLimit(&t.DeductibleExpenses, d.DeductibleExpenses)
	applyInt(&t.MaxCapitalGains, d.MaxCapitalGains)
	applyInt(&t.MaxStockOperations, d.MaxStockOperations)
	applyInt(&t.MaxCryptoOperations, d.MaxCryptoOperations)

	applyBool(&t.AllowForeignAssets, d.AllowForeignAssets)
	applyBool(&t.AllowRuralActivity, d.AllowRuralActivity)
	applyBool(&t.AllowComplexInvestments, d.AllowComplexInvestments)
	applyBool(&t.AllowDomesticEmployees, d.AllowDomesticEmployees)

	applyBool(&t.ReviewIfSpouseHasIncome, d.ReviewIfSpouseHasIncome)
	applyBool(&t.ReviewIfMultipleSources, d.ReviewIfMultipleSources)
	applyBool(&t.ReviewIfHighValue, d.ReviewIfHighValue)
	if d.HighValueThreshold != nil {
		t.HighValueThreshold = *d.HighValueThreshold
	}

	return t
}

func (c *Client) getSetting(ctx context.Context, key string) (json.RawMessage, error) {
	var rows []settingRow
	if err := c.getJSON(ctx, fmt.Sprintf("platform_settings?key=eq.%s&limit=1", key), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/platform_settings", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrPolicyNotConfigured{}
	}
	return rows[0].Value, nil
}

func (c *Client) putSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.doUpsert(ctx, "platform_settings", "key", map[string]any{
		"key":        key,
		"value":      json.RawMessage(raw),
		"updated_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/platform_settings", Err: err}
	}
	return nil
}

// GetThreshold fetches the active autonomous threshold. Fails with
// ErrPolicyNotConfigured if the row has never been written.
func (c *Client) GetThreshold(ctx context.Context) (*domain.AutonomousThreshold, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetThreshold")
	defer span.End()

	raw, err := c.getSetting(ctx, settingKeyThreshold)
	if err != nil {
		return nil, err
	}

	var doc thresholdDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/platform_settings", Err: fmt.Errorf("decode threshold: %w", err)}
	}
	t := doc.materialize()
	return &t, nil
}

// ReplaceThreshold overwrites the whole threshold document.
func (c *Client) ReplaceThreshold(ctx context.Context, t *domain.AutonomousThreshold) error {
	ctx, span := tracer.Start(ctx, "Supabase.ReplaceThreshold")
	defer span.End()

	return c.putSetting(ctx, settingKeyThreshold, t)
}

// GetPrice fetches the declaration price setting.
func (c *Client) GetPrice(ctx context.Context) (*domain.DeclarationPrice, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPrice")
	defer span.End()

	raw, err := c.getSetting(ctx, settingKeyPrice)
	if err != nil {
		return nil, err
	}

	var p domain.DeclarationPrice
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/platform_settings", Err: fmt.Errorf("decode price: %w", err)}
	}
	return &p, nil
}

// ReplacePrice overwrites the whole price document, independently of the
// threshold key.
func (c *Client) ReplacePrice(ctx context.Context, p *domain.DeclarationPrice) error {
	ctx, span := tracer.Start(ctx, "Supabase.ReplacePrice")
	defer span.End()

	return c.putSetting(ctx, settingKeyPrice, p)
}
