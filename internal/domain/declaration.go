package domain

// ============================================================
// Declared records — the collections the aggregator reads
// ============================================================

// Asset kinds as stored in declared_assets.kind.
const (
	AssetKindRealEstate  = "real_estate"
	AssetKindVehicle     = "vehicle"
	AssetKindBankAccount = "bank_account"
	AssetKindFII         = "fii" // real-estate investment fund quotas
	AssetKindOther       = "other"
)

// DeclaredAsset is one entry of the taxpayer's asset inventory.
type DeclaredAsset struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Kind        string  `json:"kind"`
	Description string  `json:"description,omitempty"`
	Value       float64 `json:"value"`
}

// DeclaredDebt is one declared debt or liability.
type DeclaredDebt struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Value  float64 `json:"value"`
}

// IncomeRecord is one income entry. One payer can issue several income
// records, so the distinct payer document matters for source counting.
type IncomeRecord struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	PayerName     string  `json:"payer_name,omitempty"`
	PayerDocument string  `json:"payer_document"`
	Value         float64 `json:"value"`
}

// DeductibleExpense is one deductible expense entry (health, education...).
type DeductibleExpense struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Category string  `json:"category,omitempty"`
	Value    float64 `json:"value"`
}

// CapitalGainEvent is one taxable disposal event.
type CapitalGainEvent struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Value  float64 `json:"value"`
}

// StockOperation is one stock-market operation.
type StockOperation struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Market   string  `json:"market"` // spot, derivatives...
	DayTrade bool    `json:"day_trade"`
	Value    float64 `json:"value"`
}

// CryptoOperation is one crypto-asset operation.
type CryptoOperation struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Value  float64 `json:"value"`
}

// TaxpayerProfile carries the boolean facts declared directly on the
// taxpayer record rather than derived from collections.
type TaxpayerProfile struct {
	UserID               string `json:"user_id"`
	DependentCount       int    `json:"dependent_count"`
	HasForeignAssets     bool   `json:"has_foreign_assets"`
	HasRuralActivity     bool   `json:"has_rural_activity"`
	HasDomesticEmployees bool   `json:"has_domestic_employees"`
	SpouseHasIncome      bool   `json:"spouse_has_income"`
}
