// Package domain defines the core business entities for the eligibility
// classification engine. These models are independent of the record store
// and represent the canonical data structures used throughout the service.
package domain

import "time"

// ============================================================
// Policy — price + autonomous threshold
// ============================================================

// DeclarationPrice is the amount charged for a declaration.
// Unrelated to classification but stored alongside the threshold.
type DeclarationPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// DimensionLimit is a (max count, max total value) pair for one
// declared dimension. Limits are inclusive: count <= MaxCount and
// totalValue <= MaxTotalValue are within bounds. A limit of zero means
// "not permitted at all".
type DimensionLimit struct {
	MaxCount      int     `json:"max_count"`
	MaxTotalValue float64 `json:"max_total_value"`
}

// AutonomousThreshold holds every limit the evaluator applies. Each
// field is always concrete: absent fields in the stored settings row are
// materialized with defaults by the store adapter, so zero here always
// means "not permitted", never "unset".
type AutonomousThreshold struct {
	Assets              DimensionLimit `json:"assets"`
	MaxRealEstate       int            `json:"max_real_estate"`
	MaxVehicles         int            `json:"max_vehicles"`
	MaxBankAccounts     int            `json:"max_bank_accounts"`
	Debts               DimensionLimit `json:"debts"`
	Incomes             DimensionLimit `json:"incomes"`
	MaxDependents       int            `json:"max_dependents"`
	DeductibleExpenses  DimensionLimit `json:"deductible_expenses"`
	MaxCapitalGains     int            `json:"max_capital_gains"`
	MaxStockOperations  int            `json:"max_stock_operations"`
	MaxCryptoOperations int            `json:"max_crypto_operations"`

	// Capability flags. Foreign assets, rural activity and complex
	// investments default to not permitted; domestic employees default
	// to permitted (a common deduction).
	AllowForeignAssets      bool `json:"allow_foreign_assets"`
	AllowRuralActivity      bool `json:"allow_rural_activity"`
	AllowComplexInvestments bool `json:"allow_complex_investments"`
	AllowDomesticEmployees  bool `json:"allow_domestic_employees"`

	// Override triggers, each forcing review independently of the
	// dimension limits above.
	ReviewIfSpouseHasIncome bool    `json:"review_if_spouse_with_income"`
	ReviewIfMultipleSources bool    `json:"review_if_multiple_sources"`
	ReviewIfHighValue       bool    `json:"review_if_high_value"`
	HighValueThreshold      float64 `json:"high_value_threshold"`
}

// Policy is the active platform policy: what a declaration costs and
// which profiles may be processed autonomously.
type Policy struct {
	Price     DeclarationPrice    `json:"price"`
	Threshold AutonomousThreshold `json:"autonomous_threshold"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// DefaultThreshold returns the threshold written by first-run setup and
// used to fill absent fields of a stored settings row.
func DefaultThreshold() AutonomousThreshold {
	return AutonomousThreshold{
		Assets:              DimensionLimit{MaxCount: 5, MaxTotalValue: 500000},
		MaxRealEstate:       2,
		MaxVehicles:         2,
		MaxBankAccounts:     4,
		Debts:               DimensionLimit{MaxCount: 3, MaxTotalValue: 200000},
		Incomes:             DimensionLimit{MaxCount: 3, MaxTotalValue: 300000},
		MaxDependents:       4,
		DeductibleExpenses:  DimensionLimit{MaxCount: 10, MaxTotalValue: 50000},
		MaxCapitalGains:     0,
		MaxStockOperations:  0,
		MaxCryptoOperations: 0,

		AllowForeignAssets:      false,
		AllowRuralActivity:      false,
		AllowComplexInvestments: false,
		AllowDomesticEmployees:  true,

		ReviewIfSpouseHasIncome: true,
		ReviewIfMultipleSources: true,
		ReviewIfHighValue:       true,
		HighValueThreshold:      1000000,
	}
}

// DefaultPrice returns the price written by first-run setup.
func DefaultPrice() DeclarationPrice {
	return DeclarationPrice{Amount: 49.90, Currency: "BRL"}
}
