package domain

// ============================================================
// Profile metrics — derived, recomputed on every classification
// ============================================================

// DimensionMetrics is the count and summed declared value of one
// dimension. Empty collections yield {0, 0}.
type DimensionMetrics struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// ProfileMetrics is the fixed reduction of a taxpayer's declared state
// that the evaluator consumes. Never persisted or cached: it must
// reflect the taxpayer's records at the moment of purchase.
type ProfileMetrics struct {
	Assets             DimensionMetrics `json:"assets"`
	Debts              DimensionMetrics `json:"debts"`
	Incomes            DimensionMetrics `json:"incomes"`
	DeductibleExpenses DimensionMetrics `json:"deductible_expenses"`
	CapitalGains       DimensionMetrics `json:"capital_gains"`
	StockOperations    DimensionMetrics `json:"stock_operations"`
	CryptoOperations   DimensionMetrics `json:"crypto_operations"`

	RealEstateCount  int `json:"real_estate_count"`
	VehicleCount     int `json:"vehicle_count"`
	BankAccountCount int `json:"bank_account_count"`

	DependentCount int `json:"dependent_count"`

	HasForeignAssets      bool `json:"has_foreign_assets"`
	HasRuralActivity      bool `json:"has_rural_activity"`
	HasComplexInvestments bool `json:"has_complex_investments"`
	HasDomesticEmployees  bool `json:"has_domestic_employees"`
	SpouseHasIncome       bool `json:"spouse_has_income"`

	// Distinct payer identities across income records, not the raw
	// record count.
	IncomeSourceCount int `json:"income_source_count"`
}
