package domain

// ============================================================
// Classification verdict — ephemeral, returned to the purchase flow
// ============================================================

// ProfileClass is the outcome of a classification.
type ProfileClass string

const (
	ProfileAutonomous    ProfileClass = "autonomous"
	ProfileInconsistency ProfileClass = "inconsistency"
)

// Violation rule codes.
const (
	RuleMaxAssets             = "max_assets"
	RuleMaxAssetValue         = "max_asset_value"
	RuleMaxRealEstate         = "max_real_estate"
	RuleMaxVehicles           = "max_vehicles"
	RuleMaxBankAccounts       = "max_bank_accounts"
	RuleMaxDebts              = "max_debts"
	RuleMaxDebtValue          = "max_debt_value"
	RuleMaxIncomes            = "max_incomes"
	RuleMaxIncomeValue        = "max_income_value"
	RuleMaxDependents         = "max_dependents"
	RuleMaxDeductions         = "max_deductions"
	RuleMaxDeductionValue     = "max_deduction_value"
	RuleMaxCapitalGains       = "max_capital_gains"
	RuleMaxStockOperations    = "max_stock_operations"
	RuleMaxCryptoOperations   = "max_crypto_operations"
	RuleForeignAssets         = "foreign_assets_not_allowed"
	RuleRuralActivity         = "rural_activity_not_allowed"
	RuleComplexInvestments    = "complex_investments_not_allowed"
	RuleDomesticEmployees     = "domestic_employees_not_allowed"
	RuleSpouseHasIncome       = "review_spouse_with_income"
	RuleMultipleIncomeSources = "review_multiple_income_sources"
	RuleHighValue             = "review_high_value"
)

// Violation is one breached rule, with the observed value and the
// configured limit. Message is the human-readable pt-BR fragment used
// to build the inconsistency description.
type Violation struct {
	Rule     string  `json:"rule"`
	Observed float64 `json:"observed"`
	Limit    float64 `json:"limit"`
	Message  string  `json:"message"`
}

// ClassificationVerdict is the transient result of one classification
// run. Only its negative outcome causes a side effect (an Inconsistency
// record); the verdict itself is never persisted.
type ClassificationVerdict struct {
	Profile              ProfileClass        `json:"profile"`
	Metrics              ProfileMetrics      `json:"metrics"`
	Thresholds           AutonomousThreshold `json:"thresholds"`
	RequiresManualReview bool                `json:"requiresManualReview"`
	Violations           []Violation         `json:"violations"`
}

// ClassificationStats is returned by GET /v1/metrics/classification.
type ClassificationStats struct {
	TotalClassifications int64   `json:"totalClassifications"`
	Autonomous           int64   `json:"autonomous"`
	FlaggedForReview     int64   `json:"flaggedForReview"`
	ReviewRate           float64 `json:"reviewRate"`
	InconsistenciesSaved int64   `json:"inconsistenciesSaved"`
	PriceCacheHitRate    float64 `json:"priceCacheHitRate"`
	Period               string  `json:"period"`
}
