package domain

import "time"

// ============================================================
// Inconsistency — persisted review case
// ============================================================

// Inconsistency types.
const (
	InconsistencyTypeProfileComplexity = "profile_complexity"
)

// Severities. Threshold-driven violations currently always record
// medium; low/high/critical are reserved for future rule types.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Statuses. Lifecycle: pending → reviewed → resolved, or
// pending → ignored. Resolved and ignored are terminal.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusResolved = "resolved"
	StatusIgnored  = "ignored"
)

// Inconsistency is a persisted case for staff review. Immutable once
// created except for Status.
type Inconsistency struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DeclarationID string    `json:"declaration_id,omitempty"`
	Type          string    `json:"inconsistency_type"`
	Description   string    `json:"description"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

var statusTransitions = map[string][]string{
	StatusPending:  {StatusReviewed, StatusIgnored},
	StatusReviewed: {StatusResolved},
	StatusResolved: {},
	StatusIgnored:  {},
}

// ValidStatus reports whether s is a known inconsistency status.
func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether an inconsistency may move from one
// status to another. No transition returns to pending.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
