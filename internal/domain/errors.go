package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the caller lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrPolicyNotConfigured indicates no active threshold policy has ever
// been saved. Distinct from a policy that explicitly permits everything;
// classification must surface it rather than default silently.
type ErrPolicyNotConfigured struct{}

func (e *ErrPolicyNotConfigured) Error() string {
	return "autonomous threshold policy not configured"
}

// ErrMetricsRead indicates a read of one of the taxpayer's declared
// collections failed. Classification must not proceed on partial data.
type ErrMetricsRead struct {
	Collection string
	Err        error
}

func (e *ErrMetricsRead) Error() string {
	return fmt.Sprintf("metrics read failed [%s]: %v", e.Collection, e.Err)
}

func (e *ErrMetricsRead) Unwrap() error {
	return e.Err
}

// ErrRecordWrite indicates persisting an inconsistency case failed.
// The verdict is still returned to the caller; the case will be missing.
type ErrRecordWrite struct {
	Resource string
	Err      error
}

func (e *ErrRecordWrite) Error() string {
	return fmt.Sprintf("record write failed [%s]: %v", e.Resource, e.Err)
}

func (e *ErrRecordWrite) Unwrap() error {
	return e.Err
}
