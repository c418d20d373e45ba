package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var inconsistencyTracer = otel.Tracer("service/inconsistency")

// InconsistencyService persists review cases produced by classification
// and drives the staff review lifecycle.
type InconsistencyService struct {
	store   port.InconsistencyStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInconsistencyService creates a new inconsistency service.
func NewInconsistencyService(store port.InconsistencyStore, metrics *observability.Metrics, logger *zap.Logger) *InconsistencyService {
	return &InconsistencyService{store: store, metrics: metrics, logger: logger}
}

// RecordIfNeeded persists a review case for a flagged verdict and
// returns the new case id. Autonomous verdicts are a no-op. Every
// flagged run creates a new case; repeated classifications of the same
// user produce separate cases so reviewers see the full history.
func (s *InconsistencyService) RecordIfNeeded(ctx context.Context, userID, declarationID string, verdict *domain.ClassificationVerdict) (string, error) {
	ctx, span := inconsistencyTracer.Start(ctx, "InconsistencyService.RecordIfNeeded")
	defer span.End()

	if !verdict.RequiresManualReview {
		return "", nil
	}

	inc := &domain.Inconsistency{
		ID:            uuid.NewString(),
		UserID:        userID,
		DeclarationID: declarationID,
		Type:          domain.InconsistencyTypeProfileComplexity,
		Description:   buildDescription(verdict.Violations),
		Severity:      domain.SeverityMedium,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.store.CreateInconsistency(ctx, inc)
	if err != nil {
		return "", &domain.ErrRecordWrite{Resource: "inconsistencies", Err: err}
	}
	s.metrics.IncrInconsistencyCreated(created.Severity)

	return created.ID, nil
}

// List returns review cases, optionally filtered by status, paginated.
func (s *InconsistencyService) List(ctx context.Context, status string, page, pageSize int) ([]domain.Inconsistency, error) {
	ctx, span := inconsistencyTracer.Start(ctx, "InconsistencyService.List")
	defer span.End()

	if status != "" && !domain.ValidStatus(status) {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %s", status)}
	}
	return s.store.ListInconsistencies(ctx, status, page, pageSize)
}

// Get returns one review case by id.
func (s *InconsistencyService) Get(ctx context.Context, id string) (*domain.Inconsistency, error) {
	ctx, span := inconsistencyTracer.Start(ctx, "InconsistencyService.Get")
	defer span.End()

	return s.store.GetInconsistency(ctx, id)
}

// UpdateStatus moves a case through the review lifecycle. Transitions
// not allowed by the state machine fail validation; resolved and
// ignored are terminal.
func (s *InconsistencyService) UpdateStatus(ctx context.Context, id, status string) (*domain.Inconsistency, error) {
	ctx, span := inconsistencyTracer.Start(ctx, "InconsistencyService.UpdateStatus")
	defer span.End()

	if !domain.ValidStatus(status) {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %s", status)}
	}

	current, err := s.store.GetInconsistency(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(current.Status, status) {
		return nil, &domain.ErrValidation{
			Field:   "status",
			Message: fmt.Sprintf("transição não permitida: %s → %s", current.Status, status),
		}
	}

	if err := s.store.UpdateInconsistencyStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("inconsistency status updated",
		zap.String("inconsistency_id", id),
		zap.String("from", current.Status),
		zap.String("to", status),
	)

	current.Status = status
	return current, nil
}

// buildDescription joins the violation messages into the pt-BR summary
// reviewers read, e.g. "Perfil excede limites do plano autônomo: 6 bens
// (limite: 5); cônjuge possui rendimentos (revisão obrigatória)".
func buildDescription(violations []domain.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.Message)
	}
	return "Perfil excede limites do plano autônomo: " + strings.Join(parts, "; ")
}
