package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
)

// ============================================================
// Inconsistencies — persisted review cases
// (implements port.InconsistencyStore)
// ============================================================

type inconsistencyRow struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	DeclarationID string `json:"declaration_id"`
	Type          string `json:"inconsistency_type"`
	Description   string `json:"description"`
	Severity      string `json:"severity"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func (r inconsistencyRow) toDomain() domain.Inconsistency {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Inconsistency{
		ID:            r.ID,
		UserID:        r.UserID,
		DeclarationID: r.DeclarationID,
		Type:          r.Type,
		Description:   r.Description,
		Severity:      r.Severity,
		Status:        r.Status,
		CreatedAt:     createdAt,
	}
}

// CreateInconsistency inserts one review case. Repeated classifications
// insert repeated cases; de-duplication is deliberately not done here.
func (c *Client) CreateInconsistency(ctx context.Context, inc *domain.Inconsistency) (*domain.Inconsistency, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateInconsistency")
	defer span.End()

	row := map[string]any{
		"id":                 inc.ID,
		"user_id":            inc.UserID,
		"declaration_id":     inc.DeclarationID,
		"inconsistency_type": inc.Type,
		"description":        inc.Description,
		"severity":           inc.Severity,
		"status":             inc.Status,
		"created_at":         inc.CreatedAt.Format(time.RFC3339),
	}

	body, err := c.doPost(ctx, "inconsistencies", row)
	if err != nil {
		return nil, err
	}

	var results []inconsistencyRow
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode inconsistency: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from inconsistencies insert")
	}
	created := results[0].toDomain()
	return &created, nil
}

func (c *Client) ListInconsistencies(ctx context.Context, status string, page, pageSize int) ([]domain.Inconsistency, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInconsistencies")
	defer span.End()

	offset := (page - 1) * pageSize
	path := fmt.Sprintf("inconsistencies?order=created_at.desc&limit=%d&offset=%d", pageSize, offset)
	if status != "" {
		path = fmt.Sprintf("inconsistencies?status=eq.%s&order=created_at.desc&limit=%d&offset=%d", status, pageSize, offset)
	}

	var rows []inconsistencyRow
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/inconsistencies", Err: err}
	}

	cases := make([]domain.Inconsistency, 0, len(rows))
	for _, r := range rows {
		cases = append(cases, r.toDomain())
	}
	return cases, nil
}

func (c *Client) GetInconsistency(ctx context.Context, id string) (*domain.Inconsistency, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetInconsistency")
	defer span.End()

	var rows []inconsistencyRow
	if err := c.getJSON(ctx, fmt.Sprintf("inconsistencies?id=eq.%s&limit=1", id), &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/inconsistencies", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "inconsistency", ID: id}
	}
	inc := rows[0].toDomain()
	return &inc, nil
}

func (c *Client) UpdateInconsistencyStatus(ctx context.Context, id, status string) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateInconsistencyStatus")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("inconsistencies?id=eq.%s", id), map[string]any{
		"status":     status,
		"updated_at": time.Now().Format(time.RFC3339),
	})
}
