package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/joaodariop/foour-tax-sub000/internal/handler"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/cache"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/observability"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/resilience"
	"github.com/joaodariop/foour-tax-sub000/internal/infra/supabase"
	"github.com/joaodariop/foour-tax-sub000/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret  = "integration-secret"
	testServiceKey = "integration-service-key"
)

// fakePostgREST emulates the subset of the PostgREST API the record
// store uses: filtered selects, inserts with return=representation,
// upserts on platform_settings.key and status patches.
type fakePostgREST struct {
	mu              sync.Mutex
	tables          map[string][]map[string]any
	settings        map[string]json.RawMessage
	inconsistencies []map[string]any
}

func newFakePostgREST() *fakePostgREST {
	return &fakePostgREST{
		tables:   make(map[string][]map[string]any),
		settings: make(map[string]json.RawMessage),
	}
}

func (f *fakePostgREST) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case table == "platform_settings" && r.Method == http.MethodGet:
			key := strings.TrimPrefix(q.Get("key"), "eq.")
			raw, ok := f.settings[key]
			if !ok {
				io.WriteString(w, "[]")
				return
			}
			rows := []map[string]any{{
				"key": key, "value": raw, "updated_at": time.Now().Format(time.RFC3339),
			}}
			json.NewEncoder(w).Encode(rows)

		case table == "platform_settings" && r.Method == http.MethodPost:
			var row struct {
				Key   string          `json:"key"`
				Value json.RawMessage `json:"value"`
			}
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.settings[row.Key] = row.Value
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `[{"key":%q}]`, row.Key)

		case table == "inconsistencies" && r.Method == http.MethodPost:
			var row map[string]any
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.inconsistencies = append(f.inconsistencies, row)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})

		case table == "inconsistencies" && r.Method == http.MethodPatch:
			id := strings.TrimPrefix(q.Get("id"), "eq.")
			var patch map[string]any
			json.NewDecoder(r.Body).Decode(&patch)
			for _, row := range f.inconsistencies {
				if row["id"] == id {
					if s, ok := patch["status"]; ok {
						row["status"] = s
					}
				}
			}
			w.WriteHeader(http.StatusNoContent)

		case table == "inconsistencies" && r.Method == http.MethodGet:
			var out []map[string]any
			id := strings.TrimPrefix(q.Get("id"), "eq.")
			status := strings.TrimPrefix(q.Get("status"), "eq.")
			for _, row := range f.inconsistencies {
				if id != "" && row["id"] != id {
					continue
				}
				if status != "" && row["status"] != status {
					continue
				}
				out = append(out, row)
			}
			if out == nil {
				out = []map[string]any{}
			}
			json.NewEncoder(w).Encode(out)

		case r.Method == http.MethodGet:
			userID := strings.TrimPrefix(q.Get("user_id"), "eq.")
			var out []map[string]any
			for _, row := range f.tables[table] {
				if userID == "" || row["user_id"] == userID {
					out = append(out, row)
				}
			}
			if out == nil {
				out = []map[string]any{}
			}
			json.NewEncoder(w).Encode(out)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestRouter(t *testing.T, fake *fakePostgREST) http.Handler {
	t.Helper()

	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	keyHash, err := bcrypt.GenerateFromPassword([]byte(testServiceKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration-test")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 8}

	store := supabase.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		server.URL, "anon-key", "service-role-key",
		cb, cfg, logger,
	)

	policySvc := service.NewPolicyService(store,
		cache.New[*domain.DeclarationPrice](time.Minute), metrics, logger)
	incSvc := service.NewInconsistencyService(store, metrics, logger)
	classSvc := service.NewClassificationService(
		service.NewMetricsAggregator(store, 8, metrics, logger),
		policySvc, incSvc, metrics, logger,
	)

	if err := policySvc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	return handler.NewRouter(handler.Services{
		Classification:  classSvc,
		Policy:          policySvc,
		Inconsistencies: incSvc,
		Auth:            service.NewAuthService([]byte(testJWTSecret), keyHash),
		Metrics:         metrics,
		Logger:          logger,
	})
}

func staffToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  "staff-integration",
		"role": "staff",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// TestIntegration_ComplexProfileFlow runs the full pipeline against a
// fake PostgREST backend: seed defaults, classify a complex taxpayer,
// check the persisted case and walk it through review.
func TestIntegration_ComplexProfileFlow(t *testing.T) {
	fake := newFakePostgREST()
	fake.tables["declared_assets"] = []map[string]any{
		{"id": "a1", "user_id": "user-complex", "kind": "real_estate", "value": 250000},
		{"id": "a2", "user_id": "user-complex", "kind": "real_estate", "value": 180000},
		{"id": "a3", "user_id": "user-complex", "kind": "real_estate", "value": 120000},
		{"id": "a4", "user_id": "user-complex", "kind": "vehicle", "value": 60000},
		{"id": "a5", "user_id": "user-complex", "kind": "other", "value": 10000},
		{"id": "a6", "user_id": "user-complex", "kind": "other", "value": 5000},
	}
	fake.tables["income_records"] = []map[string]any{
		{"id": "i1", "user_id": "user-complex", "payer_document": "11.111.111/0001-11", "value": 90000},
		{"id": "i2", "user_id": "user-complex", "payer_document": "22.222.222/0001-22", "value": 60000},
	}
	fake.tables["taxpayer_profiles"] = []map[string]any{
		{"id": "p1", "user_id": "user-complex", "dependent_count": 2, "spouse_has_income": true},
	}

	router := newTestRouter(t, fake)

	// --- Trigger classification ---
	req := httptest.NewRequest(http.MethodPost, "/v1/users/user-complex/declarations/decl-2025/classification", nil)
	req.Header.Set("X-Service-Key", testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("classify: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var verdict domain.ClassificationVerdict
	if err := json.NewDecoder(rec.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.Profile != domain.ProfileInconsistency {
		t.Fatalf("expected inconsistency profile, got %s", verdict.Profile)
	}
	if !verdict.RequiresManualReview {
		t.Error("expected requiresManualReview")
	}
	// 6 assets over limit 5, 3 real estate over limit 2, spouse trigger.
	for _, rule := range []string{domain.RuleMaxAssets, domain.RuleMaxRealEstate, domain.RuleSpouseHasIncome} {
		found := false
		for _, v := range verdict.Violations {
			if v.Rule == rule {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s violation, got %+v", rule, verdict.Violations)
		}
	}
	if verdict.Metrics.IncomeSourceCount != 2 {
		t.Errorf("expected 2 distinct payers, got %d", verdict.Metrics.IncomeSourceCount)
	}

	if len(fake.inconsistencies) != 1 {
		t.Fatalf("expected 1 persisted case, got %d", len(fake.inconsistencies))
	}
	desc, _ := fake.inconsistencies[0]["description"].(string)
	if !strings.Contains(desc, "6 bens (limite: 5)") {
		t.Errorf("description must carry violation messages: %q", desc)
	}

	// --- Staff reviews the case ---
	caseID, _ := fake.inconsistencies[0]["id"].(string)
	token := staffToken(t)

	body, _ := json.Marshal(map[string]string{"status": "reviewed"})
	req = httptest.NewRequest(http.MethodPatch, "/v1/admin/inconsistencies/"+caseID+"/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if fake.inconsistencies[0]["status"] != "reviewed" {
		t.Errorf("expected reviewed in the store, got %v", fake.inconsistencies[0]["status"])
	}
}

// TestIntegration_AutonomousProfile verifies a simple profile passes
// clean and writes nothing.
func TestIntegration_AutonomousProfile(t *testing.T) {
	fake := newFakePostgREST()
	fake.tables["declared_assets"] = []map[string]any{
		{"id": "a1", "user_id": "user-simple", "kind": "bank_account", "value": 15000},
	}
	fake.tables["income_records"] = []map[string]any{
		{"id": "i1", "user_id": "user-simple", "payer_document": "11.111.111/0001-11", "value": 80000},
	}
	fake.tables["taxpayer_profiles"] = []map[string]any{
		{"id": "p1", "user_id": "user-simple", "dependent_count": 1},
	}

	router := newTestRouter(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/v1/users/user-simple/declarations/decl-1/classification", nil)
	req.Header.Set("X-Service-Key", testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var verdict domain.ClassificationVerdict
	if err := json.NewDecoder(rec.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.Profile != domain.ProfileAutonomous {
		t.Errorf("expected autonomous, got %s with %+v", verdict.Profile, verdict.Violations)
	}
	if len(fake.inconsistencies) != 0 {
		t.Errorf("autonomous run must not persist cases, got %d", len(fake.inconsistencies))
	}
}

// TestIntegration_PriceAndThreshold covers the public price read and a
// staff threshold replace changing subsequent verdicts.
func TestIntegration_PriceAndThreshold(t *testing.T) {
	fake := newFakePostgREST()
	fake.tables["declared_assets"] = []map[string]any{
		{"id": "a1", "user_id": "u1", "kind": "other", "value": 100000},
		{"id": "a2", "user_id": "u1", "kind": "other", "value": 100000},
	}
	fake.tables["taxpayer_profiles"] = []map[string]any{
		{"id": "p1", "user_id": "u1"},
	}

	router := newTestRouter(t, fake)
	token := staffToken(t)

	// Seeded price is public.
	req := httptest.NewRequest(http.MethodGet, "/v1/checkout/price", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("price: expected 200, got %d", rec.Code)
	}
	var price domain.DeclarationPrice
	json.NewDecoder(rec.Body).Decode(&price)
	if price.Amount != 49.90 {
		t.Errorf("expected seeded price 49.90, got %v", price.Amount)
	}

	// Tighten the asset limit below the user's count.
	next := domain.DefaultThreshold()
	next.Assets.MaxCount = 1
	body, _ := json.Marshal(next)
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/settings/threshold", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put threshold: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/users/u1/declarations/d1/classification", nil)
	req.Header.Set("X-Service-Key", testServiceKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("classify: expected 200, got %d", rec.Code)
	}
	var verdict domain.ClassificationVerdict
	json.NewDecoder(rec.Body).Decode(&verdict)
	if verdict.Profile != domain.ProfileInconsistency {
		t.Errorf("tightened threshold must flag the profile, got %s", verdict.Profile)
	}
}
