package supabase

import (
	"encoding/json"
	"testing"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
)

func TestThresholdDoc_EmptyDocumentMaterializesDefaults(t *testing.T) {
	var doc thresholdDoc
	if err := json.Unmarshal([]byte(`{}`), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := doc.materialize(); got != domain.DefaultThreshold() {
		t.Errorf("empty document must materialize the defaults, got %+v", got)
	}
}

func TestThresholdDoc_PartialDocumentKeepsExplicitZero(t *testing.T) {
	raw := `{
		"max_dependents": 0,
		"allow_domestic_employees": false,
		"assets": {"max_count": 7}
	}`
	var doc thresholdDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := doc.materialize()

	if got.MaxDependents != 0 {
		t.Errorf("explicit zero means not permitted, got %d", got.MaxDependents)
	}
	if got.AllowDomesticEmployees {
		t.Error("explicit false must not be replaced by the default")
	}
	if got.Assets.MaxCount != 7 {
		t.Errorf("stored field must win over the default, got %d", got.Assets.MaxCount)
	}
	if got.Assets.MaxTotalValue != 500000 {
		t.Errorf("absent nested field must take the default, got %v", got.Assets.MaxTotalValue)
	}
	if got.MaxVehicles != 2 {
		t.Errorf("absent field must take the default, got %d", got.MaxVehicles)
	}
	if !got.ReviewIfSpouseHasIncome {
		t.Error("absent trigger must take the default")
	}
}
