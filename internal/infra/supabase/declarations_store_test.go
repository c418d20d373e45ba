package supabase

import (
	"encoding/json"
	"testing"
)

func TestFlexValue_DecodesLooseMonetaryColumns(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"number", `{"id":"a1","value":123.45}`, 123.45},
		{"numeric string", `{"id":"a1","value":"678.9"}`, 678.9},
		{"null", `{"id":"a1","value":null}`, 0},
		{"missing", `{"id":"a1"}`, 0},
		{"garbage string", `{"id":"a1","value":"garbage"}`, 0},
		{"object", `{"id":"a1","value":{"x":1}}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var row assetRow
			if err := json.Unmarshal([]byte(tc.raw), &row); err != nil {
				t.Fatalf("decode must not fail on loose values: %v", err)
			}
			if float64(row.Value) != tc.want {
				t.Errorf("expected %v, got %v", tc.want, float64(row.Value))
			}
		})
	}
}
