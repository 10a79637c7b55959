package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestValuationJSONWithMissingDeltas(t *testing.T) {
	v := Valuation{
		RunID:         "run-1",
		Company:       Company{Ticker: "AAPL", CIK: "320193"},
		FCFFValue:     150,
		DividendValue: -3,
		FCFFDelta:     Finite(0.2),
		DividendDelta: Finite(math.Inf(1)),
		Status:        StatusNI,
		ValuedAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal(Valuation) error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if decoded["dividend_delta"] != nil {
		t.Errorf("dividend_delta: got %v, want null", decoded["dividend_delta"])
	}
	if decoded["fcff_delta"] != 0.2 {
		t.Errorf("fcff_delta: got %v, want 0.2", decoded["fcff_delta"])
	}
	if decoded["status"] != "NI" {
		t.Errorf("status: got %v", decoded["status"])
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) != nil || Finite(math.Inf(-1)) != nil {
		t.Error("non-finite values should map to nil")
	}
	if p := Finite(1.5); p == nil || *p != 1.5 {
		t.Errorf("Finite(1.5) = %v", p)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[Status]string{
		StatusOK: "under-priced",
		StatusKO: "over-priced",
		StatusNI: "fairly priced or inconclusive",
	}
	for s, want := range tests {
		if got := s.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", s, got, want)
		}
	}
}
