package types_test

import (
	"testing"

	"github.com/finvox/finvox/pkg/types"
)

func TestSniffOutcome(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		in         string
		wantFailed bool
	}{
		{"plain answer", "AAPL's revenue for 2023 is $383.29 billion.", false},
		{"empty", "", true},
		{"error prefix", "Error fetching revenue: connection refused", true},
		{"embedded error", "Error: No balance sheet data available for AAPL.", true},
		{"none marker", "None of the requested data was available.", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := types.SniffOutcome(tt.in)
			if o.Failed() != tt.wantFailed {
				t.Errorf("SniffOutcome(%q).Failed() = %v, want %v", tt.in, o.Failed(), tt.wantFailed)
			}
			if o.Text() != tt.in {
				t.Errorf("SniffOutcome(%q).Text() = %q, want input preserved", tt.in, o.Text())
			}
		})
	}
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()
	if o := types.Value("answer"); o.Failed() || o.Text() != "answer" {
		t.Errorf("Value: got failed=%v text=%q", o.Failed(), o.Text())
	}
	if o := types.Failure("boom"); !o.Failed() || o.Text() != "boom" {
		t.Errorf("Failure: got failed=%v text=%q", o.Failed(), o.Text())
	}
}
