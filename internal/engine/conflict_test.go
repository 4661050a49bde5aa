package engine

import (
	"errors"
	"testing"

	"tradebridge/internal/domain"
)

func intents(pairs ...[2]string) []domain.OrderIntent {
	out := make([]domain.OrderIntent, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.OrderIntent{Symbol: p[0], OrderType: p[1], Action: "BUY", Qty: 1})
	}
	return out
}

func TestCheckConflictsAllowed(t *testing.T) {
	cases := []struct {
		name  string
		batch []domain.OrderIntent
	}{
		{"single orders on distinct symbols", intents(
			[2]string{"AAPL", "MARKET"}, [2]string{"MSFT", "MARKET"},
		)},
		{"market with stop", intents(
			[2]string{"AAPL", "MARKET"}, [2]string{"AAPL", "STOP"},
		)},
		{"market with stop limit", intents(
			[2]string{"AAPL", "MKT"}, [2]string{"AAPL", "STP_LMT"},
		)},
		{"limit with stop", intents(
			[2]string{"VX-OCT-25", "LIMIT"}, [2]string{"VX-OCT-25", "STOP"},
		)},
		{"limit with stop limit", intents(
			[2]string{"AAPL", "LMT"}, [2]string{"AAPL", "STOP_LIMIT"},
		)},
		{"symbols differ only before normalization", intents(
			[2]string{"aapl ", "MARKET"}, [2]string{"AAPL", "STOP"},
		)},
	}

	for _, c := range cases {
		if err := CheckConflicts(c.batch); err != nil {
			t.Errorf("%s: CheckConflicts() = %v, want nil", c.name, err)
		}
	}
}

func TestCheckConflictsRejected(t *testing.T) {
	cases := []struct {
		name  string
		batch []domain.OrderIntent
	}{
		{"market with limit", intents(
			[2]string{"AAPL", "MARKET"}, [2]string{"AAPL", "LIMIT"},
		)},
		{"duplicate market", intents(
			[2]string{"AAPL", "MARKET"}, [2]string{"AAPL", "MARKET"},
		)},
		{"stop with stop limit", intents(
			[2]string{"AAPL", "STOP"}, [2]string{"AAPL", "STOP_LIMIT"},
		)},
		{"three orders on one symbol", intents(
			[2]string{"AAPL", "MARKET"}, [2]string{"AAPL", "STOP"}, [2]string{"AAPL", "STOP_LIMIT"},
		)},
	}

	for _, c := range cases {
		err := CheckConflicts(c.batch)
		if err == nil {
			t.Errorf("%s: CheckConflicts() = nil, want ConflictError", c.name)
			continue
		}
		var ce *ConflictError
		if !errors.As(err, &ce) {
			t.Errorf("%s: error = %T, want *ConflictError", c.name, err)
			continue
		}
		if ce.Symbol != "AAPL" {
			t.Errorf("%s: ConflictError.Symbol = %q, want AAPL", c.name, ce.Symbol)
		}
	}
}
