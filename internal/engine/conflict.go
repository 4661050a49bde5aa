package engine

import (
	"strings"

	"tradebridge/internal/domain"
)

// CheckConflicts scans a batch for multiple orders on the same symbol and
// rejects unsafe pairings before anything is submitted. A repeated symbol is
// permitted only as exactly two orders pairing one price-class type (MARKET
// or LIMIT) with one stop-class type (STOP or STOP_LIMIT) — an entry order
// with its protective stop. Same-class pairs, duplicate types, and three or
// more orders on one symbol all fail the whole batch.
//
// This check is purely local: it runs before any broker call.
func CheckConflicts(intents []domain.OrderIntent) error {
	bySymbol := make(map[string][]domain.OrderType)
	for _, intent := range intents {
		sym := strings.ToUpper(strings.TrimSpace(intent.Symbol))
		// Unknown type strings fall back to MARKET for classification,
		// matching the engine's unknown-type default.
		t, _ := domain.NormalizeOrderType(intent.OrderType)
		bySymbol[sym] = append(bySymbol[sym], t)
	}

	for sym, types := range bySymbol {
		if len(types) < 2 {
			continue
		}
		if len(types) == 2 && compatiblePair(types[0], types[1]) {
			continue
		}
		return &ConflictError{Symbol: sym, Types: types}
	}
	return nil
}

// compatiblePair reports whether two order types on one symbol may coexist:
// exactly one entry (MARKET/LIMIT) plus one stop (STOP/STOP_LIMIT).
func compatiblePair(a, b domain.OrderType) bool {
	return a.IsStopClass() != b.IsStopClass()
}
