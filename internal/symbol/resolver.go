// Package symbol resolves textual instrument identifiers into contract
// descriptors. Plain tickers resolve to equities; symbols starting with a
// configured futures prefix must follow the TICKER-MON-YY alert format and
// resolve to dated futures contracts.
package symbol

import (
	"fmt"
	"strings"

	"tradebridge/internal/domain"
)

// monthCodes maps the three-letter expiry month abbreviations used in alert
// symbols to two-digit month numbers.
var monthCodes = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AUG": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

// ParseError reports a malformed instrument symbol. It is a per-order
// failure: the rest of the batch keeps processing.
type ParseError struct {
	Symbol string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing symbol %q: %s", e.Symbol, e.Reason)
}

// Config controls how symbols resolve.
type Config struct {
	// FuturesPrefixes lists root-symbol prefixes that mark a symbol as a
	// dated future (e.g. "VX" covers VX and VXM).
	FuturesPrefixes []string

	// Defaults applied to resolved equity contracts.
	EquityExchange string
	EquityCurrency string

	// Defaults applied to resolved futures contracts.
	FuturesExchange string
	FuturesCurrency string
}

// Resolver parses instrument symbols into contract descriptors.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver with the given configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve parses sym into a ContractDescriptor. Input is case-insensitive.
// Futures symbols must have exactly three hyphen-separated fields:
// TICKER-MON-YY, where MON is a three-letter month code and YY is a
// two-digit year expanded to 20YY.
func (r *Resolver) Resolve(sym string) (domain.ContractDescriptor, error) {
	s := strings.ToUpper(strings.TrimSpace(sym))
	if s == "" {
		return domain.ContractDescriptor{}, &ParseError{Symbol: sym, Reason: "empty symbol"}
	}

	if !r.isFutures(s) {
		return domain.ContractDescriptor{
			Kind:     domain.InstrumentEquity,
			Root:     s,
			Exchange: r.cfg.EquityExchange,
			Currency: r.cfg.EquityCurrency,
		}, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return domain.ContractDescriptor{}, &ParseError{
			Symbol: sym,
			Reason: fmt.Sprintf("expected TICKER-MON-YY, got %d fields", len(parts)),
		}
	}

	root, mon, yy := parts[0], parts[1], parts[2]
	mm, ok := monthCodes[mon]
	if !ok {
		return domain.ContractDescriptor{}, &ParseError{
			Symbol: sym,
			Reason: fmt.Sprintf("unknown month code %q", mon),
		}
	}

	if yy == "" || len(yy) > 2 {
		return domain.ContractDescriptor{}, &ParseError{
			Symbol: sym,
			Reason: fmt.Sprintf("invalid two-digit year %q", yy),
		}
	}
	for _, c := range yy {
		if c < '0' || c > '9' {
			return domain.ContractDescriptor{}, &ParseError{
				Symbol: sym,
				Reason: fmt.Sprintf("invalid two-digit year %q", yy),
			}
		}
	}
	if len(yy) == 1 {
		yy = "0" + yy
	}

	return domain.ContractDescriptor{
		Kind:     domain.InstrumentFuture,
		Root:     root,
		Expiry:   "20" + yy + mm,
		Exchange: r.cfg.FuturesExchange,
		Currency: r.cfg.FuturesCurrency,
	}, nil
}

// isFutures reports whether the (already uppercased) symbol carries one of
// the configured futures prefixes.
func (r *Resolver) isFutures(s string) bool {
	for _, p := range r.cfg.FuturesPrefixes {
		if p != "" && strings.HasPrefix(s, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
