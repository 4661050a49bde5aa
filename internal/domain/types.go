// Package domain defines the core types shared across the tradebridge
// system: incoming order intents, resolved contract descriptors, normalized
// broker orders, and per-batch execution results.
package domain

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderType identifies how an order executes.
type OrderType string

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
)

// orderTypeAliases maps the wire spellings accepted on the webhook to
// canonical order types. TradingView alert templates commonly use the short
// forms.
var orderTypeAliases = map[string]OrderType{
	"MKT":        OrderTypeMarket,
	"MARKET":     OrderTypeMarket,
	"LMT":        OrderTypeLimit,
	"LIMIT":      OrderTypeLimit,
	"STP":        OrderTypeStop,
	"STOP":       OrderTypeStop,
	"STP_LMT":    OrderTypeStopLimit,
	"STOP_LIMIT": OrderTypeStopLimit,
}

// NormalizeOrderType maps a raw order type string to its canonical OrderType.
// The empty string normalizes to MARKET. The second return reports whether
// the input was recognised; unrecognised inputs return MARKET so callers can
// apply the configured unknown-type policy.
func NormalizeOrderType(raw string) (OrderType, bool) {
	if raw == "" {
		return OrderTypeMarket, true
	}
	if t, ok := orderTypeAliases[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return t, true
	}
	return OrderTypeMarket, false
}

// IsStopClass reports whether the order type triggers off a stop price.
func (t OrderType) IsStopClass() bool {
	return t == OrderTypeStop || t == OrderTypeStopLimit
}

// InstrumentKind distinguishes plain equities from dated derivatives.
type InstrumentKind string

const (
	InstrumentEquity InstrumentKind = "EQUITY"
	InstrumentFuture InstrumentKind = "FUTURE"
)

// ---------------------------------------------------------------------------
// Intents and contracts
// ---------------------------------------------------------------------------

// OrderIntent is one raw order as received on the webhook. Exactly one of
// (Action, Qty) or TargetPosition is authoritative; when both are present
// TargetPosition wins and Action/Qty are discarded for that order.
type OrderIntent struct {
	Symbol         string   `json:"symbol"`
	Action         string   `json:"action,omitempty"`
	Qty            int64    `json:"qty,omitempty"`
	OrderType      string   `json:"order_type,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	AuxPrice       *float64 `json:"aux_price,omitempty"`
	TargetPosition *int64   `json:"position,omitempty"`
}

// HasTarget reports whether the intent is position-based rather than an
// explicit buy/sell.
func (o OrderIntent) HasTarget() bool { return o.TargetPosition != nil }

// ContractDescriptor is the resolved identity of a tradable instrument.
// Expiry, Exchange, and Currency are set for futures only; Expiry is YYYYMM.
type ContractDescriptor struct {
	Kind     InstrumentKind `json:"kind"`
	Root     string         `json:"root"`
	Expiry   string         `json:"expiry,omitempty"`
	Exchange string         `json:"exchange,omitempty"`
	Currency string         `json:"currency,omitempty"`
}

// Key returns the identity used for position and open-order matching:
// root symbol for equities, root plus expiry for futures. Multiplier
// variants at the same expiry are not disambiguated.
func (d ContractDescriptor) Key() string {
	if d.Kind == InstrumentFuture {
		return d.Root + ":" + d.Expiry
	}
	return d.Root
}

// LocalSymbol returns the broker-facing symbol for the contract.
func (d ContractDescriptor) LocalSymbol() string {
	if d.Kind == InstrumentFuture {
		return d.Root + d.Expiry
	}
	return d.Root
}

// Position is a settled (filled and held) quantity for one contract, as
// reported by the broker. Qty is signed: negative for short positions.
type Position struct {
	Contract ContractDescriptor
	Qty      int64
}

// OpenOrder is a currently open, unfilled order at the broker. Its signed
// contribution to the pending delta is +Qty for BUY and -Qty for SELL.
type OpenOrder struct {
	Contract ContractDescriptor
	Side     OrderSide
	Qty      int64
}

// SignedQty returns the open order's contribution to the pending delta.
func (o OpenOrder) SignedQty() int64 {
	if o.Side == OrderSideSell {
		return -o.Qty
	}
	return o.Qty
}

// ---------------------------------------------------------------------------
// Normalized orders and broker acknowledgements
// ---------------------------------------------------------------------------

// ReconciledOrder is a normalized, ready-to-submit order. LimitPrice is set
// for LIMIT and STOP_LIMIT; StopPrice is the trigger for STOP and STOP_LIMIT.
type ReconciledOrder struct {
	Side       OrderSide
	Quantity   int64
	Type       OrderType
	LimitPrice *float64
	StopPrice  *float64
}

// BrokerOrder is the broker's acknowledgement of a submitted order.
type BrokerOrder struct {
	ID            string
	ClientOrderID string
	Status        string
	SubmittedAt   time.Time
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// ResultStatus is the outcome classification of one processed order.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultSkipped ResultStatus = "skipped"
	ResultError   ResultStatus = "error"
)

// OrderResult is the immutable outcome of one input order. Index is the
// zero-based position of the order in the request. Details echoes the
// resolved fields (contract, action, quantity, broker status) for
// diagnostics.
type OrderResult struct {
	Index   int            `json:"order"`
	Status  ResultStatus   `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BatchResult aggregates the ordered outcomes of one webhook request.
// Results always has one entry per input order, in input order.
type BatchResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []OrderResult
}

// Succeeded reports whether at least one order in the batch was submitted.
func (b *BatchResult) Succeeded() bool { return b.Successful > 0 }

// StatusLabel is the batch-level status reported to callers: "success" when
// at least one order was submitted, "error" otherwise.
func (b *BatchResult) StatusLabel() string {
	if b.Succeeded() {
		return "success"
	}
	return "error"
}

// Append records one order outcome and updates the counters.
func (b *BatchResult) Append(r OrderResult) {
	b.Results = append(b.Results, r)
	b.Total++
	switch r.Status {
	case ResultSuccess:
		b.Successful++
	case ResultError:
		b.Failed++
	}
}
