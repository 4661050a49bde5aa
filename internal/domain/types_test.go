package domain

import "testing"

func TestNormalizeOrderType(t *testing.T) {
	cases := []struct {
		raw   string
		want  OrderType
		known bool
	}{
		{"MKT", OrderTypeMarket, true},
		{"MARKET", OrderTypeMarket, true},
		{"market", OrderTypeMarket, true},
		{" lmt ", OrderTypeLimit, true},
		{"LIMIT", OrderTypeLimit, true},
		{"STP", OrderTypeStop, true},
		{"STOP", OrderTypeStop, true},
		{"STP_LMT", OrderTypeStopLimit, true},
		{"STOP_LIMIT", OrderTypeStopLimit, true},
		{"", OrderTypeMarket, true},
		{"TRAIL", OrderTypeMarket, false},
		{"LIMIT_IF_TOUCHED", OrderTypeMarket, false},
	}

	for _, c := range cases {
		got, known := NormalizeOrderType(c.raw)
		if got != c.want || known != c.known {
			t.Errorf("NormalizeOrderType(%q) = (%q, %v), want (%q, %v)",
				c.raw, got, known, c.want, c.known)
		}
	}
}

func TestContractDescriptorKey(t *testing.T) {
	eq := ContractDescriptor{Kind: InstrumentEquity, Root: "AAPL"}
	if got := eq.Key(); got != "AAPL" {
		t.Errorf("equity Key() = %q, want %q", got, "AAPL")
	}
	if got := eq.LocalSymbol(); got != "AAPL" {
		t.Errorf("equity LocalSymbol() = %q, want %q", got, "AAPL")
	}

	fut := ContractDescriptor{Kind: InstrumentFuture, Root: "VX", Expiry: "202510"}
	if got := fut.Key(); got != "VX:202510" {
		t.Errorf("future Key() = %q, want %q", got, "VX:202510")
	}
	if got := fut.LocalSymbol(); got != "VX202510" {
		t.Errorf("future LocalSymbol() = %q, want %q", got, "VX202510")
	}

	// Same root at different expiries must not share a key.
	other := ContractDescriptor{Kind: InstrumentFuture, Root: "VX", Expiry: "202511"}
	if fut.Key() == other.Key() {
		t.Error("futures at different expiries share a key")
	}
}

func TestOpenOrderSignedQty(t *testing.T) {
	buy := OpenOrder{Side: OrderSideBuy, Qty: 2}
	if got := buy.SignedQty(); got != 2 {
		t.Errorf("buy SignedQty() = %d, want 2", got)
	}
	sell := OpenOrder{Side: OrderSideSell, Qty: 3}
	if got := sell.SignedQty(); got != -3 {
		t.Errorf("sell SignedQty() = %d, want -3", got)
	}
}

func TestBatchResultAppend(t *testing.T) {
	var b BatchResult
	b.Append(OrderResult{Index: 0, Status: ResultSuccess})
	b.Append(OrderResult{Index: 1, Status: ResultSkipped})
	b.Append(OrderResult{Index: 2, Status: ResultError, Message: "boom"})

	if b.Total != 3 {
		t.Errorf("Total = %d, want 3", b.Total)
	}
	if b.Successful != 1 {
		t.Errorf("Successful = %d, want 1", b.Successful)
	}
	if b.Failed != 1 {
		t.Errorf("Failed = %d, want 1", b.Failed)
	}
	if !b.Succeeded() {
		t.Error("Succeeded() = false, want true")
	}
	for i, r := range b.Results {
		if r.Index != i {
			t.Errorf("Results[%d].Index = %d, results out of input order", i, r.Index)
		}
	}
}
