package gateway

import (
	"context"
	"errors"
	"testing"

	"tradebridge/internal/domain"
)

func TestSimulatorConnectDisconnect(t *testing.T) {
	g := NewSimulatorGateway()
	if got := g.Name(); got != "simulator" {
		t.Errorf("Name() = %q, want %q", got, "simulator")
	}

	sess, err := g.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}
	if err := sess.Disconnect(); err != nil {
		t.Fatalf("Disconnect() returned error: %v", err)
	}

	if g.Connects() != 1 || g.Disconnects() != 1 {
		t.Errorf("connects/disconnects = %d/%d, want 1/1", g.Connects(), g.Disconnects())
	}
}

func TestSimulatorConnectFailure(t *testing.T) {
	g := NewSimulatorGateway()
	g.FailConnect(errors.New("gateway unreachable"))

	_, err := g.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() succeeded, want ConnectionError")
	}
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Errorf("Connect() error = %T, want *ConnectionError", err)
	}
}

func TestSimulatorQualifyRejected(t *testing.T) {
	g := NewSimulatorGateway()
	g.RejectSymbol("ZZZZ")

	sess, _ := g.Connect(context.Background())
	defer sess.Disconnect()

	if _, err := sess.Qualify(context.Background(), domain.ContractDescriptor{Kind: domain.InstrumentEquity, Root: "AAPL"}); err != nil {
		t.Errorf("Qualify(AAPL) returned error: %v", err)
	}

	_, err := sess.Qualify(context.Background(), domain.ContractDescriptor{Kind: domain.InstrumentEquity, Root: "ZZZZ"})
	if !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Qualify(ZZZZ) error = %v, want ErrContractNotFound", err)
	}
}

func TestSimulatorSubmitAdjustsPositions(t *testing.T) {
	g := NewSimulatorGateway()
	vx := domain.ContractDescriptor{Kind: domain.InstrumentFuture, Root: "VX", Expiry: "202510"}
	g.SeedPosition(vx, 3)

	sess, _ := g.Connect(context.Background())
	defer sess.Disconnect()

	_, err := sess.Submit(context.Background(), vx, domain.ReconciledOrder{
		Side:     domain.OrderSideSell,
		Quantity: 4,
		Type:     domain.OrderTypeMarket,
	})
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	positions, err := sess.Positions(context.Background())
	if err != nil {
		t.Fatalf("Positions() returned error: %v", err)
	}
	found := false
	for _, p := range positions {
		if p.Contract.Key() == vx.Key() {
			found = true
			if p.Qty != -1 {
				t.Errorf("position after sell 4 from 3 = %d, want -1", p.Qty)
			}
			if p.Contract.Kind != domain.InstrumentFuture {
				t.Errorf("rebuilt contract kind = %q, want FUTURE", p.Contract.Kind)
			}
		}
	}
	if !found {
		t.Fatalf("no position found for %s", vx.Key())
	}

	if len(g.Submitted()) != 1 {
		t.Errorf("Submitted() len = %d, want 1", len(g.Submitted()))
	}
}

func TestAcknowledged(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"", false},
		{"pending_new", false},
		{"new", true},
		{"accepted", true},
		{"filled", true},
		{"rejected", true},
	}
	for _, c := range cases {
		if got := Acknowledged(c.status); got != c.want {
			t.Errorf("Acknowledged(%q) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestAlpacaGatewayName(t *testing.T) {
	g := NewAlpacaGateway("key", "secret", "https://paper-api.alpaca.markets", 0, nil)
	if got := g.Name(); got != "alpaca" {
		t.Errorf("AlpacaGateway.Name() = %q, want %q", got, "alpaca")
	}
}
