package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradebridge/internal/domain"
)

// Compile-time interface checks.
var _ Gateway = (*SimulatorGateway)(nil)
var _ Session = (*simulatorSession)(nil)

// SimulatorGateway implements the Gateway interface in memory for paper
// trading and tests. Every symbol qualifies unless explicitly rejected, and
// submitted orders fill immediately against the simulated position book.
type SimulatorGateway struct {
	mu sync.Mutex

	positions  map[string]int64
	openOrders []domain.OpenOrder
	rejected   map[string]struct{}

	connectErr error
	submitErr  error

	connects    int
	disconnects int
	submitted   []SubmittedOrder
}

// SubmittedOrder records one simulated submission for inspection.
type SubmittedOrder struct {
	Contract domain.ContractDescriptor
	Order    domain.ReconciledOrder
	BrokerID string
}

// NewSimulatorGateway creates an empty simulator.
func NewSimulatorGateway() *SimulatorGateway {
	return &SimulatorGateway{
		positions: make(map[string]int64),
		rejected:  make(map[string]struct{}),
	}
}

// Name returns "simulator".
func (g *SimulatorGateway) Name() string { return "simulator" }

// Connect returns a session over the shared simulated state, or the
// configured connection failure.
func (g *SimulatorGateway) Connect(_ context.Context) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.connectErr != nil {
		return nil, &ConnectionError{Provider: "simulator", Err: g.connectErr}
	}
	g.connects++
	return &simulatorSession{gw: g}, nil
}

// ---------------------------------------------------------------------------
// Seeding and inspection (paper-mode setup and tests)
// ---------------------------------------------------------------------------

// SeedPosition sets the settled position for a contract.
func (g *SimulatorGateway) SeedPosition(desc domain.ContractDescriptor, qty int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.positions[desc.Key()] = qty
}

// SeedOpenOrder adds an open, unfilled order to the simulated book.
func (g *SimulatorGateway) SeedOpenOrder(o domain.OpenOrder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.openOrders = append(g.openOrders, o)
}

// RejectSymbol makes qualification fail for the given root symbol.
func (g *SimulatorGateway) RejectSymbol(root string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejected[strings.ToUpper(root)] = struct{}{}
}

// FailConnect makes subsequent Connect calls fail with err.
func (g *SimulatorGateway) FailConnect(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connectErr = err
}

// FailSubmit makes subsequent Submit calls fail with err.
func (g *SimulatorGateway) FailSubmit(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitErr = err
}

// Submitted returns a copy of all simulated submissions.
func (g *SimulatorGateway) Submitted() []SubmittedOrder {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SubmittedOrder, len(g.submitted))
	copy(out, g.submitted)
	return out
}

// Connects returns how many sessions have been acquired.
func (g *SimulatorGateway) Connects() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connects
}

// Disconnects returns how many sessions have been released.
func (g *SimulatorGateway) Disconnects() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disconnects
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

type simulatorSession struct {
	gw *SimulatorGateway
}

func (s *simulatorSession) Qualify(_ context.Context, desc domain.ContractDescriptor) (domain.ContractDescriptor, error) {
	s.gw.mu.Lock()
	defer s.gw.mu.Unlock()

	if _, bad := s.gw.rejected[desc.Root]; bad {
		return domain.ContractDescriptor{}, fmt.Errorf("qualifying %s: %w", desc.Key(), ErrContractNotFound)
	}
	return desc, nil
}

func (s *simulatorSession) Positions(_ context.Context) ([]domain.Position, error) {
	s.gw.mu.Lock()
	defer s.gw.mu.Unlock()

	out := make([]domain.Position, 0, len(s.gw.positions))
	for key, qty := range s.gw.positions {
		out = append(out, domain.Position{Contract: descriptorFromKey(key), Qty: qty})
	}
	return out, nil
}

func (s *simulatorSession) OpenOrders(_ context.Context) ([]domain.OpenOrder, error) {
	s.gw.mu.Lock()
	defer s.gw.mu.Unlock()

	out := make([]domain.OpenOrder, len(s.gw.openOrders))
	copy(out, s.gw.openOrders)
	return out, nil
}

// Submit fills the order immediately against the simulated position book.
func (s *simulatorSession) Submit(_ context.Context, desc domain.ContractDescriptor, order domain.ReconciledOrder) (domain.BrokerOrder, error) {
	s.gw.mu.Lock()
	defer s.gw.mu.Unlock()

	if s.gw.submitErr != nil {
		return domain.BrokerOrder{}, s.gw.submitErr
	}

	signed := order.Quantity
	if order.Side == domain.OrderSideSell {
		signed = -signed
	}
	s.gw.positions[desc.Key()] += signed

	id := uuid.NewString()
	s.gw.submitted = append(s.gw.submitted, SubmittedOrder{
		Contract: desc,
		Order:    order,
		BrokerID: id,
	})

	return domain.BrokerOrder{
		ID:            id,
		ClientOrderID: "sim-" + id,
		Status:        "filled",
		SubmittedAt:   time.Now().UTC(),
	}, nil
}

func (s *simulatorSession) OrderStatus(_ context.Context, _ string) (string, error) {
	return "filled", nil
}

func (s *simulatorSession) Disconnect() error {
	s.gw.mu.Lock()
	defer s.gw.mu.Unlock()
	s.gw.disconnects++
	return nil
}

// descriptorFromKey rebuilds a descriptor from a position-book key. Keys are
// ROOT for equities and ROOT:EXPIRY for futures, matching
// ContractDescriptor.Key.
func descriptorFromKey(key string) domain.ContractDescriptor {
	if root, expiry, ok := strings.Cut(key, ":"); ok {
		return domain.ContractDescriptor{Kind: domain.InstrumentFuture, Root: root, Expiry: expiry}
	}
	return domain.ContractDescriptor{Kind: domain.InstrumentEquity, Root: key}
}
