// Package gateway defines the broker gateway contract consumed by the
// execution engine and provides implementations for the Alpaca trading API
// and an in-memory simulator. The gateway owns the connection lifecycle; the
// engine only acquires a session per request and releases it when done.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"tradebridge/internal/domain"
)

// ErrContractNotFound is returned by Qualify when the broker has no
// tradable contract for the descriptor.
var ErrContractNotFound = errors.New("contract not found")

// ConnectionError reports that a broker session could not be established.
// It is fatal to the whole request.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Provider, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Gateway produces broker sessions.
type Gateway interface {
	// Name returns the provider identifier (e.g. "alpaca", "simulator").
	Name() string

	// Connect establishes a broker session. Implementations bound the
	// attempt by their configured timeout and return *ConnectionError on
	// failure.
	Connect(ctx context.Context) (Session, error)
}

// Session is one request-scoped broker connection.
type Session interface {
	// Qualify verifies the contract against the broker and returns the
	// broker's view of it. ErrContractNotFound (wrapped) signals an empty
	// qualification result.
	Qualify(ctx context.Context, desc domain.ContractDescriptor) (domain.ContractDescriptor, error)

	// Positions returns all settled positions with signed quantities.
	Positions(ctx context.Context) ([]domain.Position, error)

	// OpenOrders returns currently open, unfilled orders.
	OpenOrders(ctx context.Context) ([]domain.OpenOrder, error)

	// Submit places the order and returns the broker acknowledgement.
	Submit(ctx context.Context, desc domain.ContractDescriptor, order domain.ReconciledOrder) (domain.BrokerOrder, error)

	// OrderStatus returns the broker's current status string for an order.
	OrderStatus(ctx context.Context, orderID string) (string, error)

	// Disconnect releases the session. Safe to call exactly once.
	Disconnect() error
}

// Acknowledged reports whether a broker status string indicates the order
// has been accepted into the broker's book (terminal states included).
func Acknowledged(status string) bool {
	switch status {
	case "", "pending_new":
		return false
	}
	return true
}
