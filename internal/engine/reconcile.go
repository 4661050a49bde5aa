package engine

import (
	"context"

	"tradebridge/internal/domain"
)

// reconciliation is the outcome of comparing a target position against the
// broker's current state for one contract.
type reconciliation struct {
	Settled   int64
	Pending   int64
	Effective int64
	Target    int64
	Delta     int64
}

// Side returns the order direction implied by the delta. Only meaningful
// when Delta != 0.
func (r reconciliation) Side() domain.OrderSide {
	if r.Delta > 0 {
		return domain.OrderSideBuy
	}
	return domain.OrderSideSell
}

// Quantity returns the unsigned order size implied by the delta.
func (r reconciliation) Quantity() int64 {
	if r.Delta < 0 {
		return -r.Delta
	}
	return r.Delta
}

// diagnostics returns the fields echoed on skipped and successful results so
// callers can see how the delta was derived.
func (r reconciliation) diagnostics() map[string]any {
	return map[string]any{
		"settled_position":   r.Settled,
		"pending_delta":      r.Pending,
		"effective_position": r.Effective,
		"target_position":    r.Target,
	}
}

// reconcile computes the signed quantity delta between the target position
// and the effective position (settled plus pending). A zero delta means the
// broker is already heading to the target and nothing should be submitted:
// re-running the same webhook against unchanged broker state always lands
// here.
func reconcile(ctx context.Context, cache *snapshotCache, desc domain.ContractDescriptor, target int64) (reconciliation, error) {
	settled, err := cache.Settled(ctx, desc)
	if err != nil {
		return reconciliation{}, err
	}
	pending, err := cache.Pending(ctx, desc)
	if err != nil {
		return reconciliation{}, err
	}

	effective := settled + pending
	return reconciliation{
		Settled:   settled,
		Pending:   pending,
		Effective: effective,
		Target:    target,
		Delta:     target - effective,
	}, nil
}
