package engine

import (
	"context"
	"fmt"

	"tradebridge/internal/domain"
	"tradebridge/internal/gateway"
)

// snapshotCache fetches the settled-position and open-order snapshots from
// the broker at most once per batch and indexes them by contract key, so
// multiple position-based orders on the same instrument share one round
// trip. Correctness does not depend on the caching: the snapshots are read
// at submission time either way.
type snapshotCache struct {
	sess gateway.Session

	loaded  bool
	settled map[string]int64
	pending map[string]int64
}

func newSnapshotCache(sess gateway.Session) *snapshotCache {
	return &snapshotCache{sess: sess}
}

// load fetches both snapshots lazily on first use.
func (c *snapshotCache) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	positions, err := c.sess.Positions(ctx)
	if err != nil {
		return fmt.Errorf("fetching position snapshot: %w", err)
	}
	open, err := c.sess.OpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("fetching open orders: %w", err)
	}

	c.settled = make(map[string]int64, len(positions))
	for _, p := range positions {
		c.settled[p.Contract.Key()] += p.Qty
	}

	c.pending = make(map[string]int64, len(open))
	for _, o := range open {
		c.pending[o.Contract.Key()] += o.SignedQty()
	}

	c.loaded = true
	return nil
}

// Settled returns the broker-confirmed signed quantity for a contract key.
func (c *snapshotCache) Settled(ctx context.Context, desc domain.ContractDescriptor) (int64, error) {
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	return c.settled[desc.Key()], nil
}

// Pending returns the net signed quantity implied by open orders whose
// contract key matches exactly.
func (c *snapshotCache) Pending(ctx context.Context, desc domain.ContractDescriptor) (int64, error) {
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	return c.pending[desc.Key()], nil
}
