// Package engine translates batches of order intents into broker orders:
// whole-batch conflict detection, per-order symbol resolution, position
// reconciliation against live broker state, order-type validation, and
// partial-failure-tolerant submission.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tradebridge/internal/domain"
	"tradebridge/internal/gateway"
	"tradebridge/internal/symbol"
	"tradebridge/internal/util"
)

// UnknownTypePolicy controls what happens to an unrecognised order type
// string.
type UnknownTypePolicy string

const (
	// UnknownTypeDefaultMarket submits the order as MARKET and annotates
	// the result with a warning. Usability over safety: upstream alert
	// templates routinely send free-form type strings.
	UnknownTypeDefaultMarket UnknownTypePolicy = "default_market"

	// UnknownTypeReject fails the order.
	UnknownTypeReject UnknownTypePolicy = "reject"
)

// Options tune per-order execution behaviour.
type Options struct {
	UnknownOrderType   UnknownTypePolicy
	StatusPollTimeout  time.Duration
	StatusPollInterval time.Duration
}

// Engine executes order batches against a broker gateway. It holds no state
// between batches; each ExecuteBatch call acquires and releases its own
// broker session.
type Engine struct {
	gw       gateway.Gateway
	resolver *symbol.Resolver
	opts     Options
	log      *slog.Logger
}

// New creates an Engine wired with the given gateway and symbol resolver.
func New(gw gateway.Gateway, resolver *symbol.Resolver, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if opts.UnknownOrderType == "" {
		opts.UnknownOrderType = UnknownTypeDefaultMarket
	}
	if opts.StatusPollTimeout <= 0 {
		opts.StatusPollTimeout = 2 * time.Second
	}
	if opts.StatusPollInterval <= 0 {
		opts.StatusPollInterval = 100 * time.Millisecond
	}
	return &Engine{gw: gw, resolver: resolver, opts: opts, log: log.With("component", "engine")}
}

// ExecuteBatch processes all intents strictly in input order and returns one
// result per intent. Failures before the loop (empty batch, conflicting
// orders, broker session unavailable) are fatal and returned as an error;
// failures inside the loop are isolated into that order's result. The broker
// session is released exactly once on every exit path.
func (e *Engine) ExecuteBatch(ctx context.Context, intents []domain.OrderIntent) (*domain.BatchResult, error) {
	if len(intents) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := CheckConflicts(intents); err != nil {
		return nil, err
	}

	sess, err := e.gw.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Disconnect(); err != nil {
			e.log.Warn("releasing broker session", "error", err)
		}
	}()

	cache := newSnapshotCache(sess)
	batch := &domain.BatchResult{}
	for i, intent := range intents {
		batch.Append(e.processOrder(ctx, sess, cache, i, intent))
	}

	e.log.Info("batch processed",
		"total", batch.Total,
		"successful", batch.Successful,
		"failed", batch.Failed,
	)
	return batch, nil
}

// processOrder runs one intent through resolve → reconcile → build → submit.
// Every failure is captured in the returned result; nothing escapes to abort
// the batch.
func (e *Engine) processOrder(ctx context.Context, sess gateway.Session, cache *snapshotCache, index int, intent domain.OrderIntent) domain.OrderResult {
	details := map[string]any{"symbol": intent.Symbol}

	// Resolve.
	desc, err := e.resolver.Resolve(intent.Symbol)
	if err != nil {
		return errorResult(index, details, err)
	}
	desc, err = sess.Qualify(ctx, desc)
	if err != nil {
		return errorResult(index, details, err)
	}
	details["contract"] = desc.Key()

	// Determine direction and size.
	var (
		side    domain.OrderSide
		qty     int64
		warning string
	)
	if intent.HasTarget() {
		rec, err := reconcile(ctx, cache, desc, *intent.TargetPosition)
		if err != nil {
			return errorResult(index, details, err)
		}
		for k, v := range rec.diagnostics() {
			details[k] = v
		}
		if rec.Delta == 0 {
			return domain.OrderResult{
				Index:   index,
				Status:  domain.ResultSkipped,
				Message: fmt.Sprintf("already at target position %d", rec.Target),
				Details: details,
			}
		}
		side, qty = rec.Side(), rec.Quantity()
	} else {
		switch strings.ToUpper(intent.Action) {
		case string(domain.OrderSideBuy):
			side = domain.OrderSideBuy
		case string(domain.OrderSideSell):
			side = domain.OrderSideSell
		case "":
			return errorResult(index, details, &MissingFieldError{OrderType: domain.OrderTypeMarket, Field: "action or position"})
		default:
			return errorResult(index, details, fmt.Errorf("engine: invalid action %q", intent.Action))
		}
		if intent.Qty <= 0 {
			return errorResult(index, details, &MissingFieldError{OrderType: domain.OrderTypeMarket, Field: "qty"})
		}
		qty = intent.Qty
	}

	// Normalize the order type, applying the unknown-type policy.
	orderType, known := domain.NormalizeOrderType(intent.OrderType)
	if !known {
		if e.opts.UnknownOrderType == UnknownTypeReject {
			return errorResult(index, details, &UnknownOrderTypeError{Raw: intent.OrderType})
		}
		warning = fmt.Sprintf("unrecognized order type %q, defaulted to MARKET", intent.OrderType)
		e.log.Warn("unknown order type defaulted to market",
			"order", index,
			"symbol", intent.Symbol,
			"order_type", intent.OrderType,
		)
	}

	// Build.
	order, err := BuildOrder(side, qty, orderType, intent.Price, intent.AuxPrice)
	if err != nil {
		return errorResult(index, details, err)
	}
	details["action"] = string(order.Side)
	details["quantity"] = order.Quantity
	details["order_type"] = string(order.Type)
	if order.LimitPrice != nil {
		details["price"] = *order.LimitPrice
	}
	if order.StopPrice != nil {
		details["aux_price"] = *order.StopPrice
	}

	// Submit.
	ack, err := sess.Submit(ctx, desc, order)
	if err != nil {
		return errorResult(index, details, &SubmissionError{Err: err})
	}
	details["broker_order_id"] = ack.ID
	details["broker_status"] = e.awaitStatus(ctx, sess, ack)

	msg := fmt.Sprintf("%s %d %s", order.Side, order.Quantity, desc.Key())
	if warning != "" {
		msg += " (" + warning + ")"
	}
	return domain.OrderResult{
		Index:   index,
		Status:  domain.ResultSuccess,
		Message: msg,
		Details: details,
	}
}

// awaitStatus polls the order's status until the broker acknowledges it or
// the poll window lapses, and returns the best-known status either way. A
// missed acknowledgement does not fail the order: submission already
// succeeded.
func (e *Engine) awaitStatus(ctx context.Context, sess gateway.Session, ack domain.BrokerOrder) string {
	status := ack.Status
	if gateway.Acknowledged(status) {
		return status
	}

	err := util.PollUntil(ctx, e.opts.StatusPollTimeout, e.opts.StatusPollInterval, func(ctx context.Context) (bool, error) {
		s, err := sess.OrderStatus(ctx, ack.ID)
		if err != nil {
			// Transient read-back failure; keep polling.
			return false, nil
		}
		status = s
		return gateway.Acknowledged(s), nil
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		e.log.Warn("order status poll interrupted", "broker_order_id", ack.ID, "error", err)
	}
	return status
}

func errorResult(index int, details map[string]any, err error) domain.OrderResult {
	return domain.OrderResult{
		Index:   index,
		Status:  domain.ResultError,
		Message: err.Error(),
		Details: details,
	}
}
