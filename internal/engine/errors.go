package engine

import (
	"errors"
	"fmt"
	"strings"

	"tradebridge/internal/domain"
)

// ErrEmptyBatch reports a request with no orders. Batch-fatal.
var ErrEmptyBatch = errors.New("engine: batch contains no orders")

// ConflictError reports an unsafe combination of simultaneous orders on one
// symbol. Batch-fatal: nothing is submitted.
type ConflictError struct {
	Symbol string
	Types  []domain.OrderType
}

func (e *ConflictError) Error() string {
	types := make([]string, len(e.Types))
	for i, t := range e.Types {
		types[i] = string(t)
	}
	return fmt.Sprintf("engine: conflicting order types for %s: %s", e.Symbol, strings.Join(types, ", "))
}

// MissingFieldError reports a required field absent for the chosen order
// type. Per-order: the rest of the batch keeps processing.
type MissingFieldError struct {
	OrderType domain.OrderType
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("engine: %s order requires %s", e.OrderType, e.Field)
}

// UnknownOrderTypeError reports an unrecognised order type string under the
// reject policy. Per-order.
type UnknownOrderTypeError struct {
	Raw string
}

func (e *UnknownOrderTypeError) Error() string {
	return fmt.Sprintf("engine: unrecognized order type %q", e.Raw)
}

// SubmissionError wraps a broker failure while placing one order. Per-order.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("engine: order submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
