package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Caller contract violations of the strategy selector.
var (
	ErrAvailableNegative       = errors.New("the available amount must not be negative")
	ErrCandidateNotOutstanding = errors.New("all candidate invoices must have a positive balance due")
	ErrStrategyInvalid         = errors.New("the allocation strategy is not valid")
)

// Commit submission errors.
var (
	ErrNoLines           = errors.New("the submission must contain at least one allocation line")
	ErrReverseReversal   = errors.New("a reversal cannot be reversed; allocate the payment again instead")
	ErrAmountNotPositive = errors.New("allocation amounts must be positive")
)

// ValidationError is a caller contract violation in a commit submission.
// Nothing has been read from or written to the ledger when it is returned.
type ValidationError struct {
	InvoiceID uuid.UUID // Invoice of the offending line, if any
	Err       error
}

func (e ValidationError) Error() string {
	if e.InvoiceID == uuid.Nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("invoice %s: %s", e.InvoiceID, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ErrDuplicateInvoice is returned when a submission names the same invoice
// more than once.
var ErrDuplicateInvoice = errors.New("the submission contains the same invoice more than once")

// Invariants that a commit can violate.
const (
	InvariantPaymentUnallocated = "payment_unallocated" // Sum of the submission exceeds the payment's unallocated amount
	InvariantInvoiceBalanceDue  = "invoice_balance_due" // A line exceeds the invoice's balance due
)

// ConflictError is an over-allocation attempt against current ledger state.
// It carries the current true balances so the caller can re-propose without
// guessing. Nothing has been persisted when it is returned.
type ConflictError struct {
	Invariant string // Which invariant the submission violates
	PaymentID uuid.UUID
	InvoiceID uuid.UUID // Set when the invariant is invoice-scoped
	Requested int64     // Amount the submission asked for
	Available int64     // Amount the current ledger state allows
}

func (e ConflictError) Error() string {
	if e.Invariant == InvariantPaymentUnallocated {
		return fmt.Sprintf("the submitted allocations sum to %d, but payment %s only has %d unallocated", e.Requested, e.PaymentID, e.Available)
	}

	return fmt.Sprintf("the allocation of %d exceeds the balance due of %d on invoice %s", e.Requested, e.Available, e.InvoiceID)
}

// RevisionError is returned when the ledger for a payment changed between
// the caller's read and the commit. The correct response is a retry against
// fresh balances, not a different amount.
type RevisionError struct {
	PaymentID uuid.UUID
	Expected  int64
	Current   int64
}

func (e RevisionError) Error() string {
	return fmt.Sprintf("the ledger for payment %s changed since the proposal was computed (revision %d, now %d); re-read balances and retry", e.PaymentID, e.Expected, e.Current)
}
