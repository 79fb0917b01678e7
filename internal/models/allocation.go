package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllocationKind discriminates regular ledger entries from reversals.
//
// swagger:enum AllocationKind
type AllocationKind string

const (
	KindAllocation AllocationKind = "allocation"
	KindReversal   AllocationKind = "reversal"
)

// Valid reports whether the kind is one of the known values.
func (k AllocationKind) Valid() bool {
	return k == KindAllocation || k == KindReversal
}

// Allocation is an immutable ledger entry assigning part of a payment to an
// invoice. The ledger is the single source of truth for all balances.
//
// A reversal is a separate entry referencing the entry it compensates; its
// amount counts negative in all balance calculations. Entries are never
// updated or deleted.
type Allocation struct {
	DefaultModel
	PaymentID   uuid.UUID      `gorm:"index"`
	Payment     Payment        `json:"-"`
	InvoiceID   uuid.UUID      `gorm:"index"`
	Invoice     Invoice        `json:"-"`
	Amount      int64          // Minor currency units, always positive
	Kind        AllocationKind `gorm:"default:allocation"`
	ReversesID  *uuid.UUID     `gorm:"uniqueIndex"` // Entry this reversal compensates
	AllocatedBy string
	Note        string
}

// Signed returns the effect of the entry on balances: positive for regular
// allocations, negative for reversals.
func (a Allocation) Signed() int64 {
	if a.Kind == KindReversal {
		return -a.Amount
	}
	return a.Amount
}

// BeforeSave validates the ledger entry.
func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	a.AllocatedBy = strings.TrimSpace(a.AllocatedBy)
	a.Note = strings.TrimSpace(a.Note)

	if a.Amount <= 0 {
		return ErrAllocationAmountNotPositive
	}

	if a.Kind == "" {
		a.Kind = KindAllocation
	}

	if !a.Kind.Valid() {
		return ErrAllocationKindInvalid
	}

	// Ensure that ReversesID is nil and not a pointer to a nil UUID
	// when it is not set
	if a.ReversesID != nil && *a.ReversesID == uuid.Nil {
		a.ReversesID = nil
	}

	if a.Kind == KindReversal && a.ReversesID == nil {
		return ErrAllocationReversesRequired
	}

	if a.Kind == KindAllocation && a.ReversesID != nil {
		return ErrAllocationReversesForbidden
	}

	return nil
}

// BeforeUpdate enforces the append-only ledger discipline.
func (a *Allocation) BeforeUpdate(_ *gorm.DB) error {
	return ErrAllocationImmutable
}

// BeforeDelete enforces the append-only ledger discipline. Unscoped hard
// deletes are permitted so that the cleanup endpoint can wipe test instances.
func (a *Allocation) BeforeDelete(tx *gorm.DB) error {
	if tx.Statement.Unscoped {
		return nil
	}

	return ErrAllocationImmutable
}
