package models

import (
	"strings"

	"github.com/medledger/backend/internal/types"
	"gorm.io/gorm"
)

// Priority is the collection priority of an invoice.
//
// swagger:enum Priority
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank returns the sort rank of the priority. High sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Invoice represents an amount billed to a patient.
//
// Invoices are created by the billing upstream and are read-only for the
// allocation engine except for due date, priority and note. They are never
// deleted; an invoice with a balance due of zero is effectively closed.
type Invoice struct {
	DefaultModel
	PatientRef  string `gorm:"index"` // Opaque reference to the billed party
	InvoiceDate types.Date
	DueDate     types.Date
	TotalAmount int64    // Minor currency units
	Priority    Priority `gorm:"default:medium"`
	Note        string

	// Derived fields, never stored
	Allocated  int64 `gorm:"-"`
	BalanceDue int64 `gorm:"-"`
}

// BeforeSave validates the invoice and sets defaults.
func (i *Invoice) BeforeSave(_ *gorm.DB) error {
	i.PatientRef = strings.TrimSpace(i.PatientRef)
	i.Note = strings.TrimSpace(i.Note)

	if i.PatientRef == "" {
		return ErrInvoicePatientRefRequired
	}

	if i.TotalAmount < 0 {
		return ErrInvoiceAmountNegative
	}

	if i.Priority == "" {
		i.Priority = PriorityMedium
	}

	if !i.Priority.Valid() {
		return ErrInvoicePriorityInvalid
	}

	if i.InvoiceDate.IsZero() {
		i.InvoiceDate = types.Today()
	}

	if i.DueDate.IsZero() {
		i.DueDate = i.InvoiceDate
	}

	return nil
}

// SumAllocated returns the net amount of all ledger entries for the invoice.
// Reversal entries count negative.
func (i Invoice) SumAllocated(db *gorm.DB) (int64, error) {
	var allocated int64
	err := db.Model(&Allocation{}).
		Where(&Allocation{InvoiceID: i.ID}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN -amount ELSE amount END), 0)", KindReversal).
		Scan(&allocated).Error
	if err != nil {
		return 0, err
	}

	return allocated, nil
}

// WithCalculations computes the derived balance fields from the ledger.
func (i Invoice) WithCalculations(db *gorm.DB) (Invoice, error) {
	allocated, err := i.SumAllocated(db)
	if err != nil {
		return Invoice{}, err
	}

	i.Allocated = allocated
	i.BalanceDue = i.TotalAmount - allocated

	return i, nil
}

// Allocations returns all ledger entries referencing this invoice.
func (i Invoice) Allocations(db *gorm.DB) ([]Allocation, error) {
	var allocations []Allocation
	err := db.Where(&Allocation{InvoiceID: i.ID}).Order("created_at ASC").Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	return allocations, nil
}
