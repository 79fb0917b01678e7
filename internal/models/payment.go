package models

import (
	"strings"

	"github.com/medledger/backend/internal/types"
	"gorm.io/gorm"
)

// PaymentMethod is the way a payment was received by cashiering.
//
// swagger:enum PaymentMethod
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodCheque       PaymentMethod = "cheque"
)

// Valid reports whether the payment method is one of the known values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodMobileMoney, MethodCheque:
		return true
	}
	return false
}

// Allocation states of a payment. The state is derived from the ledger,
// never stored.
const (
	PaymentStateUnallocated        = "unallocated"
	PaymentStatePartiallyAllocated = "partially_allocated"
	PaymentStateFullyAllocated     = "fully_allocated"
)

// Payment represents money received from or on behalf of a patient.
//
// Payments are created when money is received and are immutable afterwards;
// only the derived allocation fields change as ledger entries are appended.
type Payment struct {
	DefaultModel
	PaymentDate     types.Date
	Amount          int64         // Minor currency units
	Method          PaymentMethod `gorm:"default:cash"`
	ReferenceNumber string        `gorm:"index"`
	PayerName       string
	Note            string

	// Derived fields, never stored
	Allocated   int64 `gorm:"-"`
	Unallocated int64 `gorm:"-"`
}

// BeforeSave validates the payment and sets defaults.
func (p *Payment) BeforeSave(_ *gorm.DB) error {
	p.ReferenceNumber = strings.TrimSpace(p.ReferenceNumber)
	p.PayerName = strings.TrimSpace(p.PayerName)
	p.Note = strings.TrimSpace(p.Note)

	if p.Amount < 0 {
		return ErrPaymentAmountNegative
	}

	if p.Method == "" {
		p.Method = MethodCash
	}

	if !p.Method.Valid() {
		return ErrPaymentMethodInvalid
	}

	if p.PaymentDate.IsZero() {
		p.PaymentDate = types.Today()
	}

	return nil
}

// SumAllocated returns the net amount of all ledger entries for the payment.
// Reversal entries count negative.
func (p Payment) SumAllocated(db *gorm.DB) (int64, error) {
	var allocated int64
	err := db.Model(&Allocation{}).
		Where(&Allocation{PaymentID: p.ID}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN -amount ELSE amount END), 0)", KindReversal).
		Scan(&allocated).Error
	if err != nil {
		return 0, err
	}

	return allocated, nil
}

// WithCalculations computes the derived balance fields from the ledger.
func (p Payment) WithCalculations(db *gorm.DB) (Payment, error) {
	allocated, err := p.SumAllocated(db)
	if err != nil {
		return Payment{}, err
	}

	p.Allocated = allocated
	p.Unallocated = p.Amount - allocated

	return p, nil
}

// State returns the allocation state for the computed balances.
// WithCalculations must have been called before.
func (p Payment) State() string {
	switch {
	case p.Allocated == 0 && p.Amount != 0:
		return PaymentStateUnallocated
	case p.Unallocated == 0:
		return PaymentStateFullyAllocated
	default:
		return PaymentStatePartiallyAllocated
	}
}

// Allocations returns all ledger entries referencing this payment.
func (p Payment) Allocations(db *gorm.DB) ([]Allocation, error) {
	var allocations []Allocation
	err := db.Where(&Allocation{PaymentID: p.ID}).Order("created_at ASC").Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	return allocations, nil
}
