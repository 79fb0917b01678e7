package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	// Invoice errors
	ErrInvoicePatientRefRequired = errors.New("the patient reference must be set")
	ErrInvoiceAmountNegative     = errors.New("the invoice total amount must not be negative")
	ErrInvoicePriorityInvalid    = errors.New("the invoice priority must be one of 'high', 'medium', 'low'")
	ErrInvoiceImmutableField     = errors.New("the total amount and patient reference of an invoice cannot be changed")

	// Payment errors
	ErrPaymentAmountNegative = errors.New("the payment amount must not be negative")
	ErrPaymentMethodInvalid  = errors.New("the payment method is not valid")
	ErrPaymentStateInvalid   = errors.New("the payment state must be one of 'unallocated', 'partially_allocated', 'fully_allocated'")

	// Allocation ledger errors
	ErrAllocationAmountNotPositive = errors.New("allocation amounts must be positive")
	ErrAllocationKindInvalid       = errors.New("the allocation kind must be 'allocation' or 'reversal'")
	ErrAllocationReversesRequired  = errors.New("a reversal must reference the allocation it reverses")
	ErrAllocationReversesForbidden = errors.New("only reversals can reference another allocation")
	ErrAllocationImmutable         = errors.New("ledger entries are append-only and cannot be changed or deleted")
	ErrAllocationAlreadyReversed   = errors.New("this allocation has already been reversed")

	// Collection activity errors
	ErrActivityTypeInvalid = errors.New("the activity type is not valid")

	// Match rule errors
	ErrMatchRuleEmpty = errors.New("the match pattern and patient reference must be set")
)
