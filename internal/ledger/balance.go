package ledger

import (
	"github.com/medledger/backend/internal/models"
)

// BalanceDue returns the amount still owed on the invoice given a ledger
// snapshot. Entries referencing other invoices are ignored, so the full
// ledger can be passed in. An invoice without entries is fully outstanding.
//
// The function is pure; the result is only as fresh as the snapshot.
func BalanceDue(invoice models.Invoice, entries []models.Allocation) int64 {
	balance := invoice.TotalAmount
	for _, entry := range entries {
		if entry.InvoiceID == invoice.ID {
			balance -= entry.Signed()
		}
	}

	return balance
}

// UnallocatedAmount returns the portion of the payment that is not assigned
// to any invoice given a ledger snapshot. Entries referencing other payments
// are ignored.
func UnallocatedAmount(payment models.Payment, entries []models.Allocation) int64 {
	unallocated := payment.Amount
	for _, entry := range entries {
		if entry.PaymentID == payment.ID {
			unallocated -= entry.Signed()
		}
	}

	return unallocated
}
