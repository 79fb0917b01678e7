package ledger

import (
	"github.com/google/uuid"
	"github.com/medledger/backend/internal/models"
	"gorm.io/gorm"
)

// CommitOptions carries the metadata of a commit submission.
type CommitOptions struct {
	AllocatedBy string // Actor identity, recorded on every created entry
	Note        string

	// Revision is the ledger revision the submission was computed against,
	// as returned by Revision or the proposal endpoint. When set, the commit
	// is rejected with a RevisionError if the payment's ledger has changed
	// in the meantime.
	Revision *int64
}

// Revision returns the ledger revision stamp for a payment: the number of
// ledger entries referencing it. Any successful commit or reversal changes
// the revision.
func Revision(db *gorm.DB, paymentID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&models.Allocation{}).
		Where(&models.Allocation{PaymentID: paymentID}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Commit validates a submission against freshly re-read ledger state and
// appends one ledger entry per line, all-or-nothing.
//
// The submission is checked in this order:
//  1. well-formedness (positive amounts, no duplicate invoice) before any
//     ledger access,
//  2. the revision stamp, when the caller provided one,
//  3. the payment-level invariant (sum does not exceed the unallocated
//     amount, recomputed now),
//  4. the per-invoice invariant (no line exceeds the invoice's balance due,
//     recomputed now).
//
// On any failure nothing is persisted and the returned error names the
// violated invariant and the current true balances.
func Commit(db *gorm.DB, paymentID uuid.UUID, lines []Line, opts CommitOptions) ([]models.Allocation, error) {
	if len(lines) == 0 {
		return nil, ValidationError{Err: ErrNoLines}
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	var sum int64
	for _, line := range lines {
		if line.Amount <= 0 {
			return nil, ValidationError{InvoiceID: line.InvoiceID, Err: ErrAmountNotPositive}
		}

		if _, ok := seen[line.InvoiceID]; ok {
			return nil, ValidationError{InvoiceID: line.InvoiceID, Err: ErrDuplicateInvoice}
		}

		seen[line.InvoiceID] = struct{}{}
		sum += line.Amount
	}

	created := make([]models.Allocation, 0, len(lines))

	err := db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.First(&payment, "id = ?", paymentID).Error
		if err != nil {
			return err
		}

		if opts.Revision != nil {
			current, err := Revision(tx, paymentID)
			if err != nil {
				return err
			}

			if current != *opts.Revision {
				return RevisionError{
					PaymentID: paymentID,
					Expected:  *opts.Revision,
					Current:   current,
				}
			}
		}

		payment, err = payment.WithCalculations(tx)
		if err != nil {
			return err
		}

		if sum > payment.Unallocated {
			return ConflictError{
				Invariant: InvariantPaymentUnallocated,
				PaymentID: paymentID,
				Requested: sum,
				Available: payment.Unallocated,
			}
		}

		for _, line := range lines {
			var invoice models.Invoice
			err := tx.First(&invoice, "id = ?", line.InvoiceID).Error
			if err != nil {
				return err
			}

			invoice, err = invoice.WithCalculations(tx)
			if err != nil {
				return err
			}

			if line.Amount > invoice.BalanceDue {
				return ConflictError{
					Invariant: InvariantInvoiceBalanceDue,
					PaymentID: paymentID,
					InvoiceID: line.InvoiceID,
					Requested: line.Amount,
					Available: invoice.BalanceDue,
				}
			}
		}

		for _, line := range lines {
			allocation := models.Allocation{
				PaymentID:   paymentID,
				InvoiceID:   line.InvoiceID,
				Amount:      line.Amount,
				Kind:        models.KindAllocation,
				AllocatedBy: opts.AllocatedBy,
				Note:        opts.Note,
			}

			err := tx.Create(&allocation).Error
			if err != nil {
				return err
			}

			created = append(created, allocation)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Reverse appends a compensating entry for an allocation, e.g. for a
// bounced payment. The original entry is not touched; the reversal carries
// the full original amount, so the net effect on both the payment and the
// invoice is exactly undone and no balance invariant can be violated.
//
// An allocation can only be reversed once, and a reversal cannot itself be
// reversed.
func Reverse(db *gorm.DB, allocationID uuid.UUID, actor, note string) (models.Allocation, error) {
	var reversal models.Allocation

	err := db.Transaction(func(tx *gorm.DB) error {
		var original models.Allocation
		err := tx.First(&original, "id = ?", allocationID).Error
		if err != nil {
			return err
		}

		if original.Kind == models.KindReversal {
			return ValidationError{InvoiceID: original.InvoiceID, Err: ErrReverseReversal}
		}

		reversal = models.Allocation{
			PaymentID:   original.PaymentID,
			InvoiceID:   original.InvoiceID,
			Amount:      original.Amount,
			Kind:        models.KindReversal,
			ReversesID:  &original.ID,
			AllocatedBy: actor,
			Note:        note,
		}

		// The unique index on reverses_id rejects a second reversal
		return tx.Create(&reversal).Error
	})
	if err != nil {
		return models.Allocation{}, err
	}

	return reversal, nil
}
