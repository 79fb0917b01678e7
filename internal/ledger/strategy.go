package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
)

// Strategy is the ordering rule used to decide which outstanding invoices
// an automatic allocation favors first.
//
// swagger:enum Strategy
type Strategy string

const (
	StrategyFIFO            Strategy = "fifo"             // Oldest invoice date first
	StrategyDueDate         Strategy = "due_date"         // Earliest due date first
	StrategySmallestBalance Strategy = "smallest_balance" // Smallest balance due first
	StrategyPriority        Strategy = "priority"         // High priority first, then earliest due date
)

// Valid reports whether the strategy is one of the known values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyFIFO, StrategyDueDate, StrategySmallestBalance, StrategyPriority:
		return true
	}
	return false
}

// Candidate is an outstanding invoice offered to the strategy selector.
type Candidate struct {
	InvoiceID   uuid.UUID
	InvoiceDate types.Date
	DueDate     types.Date
	Priority    models.Priority
	BalanceDue  int64
}

// NewCandidate builds a Candidate from an invoice with computed balances.
func NewCandidate(invoice models.Invoice) Candidate {
	return Candidate{
		InvoiceID:   invoice.ID,
		InvoiceDate: invoice.InvoiceDate,
		DueDate:     invoice.DueDate,
		Priority:    invoice.Priority,
		BalanceDue:  invoice.BalanceDue,
	}
}

// Line is one (invoice, amount) pair of a proposal or commit submission.
type Line struct {
	InvoiceID uuid.UUID `json:"invoiceId" example:"73a6d2f0-4bf5-4f76-8b7b-2fc0fbd5dd66"` // Invoice the amount is assigned to
	Amount    int64     `json:"amount" example:"600000" minimum:"1"`                      // Amount in minor currency units
}

// Proposal is the non-committed result of an automatic allocation run.
// It does not touch the ledger and carries no lock; it can be discarded
// freely or edited before being committed.
type Proposal struct {
	Lines    []Line
	Leftover int64 // Amount that remains unallocated after exhausting all candidates
}

// Propose distributes at most available over the candidates using the
// greedy walk shared by all strategies: sort by the strategy's key, then
// assign min(balance due, remaining) to each invoice in turn.
//
// Ties are broken by invoice ID so that identical inputs always produce
// identical proposals.
//
// A negative available amount or a candidate without a positive balance due
// is a caller contract violation and fails fast to surface upstream bugs.
func Propose(available int64, candidates []Candidate, strategy Strategy) (Proposal, error) {
	if available < 0 {
		return Proposal{}, fmt.Errorf("%w: %d", ErrAvailableNegative, available)
	}

	if !strategy.Valid() {
		return Proposal{}, fmt.Errorf("%w: %q", ErrStrategyInvalid, strategy)
	}

	for _, candidate := range candidates {
		if candidate.BalanceDue <= 0 {
			return Proposal{}, fmt.Errorf("%w: invoice %s has balance due %d", ErrCandidateNotOutstanding, candidate.InvoiceID, candidate.BalanceDue)
		}
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strategyLess(strategy, sorted[i], sorted[j])
	})

	proposal := Proposal{Lines: make([]Line, 0, len(sorted))}
	for _, candidate := range sorted {
		if available == 0 {
			break
		}

		amount := candidate.BalanceDue
		if amount > available {
			amount = available
		}

		proposal.Lines = append(proposal.Lines, Line{
			InvoiceID: candidate.InvoiceID,
			Amount:    amount,
		})
		available -= amount
	}

	proposal.Leftover = available
	return proposal, nil
}

// strategyLess is the ordering key for the strategy. All orderings fall back
// to the invoice ID for determinism.
func strategyLess(strategy Strategy, a, b Candidate) bool {
	switch strategy {
	case StrategyFIFO:
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			return a.InvoiceDate.Before(b.InvoiceDate)
		}

	case StrategyDueDate:
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}

	case StrategySmallestBalance:
		if a.BalanceDue != b.BalanceDue {
			return a.BalanceDue < b.BalanceDue
		}

	case StrategyPriority:
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
	}

	return a.InvoiceID.String() < b.InvoiceID.String()
}
