package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	ml_uuid "github.com/medledger/backend/internal/uuid"
)

type PaymentEditable struct {
	PaymentDate     types.Date           `json:"paymentDate" example:"2024-06-14"`              // Date the payment was received
	Amount          int64                `json:"amount" example:"250000" minimum:"1"`           // Received amount in minor currency units
	Method          models.PaymentMethod `json:"method" example:"bank_transfer" default:"cash"` // How the payment was made
	ReferenceNumber string               `json:"referenceNumber" example:"TRN-883912"`          // External reference, e.g. a bank transaction ID
	PayerName       string               `json:"payerName" example:"J. Mwangi"`                 // Name of the paying party
	Note            string               `json:"note" example:"Covers May and June invoices"`   // A note
}

// model returns the database resource for the API representation of the editable fields
func (editable PaymentEditable) model() models.Payment {
	return models.Payment{
		PaymentDate:     editable.PaymentDate,
		Amount:          editable.Amount,
		Method:          editable.Method,
		ReferenceNumber: editable.ReferenceNumber,
		PayerName:       editable.PayerName,
		Note:            editable.Note,
	}
}

type PaymentLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/payments/af892e10-7e0a-4fb8-b1bc-4b6d88c1ed9e"`                    // The payment itself
	Proposals   string `json:"proposals" example:"https://example.com/api/v1/payments/af892e10-7e0a-4fb8-b1bc-4b6d88c1ed9e/proposals"`     // Propose an allocation for this payment
	Allocations string `json:"allocations" example:"https://example.com/api/v1/payments/af892e10-7e0a-4fb8-b1bc-4b6d88c1ed9e/allocations"` // Commit allocations for this payment
	Ledger      string `json:"ledger" example:"https://example.com/api/v1/allocations?payment=af892e10-7e0a-4fb8-b1bc-4b6d88c1ed9e"`       // Committed ledger entries of this payment
}

// Payment is the representation of a Payment in API v1.
type Payment struct {
	models.DefaultModel
	PaymentEditable
	Allocated   int64        `json:"allocated" example:"150000"`          // Net amount already applied to invoices, minor units
	Unallocated int64        `json:"unallocated" example:"100000"`        // Amount still available for allocation, minor units
	State       string       `json:"state" example:"partially_allocated"` // Derived allocation state
	Links       PaymentLinks `json:"links"`
}

// newPayment returns the API v1 representation of the resource.
// The model must have its calculations computed.
func newPayment(c *gin.Context, model models.Payment) Payment {
	url := c.GetString(string(models.DBContextURL))

	return Payment{
		DefaultModel: model.DefaultModel,
		PaymentEditable: PaymentEditable{
			PaymentDate:     model.PaymentDate,
			Amount:          model.Amount,
			Method:          model.Method,
			ReferenceNumber: model.ReferenceNumber,
			PayerName:       model.PayerName,
			Note:            model.Note,
		},
		Allocated:   model.Allocated,
		Unallocated: model.Unallocated,
		State:       model.State(),
		Links: PaymentLinks{
			Self:        fmt.Sprintf("%s/v1/payments/%s", url, model.ID),
			Proposals:   fmt.Sprintf("%s/v1/payments/%s/proposals", url, model.ID),
			Allocations: fmt.Sprintf("%s/v1/payments/%s/allocations", url, model.ID),
			Ledger:      fmt.Sprintf("%s/v1/allocations?payment=%s", url, model.ID),
		},
	}
}

type PaymentListResponse struct {
	Data       []Payment   `json:"data"`                                                          // List of payments
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type PaymentCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []PaymentResponse `json:"data"`                                                          // List of created payments
}

func (r *PaymentCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, PaymentResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type PaymentResponse struct {
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this payment
	Data  *Payment `json:"data"`                                                          // The payment data, if the request was successful
}

type PaymentQueryFilter struct {
	PayerName       string               `form:"payer" filterField:"false"`  // Payer name contains this string
	Method          models.PaymentMethod `form:"method"`                     // Filter by payment method
	ReferenceNumber string               `form:"reference"`                  // Filter by external reference
	State           string               `form:"state" filterField:"false"`  // Filter by derived allocation state
	Note            string               `form:"note" filterField:"false"`   // Note contains this string
	Offset          uint                 `form:"offset" filterField:"false"` // The offset of the first payment returned. Defaults to 0.
	Limit           int                  `form:"limit" filterField:"false"`  // Maximum number of payments to return. Defaults to 50.
}

func (f PaymentQueryFilter) model() models.Payment {
	return models.Payment{
		Method:          f.Method,
		ReferenceNumber: f.ReferenceNumber,
	}
}

// ProposalRequest is the body for requesting an allocation proposal.
//
// Candidate invoices are either all outstanding invoices of a patient or an
// explicit list of invoice IDs. Exactly one of the two must be set.
type ProposalRequest struct {
	Strategy     ledger.Strategy `json:"strategy" example:"fifo"`          // Ordering strategy for the candidate invoices
	Patient      string          `json:"patient" example:"PAT-2024-00451"` // Allocate against all outstanding invoices of this patient
	CandidateIDs []ml_uuid.UUID  `json:"candidateIds"`                     // Allocate against exactly these invoices
}

// Proposal is a suggested allocation. It is not persisted, committing it is a
// separate request.
type Proposal struct {
	Lines          []ledger.Line `json:"lines"`                      // Suggested allocation lines
	Leftover       int64         `json:"leftover" example:"0"`       // Amount that could not be placed, minor units
	LedgerRevision int64         `json:"ledgerRevision" example:"2"` // Ledger revision the proposal was computed against
}

type ProposalResponse struct {
	Error *string   `json:"error" example:"the requested allocation strategy does not exist"` // The error, if any occurred
	Data  *Proposal `json:"data"`                                                             // The proposal, if the request was successful
}

// CommitRequest is the body for committing allocation lines to the ledger.
type CommitRequest struct {
	Lines          []ledger.Line `json:"lines"`                            // Allocation lines to commit
	AllocatedBy    string        `json:"allocatedBy" example:"jdoe"`       // Who commits the allocation
	Note           string        `json:"note" example:"Receipt RCP-10233"` // A note, stored on every created ledger entry
	LedgerRevision *int64        `json:"ledgerRevision" example:"2"`       // If set, the commit fails when the payment's ledger changed since this revision
}

// Conflict describes why a commit was rejected with HTTP 409.
type Conflict struct {
	Invariant string        `json:"invariant" example:"invoice_balance_due"` // The violated invariant
	PaymentID ml_uuid.UUID  `json:"paymentId"`                               // The payment the commit was for
	InvoiceID *ml_uuid.UUID `json:"invoiceId"`                               // The invoice that would have been overpaid, if any
	Requested int64         `json:"requested" example:"50000"`               // Requested amount, minor units
	Available int64         `json:"available" example:"20000"`               // Available amount, minor units
}

type CommitResponse struct {
	Error    *string      `json:"error" example:"allocating would overpay the invoice"` // The error, if any occurred
	Conflict *Conflict    `json:"conflict"`                                             // Details when the commit was rejected as a conflict
	Data     []Allocation `json:"data"`                                                 // The created ledger entries, if the commit succeeded
}
