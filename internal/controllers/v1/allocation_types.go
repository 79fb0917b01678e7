package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/models"
	ml_uuid "github.com/medledger/backend/internal/uuid"
)

type AllocationLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/allocations/2c5de087-3307-468e-bf62-69baba36444c"`                         // The ledger entry itself
	Payment  string `json:"payment" example:"https://example.com/api/v1/payments/af892e10-7e0a-4fb8-b1bc-4b6d88c1ed9e"`                         // The payment the entry belongs to
	Invoice  string `json:"invoice" example:"https://example.com/api/v1/invoices/d430d7c3-d14c-4712-9336-ee56965a6673"`                         // The invoice the entry belongs to
	Reversal string `json:"reversal,omitempty" example:"https://example.com/api/v1/allocations/2c5de087-3307-468e-bf62-69baba36444c/reversals"` // Reverse this entry. Only set for entries that are not themselves reversals
}

// Allocation is the representation of a ledger entry in API v1.
//
// Ledger entries are append-only. They are created by committing an
// allocation or reversing an existing entry, never edited.
type Allocation struct {
	models.DefaultModel
	PaymentID   ml_uuid.UUID          `json:"paymentId"`                        // The payment the amount is taken from
	InvoiceID   ml_uuid.UUID          `json:"invoiceId"`                        // The invoice the amount is assigned to
	Amount      int64                 `json:"amount" example:"50000"`           // Amount in minor currency units, always positive
	Kind        models.AllocationKind `json:"kind" example:"allocation"`        // Entry kind
	ReversesID  *ml_uuid.UUID         `json:"reversesId"`                       // The entry this one reverses. Only set on reversals
	AllocatedBy string                `json:"allocatedBy" example:"jdoe"`       // Who created the entry
	Note        string                `json:"note" example:"Receipt RCP-10233"` // A note
	Links       AllocationLinks       `json:"links"`
}

// newAllocation returns the API v1 representation of the resource.
func newAllocation(c *gin.Context, model models.Allocation) Allocation {
	url := c.GetString(string(models.DBContextURL))

	allocation := Allocation{
		DefaultModel: model.DefaultModel,
		PaymentID:    ml_uuid.UUID{UUID: model.PaymentID},
		InvoiceID:    ml_uuid.UUID{UUID: model.InvoiceID},
		Amount:       model.Amount,
		Kind:         model.Kind,
		AllocatedBy:  model.AllocatedBy,
		Note:         model.Note,
		Links: AllocationLinks{
			Self:    fmt.Sprintf("%s/v1/allocations/%s", url, model.ID),
			Payment: fmt.Sprintf("%s/v1/payments/%s", url, model.PaymentID),
			Invoice: fmt.Sprintf("%s/v1/invoices/%s", url, model.InvoiceID),
		},
	}

	if model.ReversesID != nil {
		id := ml_uuid.UUID{UUID: *model.ReversesID}
		allocation.ReversesID = &id
	}

	if model.Kind == models.KindAllocation {
		allocation.Links.Reversal = fmt.Sprintf("%s/v1/allocations/%s/reversals", url, model.ID)
	}

	return allocation
}

type AllocationListResponse struct {
	Data       []Allocation `json:"data"`                                                          // List of ledger entries
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type AllocationResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Allocation `json:"data"`                                                          // The ledger entry data, if the request was successful
}

// ReversalRequest is the body for reversing a ledger entry.
type ReversalRequest struct {
	Actor string `json:"actor" example:"jdoe"`                     // Who reverses the entry
	Note  string `json:"note" example:"Cheque TRN-883912 bounced"` // Why the entry is reversed
}

type AllocationQueryFilter struct {
	Payment ml_uuid.UUID          `form:"payment" filterField:"false"` // Filter by payment
	Invoice ml_uuid.UUID          `form:"invoice" filterField:"false"` // Filter by invoice
	Kind    models.AllocationKind `form:"kind"`                        // Filter by entry kind
	Offset  uint                  `form:"offset" filterField:"false"`  // The offset of the first entry returned. Defaults to 0.
	Limit   int                   `form:"limit" filterField:"false"`   // Maximum number of entries to return. Defaults to 50.
}

func (f AllocationQueryFilter) model() models.Allocation {
	return models.Allocation{
		Kind: f.Kind,
	}
}
