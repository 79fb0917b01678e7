package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	ml_uuid "github.com/medledger/backend/internal/uuid"
)

type InvoiceEditable struct {
	PatientRef  string          `json:"patientRef" example:"PAT-2024-00451"`                    // Opaque reference to the billed party
	InvoiceDate types.Date      `json:"invoiceDate" example:"2024-05-02"`                       // Date the invoice was issued
	DueDate     types.Date      `json:"dueDate" example:"2024-06-01"`                           // Date payment is expected by
	TotalAmount int64           `json:"totalAmount" example:"600000" minimum:"0"`               // Billed amount in minor currency units
	Priority    models.Priority `json:"priority" example:"medium" default:"medium"`             // Collection priority
	Note        string          `json:"note" example:"Inpatient stay 2024-04-28 to 2024-05-02"` // A note
}

// model returns the database resource for the API representation of the editable fields
func (editable InvoiceEditable) model() models.Invoice {
	return models.Invoice{
		PatientRef:  editable.PatientRef,
		InvoiceDate: editable.InvoiceDate,
		DueDate:     editable.DueDate,
		TotalAmount: editable.TotalAmount,
		Priority:    editable.Priority,
		Note:        editable.Note,
	}
}

type InvoiceLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/invoices/d430d7c3-d14c-4712-9336-ee56965a6673"`                   // The invoice itself
	Allocations string `json:"allocations" example:"https://example.com/api/v1/allocations?invoice=d430d7c3-d14c-4712-9336-ee56965a6673"` // Ledger entries for this invoice
	Activities  string `json:"activities" example:"https://example.com/api/v1/collection-activities?invoice=d430d7c3"`                    // Collection activities for this invoice
}

// Invoice is the representation of an Invoice in API v1.
type Invoice struct {
	models.DefaultModel
	InvoiceEditable
	Allocated   int64         `json:"allocated" example:"200000"`    // Net amount of committed allocations, minor units
	BalanceDue  int64         `json:"balanceDue" example:"400000"`   // Amount still outstanding, minor units
	DaysOverdue int           `json:"daysOverdue" example:"12"`      // Whole days past the due date, 0 when not overdue
	AgingBucket ledger.Bucket `json:"agingBucket" example:"30_days"` // Aging classification as of today
	Links       InvoiceLinks  `json:"links"`
}

// newInvoice returns the API v1 representation of the resource.
// The model must have its calculations computed.
func newInvoice(c *gin.Context, model models.Invoice, bounds ledger.BucketBounds, asOf types.Date) Invoice {
	url := c.GetString(string(models.DBContextURL))

	return Invoice{
		DefaultModel: model.DefaultModel,
		InvoiceEditable: InvoiceEditable{
			PatientRef:  model.PatientRef,
			InvoiceDate: model.InvoiceDate,
			DueDate:     model.DueDate,
			TotalAmount: model.TotalAmount,
			Priority:    model.Priority,
			Note:        model.Note,
		},
		Allocated:   model.Allocated,
		BalanceDue:  model.BalanceDue,
		DaysOverdue: ledger.DaysOverdue(model.DueDate, asOf),
		AgingBucket: bounds.Classify(model.DueDate, asOf),
		Links: InvoiceLinks{
			Self:        fmt.Sprintf("%s/v1/invoices/%s", url, model.ID),
			Allocations: fmt.Sprintf("%s/v1/allocations?invoice=%s", url, model.ID),
			Activities:  fmt.Sprintf("%s/v1/collection-activities?invoice=%s", url, model.ID),
		},
	}
}

type InvoiceListResponse struct {
	Data       []Invoice   `json:"data"`                                                          // List of invoices
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type InvoiceCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []InvoiceResponse `json:"data"`                                                          // List of created invoices
}

func (r *InvoiceCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, InvoiceResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type InvoiceResponse struct {
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this invoice
	Data  *Invoice `json:"data"`                                                          // The invoice data, if the request was successful
}

type InvoiceQueryFilter struct {
	PatientRef  string          `form:"patient"`                         // Filter by patient reference
	Priority    models.Priority `form:"priority"`                        // Filter by collection priority
	Note        string          `form:"note" filterField:"false"`        // Note contains this string
	Outstanding bool            `form:"outstanding" filterField:"false"` // Only invoices with a positive balance due
	DueBefore   string          `form:"dueBefore" filterField:"false"`   // Invoices due before and at this date (YYYY-MM-DD)
	DueAfter    string          `form:"dueAfter" filterField:"false"`    // Invoices due at and after this date (YYYY-MM-DD)
	Payment     ml_uuid.UUID    `form:"payment" filterField:"false"`     // Invoices with ledger entries from this payment
	Offset      uint            `form:"offset" filterField:"false"`      // The offset of the first invoice returned. Defaults to 0.
	Limit       int             `form:"limit" filterField:"false"`       // Maximum number of invoices to return. Defaults to 50.
}

func (f InvoiceQueryFilter) model() models.Invoice {
	return models.Invoice{
		PatientRef: f.PatientRef,
		Priority:   f.Priority,
	}
}
