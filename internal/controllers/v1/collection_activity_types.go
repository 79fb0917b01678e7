package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	ml_uuid "github.com/medledger/backend/internal/uuid"
)

type CollectionActivityEditable struct {
	InvoiceID    ml_uuid.UUID        `json:"invoiceId"`                                      // The invoice the activity is about
	ActivityType models.ActivityType `json:"activityType" example:"phone_call"`              // How the patient was contacted
	Outcome      string              `json:"outcome" example:"promised_payment"`             // Result of the contact attempt
	Notes        string              `json:"notes" example:"Will pay the balance on Friday"` // Free-form notes
	FollowUpDate types.Date          `json:"followUpDate" example:"2024-06-21"`              // When to follow up, if at all
	Actor        string              `json:"actor" example:"jdoe"`                           // Who performed the activity
}

// model returns the database resource for the API representation of the editable fields
func (editable CollectionActivityEditable) model() models.CollectionActivity {
	return models.CollectionActivity{
		InvoiceID:    editable.InvoiceID.UUID,
		ActivityType: editable.ActivityType,
		Outcome:      editable.Outcome,
		Notes:        editable.Notes,
		FollowUpDate: editable.FollowUpDate,
		Actor:        editable.Actor,
	}
}

type CollectionActivityLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/collection-activities/5f161cde-51cb-4f6e-9f05-6f01861fb981"` // The activity itself
	Invoice string `json:"invoice" example:"https://example.com/api/v1/invoices/d430d7c3-d14c-4712-9336-ee56965a6673"`           // The invoice the activity is about
}

// CollectionActivity is the representation of a CollectionActivity in API v1.
type CollectionActivity struct {
	models.DefaultModel
	CollectionActivityEditable
	Links CollectionActivityLinks `json:"links"`
}

// newCollectionActivity returns the API v1 representation of the resource.
func newCollectionActivity(c *gin.Context, model models.CollectionActivity) CollectionActivity {
	url := c.GetString(string(models.DBContextURL))

	return CollectionActivity{
		DefaultModel: model.DefaultModel,
		CollectionActivityEditable: CollectionActivityEditable{
			InvoiceID:    ml_uuid.UUID{UUID: model.InvoiceID},
			ActivityType: model.ActivityType,
			Outcome:      model.Outcome,
			Notes:        model.Notes,
			FollowUpDate: model.FollowUpDate,
			Actor:        model.Actor,
		},
		Links: CollectionActivityLinks{
			Self:    fmt.Sprintf("%s/v1/collection-activities/%s", url, model.ID),
			Invoice: fmt.Sprintf("%s/v1/invoices/%s", url, model.InvoiceID),
		},
	}
}

type CollectionActivityListResponse struct {
	Data       []CollectionActivity `json:"data"`                                                          // List of collection activities
	Error      *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination          `json:"pagination"`                                                    // Pagination information
}

type CollectionActivityCreateResponse struct {
	Error *string                      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []CollectionActivityResponse `json:"data"`                                                          // List of created collection activities
}

func (r *CollectionActivityCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, CollectionActivityResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type CollectionActivityResponse struct {
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this activity
	Data  *CollectionActivity `json:"data"`                                                          // The activity data, if the request was successful
}

type CollectionActivityQueryFilter struct {
	Invoice      ml_uuid.UUID        `form:"invoice" filterField:"false"`      // Filter by invoice
	ActivityType models.ActivityType `form:"activityType"`                     // Filter by activity type
	Actor        string              `form:"actor"`                            // Filter by actor
	FollowUpFrom string              `form:"followUpFrom" filterField:"false"` // Activities with a follow-up at and after this date (YYYY-MM-DD)
	FollowUpTo   string              `form:"followUpTo" filterField:"false"`   // Activities with a follow-up before and at this date (YYYY-MM-DD)
	Offset       uint                `form:"offset" filterField:"false"`       // The offset of the first activity returned. Defaults to 0.
	Limit        int                 `form:"limit" filterField:"false"`        // Maximum number of activities to return. Defaults to 50.
}

func (f CollectionActivityQueryFilter) model() models.CollectionActivity {
	return models.CollectionActivity{
		ActivityType: f.ActivityType,
		Actor:        f.Actor,
	}
}
