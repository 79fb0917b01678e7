package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterAllocationRoutes registers the routes for the allocation ledger
// with the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAllocationList)
		r.GET("", GetAllocations)
	}

	// Allocation with ID
	{
		r.OPTIONS("/:id", OptionsAllocationDetail)
		r.GET("/:id", GetAllocation)

		r.OPTIONS("/:id/reversals", OptionsAllocationReversals)
		r.POST("/:id/reversals", ReverseAllocation)
	}
}

// OptionsAllocationList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Allocations
//	@Success		204
//	@Router			/v1/allocations [options]
func OptionsAllocationList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsAllocationDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Allocations
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/allocations/{id} [options]
func OptionsAllocationDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Allocation{}, httputil.OptionsGet)
}

// OptionsAllocationReversals returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Allocations
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/allocations/{id}/reversals [options]
func OptionsAllocationReversals(c *gin.Context) {
	resourceOptionsDetail(c, models.Allocation{}, httputil.OptionsPost)
}

// GetAllocations returns a list of ledger entries filtered by the query
// parameters
//
//	@Summary		Get ledger entries
//	@Description	Returns a list of ledger entries
//	@Tags			Allocations
//	@Produce		json
//	@Success		200	{object}	AllocationListResponse
//	@Failure		400	{object}	AllocationListResponse
//	@Failure		500	{object}	AllocationListResponse
//	@Router			/v1/allocations [get]
//	@Param			payment	query	string	false	"Filter by payment"
//	@Param			invoice	query	string	false	"Filter by invoice"
//	@Param			kind	query	string	false	"Filter by entry kind"
//	@Param			offset	query	uint	false	"The offset of the first entry returned. Defaults to 0."
//	@Param			limit	query	int		false	"Maximum number of entries to return. Defaults to 50."
func GetAllocations(c *gin.Context) {
	var filter AllocationQueryFilter

	// The filters are optional, so we do not need to handle the error
	_ = c.Bind(&filter)

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	where := filter.model()

	var allocations []models.Allocation
	query := models.DB.
		Order("created_at ASC").
		Where(&where, queryFields...)

	if slices.Contains(queryFields, "Payment") {
		query = query.Where("payment_id = ?", filter.Payment.UUID)
	}

	if slices.Contains(queryFields, "Invoice") {
		query = query.Where("invoice_id = ?", filter.Invoice.UUID)
	}

	query = query.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(queryFields, "Limit") {
		limit = filter.Limit
	}
	query = query.Limit(limit)

	err := query.Find(&allocations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = query.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		data = append(data, newAllocation(c, allocation))
	}

	c.JSON(http.StatusOK, AllocationListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// GetAllocation returns a specific ledger entry
//
//	@Summary		Get ledger entry
//	@Description	Returns a specific ledger entry
//	@Tags			Allocations
//	@Produce		json
//	@Success		200	{object}	AllocationResponse
//	@Failure		400	{object}	AllocationResponse
//	@Failure		404	{object}	AllocationResponse
//	@Failure		500	{object}	AllocationResponse
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/allocations/{id} [get]
func GetAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	var allocation models.Allocation
	err = models.DB.First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	data := newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &data})
}

// ReverseAllocation appends a compensating entry for a ledger entry
//
//	@Summary		Reverse ledger entry
//	@Description	Appends a compensating entry that exactly undoes the referenced entry, e.g. for a bounced payment. The original entry is not modified. An entry can only be reversed once and a reversal cannot itself be reversed.
//	@Tags			Allocations
//	@Accept			json
//	@Produce		json
//	@Success		201			{object}	AllocationResponse
//	@Failure		400			{object}	AllocationResponse
//	@Failure		404			{object}	AllocationResponse
//	@Failure		409			{object}	AllocationResponse
//	@Failure		500			{object}	AllocationResponse
//	@Param			id			path		URIID			true	"ID formatted as string"
//	@Param			reversal	body		ReversalRequest	true	"Reversal metadata"
//	@Router			/v1/allocations/{id}/reversals [post]
func ReverseAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	var request ReversalRequest
	err = httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	reversal, err := ledger.Reverse(models.DB, uri.ID.UUID, request.Actor, request.Note)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	data := newAllocation(c, reversal)
	c.JSON(http.StatusCreated, AllocationResponse{Data: &data})
}
