package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RegisterInvoiceRoutes registers the routes for invoices with
// the RouterGroup that is passed.
func RegisterInvoiceRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsInvoiceList)
		r.GET("", GetInvoices)
		r.POST("", CreateInvoices)
	}

	// Invoice with ID
	{
		r.OPTIONS("/:id", OptionsInvoiceDetail)
		r.GET("/:id", GetInvoice)
		r.PATCH("/:id", UpdateInvoice)
	}
}

// OptionsInvoiceList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Invoices
//	@Success		204
//	@Router			/v1/invoices [options]
func OptionsInvoiceList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsInvoiceDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Invoices
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/invoices/{id} [options]
func OptionsInvoiceDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Invoice{}, httputil.OptionsGetPatch)
}

// CreateInvoices creates new invoices
//
//	@Summary		Create invoices
//	@Description	Creates new invoices
//	@Tags			Invoices
//	@Produce		json
//	@Success		201		{object}	InvoiceCreateResponse
//	@Failure		400		{object}	InvoiceCreateResponse
//	@Failure		500		{object}	InvoiceCreateResponse
//	@Param			invoices	body		[]InvoiceEditable	true	"Invoices"
//	@Router			/v1/invoices [post]
func CreateInvoices(c *gin.Context) {
	var editables []InvoiceEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceCreateResponse{
			Error: &s,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	responseStatus := http.StatusCreated
	r := InvoiceCreateResponse{}

	bounds := agingBounds()
	today := types.Today()

	for _, editable := range editables {
		invoice := editable.model()

		err = models.DB.Create(&invoice).Error
		if err != nil {
			responseStatus = r.appendError(err, responseStatus)
			continue
		}

		// A new invoice has no ledger entries yet
		invoice.BalanceDue = invoice.TotalAmount
		data := newInvoice(c, invoice, bounds, today)
		r.Data = append(r.Data, InvoiceResponse{Data: &data})
	}

	c.JSON(responseStatus, r)
}

// GetInvoices returns a list of invoices filtered by the query parameters
//
//	@Summary		Get invoices
//	@Description	Returns a list of invoices
//	@Tags			Invoices
//	@Produce		json
//	@Success		200	{object}	InvoiceListResponse
//	@Failure		400	{object}	InvoiceListResponse
//	@Failure		500	{object}	InvoiceListResponse
//	@Router			/v1/invoices [get]
//	@Param			patient		query	string	false	"Filter by patient reference"
//	@Param			priority	query	string	false	"Filter by collection priority"
//	@Param			note		query	string	false	"Filter by note"
//	@Param			outstanding	query	bool	false	"Only invoices with a positive balance due"
//	@Param			dueBefore	query	string	false	"Invoices due before and at this date (YYYY-MM-DD)"
//	@Param			dueAfter	query	string	false	"Invoices due at and after this date (YYYY-MM-DD)"
//	@Param			payment		query	string	false	"Invoices with ledger entries from this payment"
//	@Param			offset		query	uint	false	"The offset of the first invoice returned. Defaults to 0."
//	@Param			limit		query	int		false	"Maximum number of invoices to return. Defaults to 50."
func GetInvoices(c *gin.Context) {
	var filter InvoiceQueryFilter

	// The filters are optional, so we do not need to handle the error
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	where := filter.model()

	var invoices []models.Invoice
	query := models.DB.
		Order("due_date ASC, created_at ASC").
		Where(&where, queryFields...)

	if filter.Note != "" {
		query = query.Where("note LIKE ?", "%"+filter.Note+"%")
	}

	if filter.DueBefore != "" {
		date, err := types.ParseDate(filter.DueBefore)
		if err != nil {
			s := errAsOfInvalid.Error()
			c.JSON(http.StatusBadRequest, InvoiceListResponse{Error: &s})
			return
		}
		query = query.Where("due_date <= ?", date)
	}

	if filter.DueAfter != "" {
		date, err := types.ParseDate(filter.DueAfter)
		if err != nil {
			s := errAsOfInvalid.Error()
			c.JSON(http.StatusBadRequest, InvoiceListResponse{Error: &s})
			return
		}
		query = query.Where("due_date >= ?", date)
	}

	if filter.Outstanding {
		query = query.Where("invoices.total_amount > (?)", netAllocatedSubquery("invoices.id"))
	}

	if slices.Contains(queryFields, "Payment") {
		query = query.Where(
			"invoices.id IN (SELECT allocations.invoice_id FROM allocations WHERE allocations.payment_id = ? AND allocations.deleted_at IS NULL)",
			filter.Payment.UUID,
		)
	}

	// Set the offset. Does not need checking since the default is 0
	query = query.Offset(int(filter.Offset))

	// Default to 50 invoices and set the limit
	limit := 50
	if slices.Contains(queryFields, "Limit") {
		limit = filter.Limit
	}
	query = query.Limit(limit)

	err := query.Find(&invoices).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = query.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceListResponse{
			Error: &s,
		})
		return
	}

	bounds := agingBounds()
	today := types.Today()

	data := make([]Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		invoice, err = invoice.WithCalculations(models.DB)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), InvoiceListResponse{
				Error: &s,
			})
			return
		}

		data = append(data, newInvoice(c, invoice, bounds, today))
	}

	c.JSON(http.StatusOK, InvoiceListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// GetInvoice returns a specific invoice
//
//	@Summary		Get invoice
//	@Description	Returns a specific invoice
//	@Tags			Invoices
//	@Produce		json
//	@Success		200	{object}	InvoiceResponse
//	@Failure		400	{object}	InvoiceResponse
//	@Failure		404	{object}	InvoiceResponse
//	@Failure		500	{object}	InvoiceResponse
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/invoices/{id} [get]
func GetInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	invoice, err = invoice.WithCalculations(models.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	data := newInvoice(c, invoice, agingBounds(), types.Today())
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// UpdateInvoice updates an invoice, selecting the fields to update
// from the request body
//
//	@Summary		Update invoice
//	@Description	Updates an existing invoice. Only values to be updated need to be specified. The billed amount and the patient reference are immutable.
//	@Tags			Invoices
//	@Accept			json
//	@Produce		json
//	@Success		200		{object}	InvoiceResponse
//	@Failure		400		{object}	InvoiceResponse
//	@Failure		404		{object}	InvoiceResponse
//	@Failure		500		{object}	InvoiceResponse
//	@Param			id		path		URIID			true	"ID formatted as string"
//	@Param			invoice	body		InvoiceEditable	true	"Invoice"
//	@Router			/v1/invoices/{id} [patch]
func UpdateInvoice(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	var invoice models.Invoice
	err = models.DB.First(&invoice, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, InvoiceEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	// The billed amount and the patient reference are part of the
	// historical record and can not be changed once the invoice exists
	for _, field := range updateFields {
		if field == "TotalAmount" || field == "PatientRef" || field == "InvoiceDate" {
			s := models.ErrInvoiceImmutableField.Error()
			c.JSON(http.StatusBadRequest, InvoiceResponse{
				Error: &s,
			})
			return
		}
	}

	var update InvoiceEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&invoice).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	invoice, err = invoice.WithCalculations(models.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), InvoiceResponse{
			Error: &s,
		})
		return
	}

	data := newInvoice(c, invoice, agingBounds(), types.Today())
	c.JSON(http.StatusOK, InvoiceResponse{Data: &data})
}

// netAllocatedSubquery returns a query for the net allocated amount of the
// invoice referenced by the column passed. Reversals subtract from the sum.
func netAllocatedSubquery(column string) *gorm.DB {
	return models.DB.
		Table("allocations").
		Select("COALESCE(SUM(CASE WHEN allocations.kind = ? THEN -allocations.amount ELSE allocations.amount END), 0)", models.KindReversal).
		Where("allocations.invoice_id = " + column).
		Where("allocations.deleted_at IS NULL")
}
