package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	ml_uuid "github.com/medledger/backend/internal/uuid"
	"golang.org/x/exp/slices"
)

// RegisterPaymentRoutes registers the routes for payments with
// the RouterGroup that is passed.
func RegisterPaymentRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsPaymentList)
		r.GET("", GetPayments)
		r.POST("", CreatePayments)
	}

	// Payment with ID
	{
		r.OPTIONS("/:id", OptionsPaymentDetail)
		r.GET("/:id", GetPayment)
	}

	// Allocation workflow
	{
		r.OPTIONS("/:id/proposals", OptionsPaymentProposals)
		r.POST("/:id/proposals", ProposeAllocation)

		r.OPTIONS("/:id/allocations", OptionsPaymentAllocations)
		r.POST("/:id/allocations", CommitAllocation)
	}
}

// OptionsPaymentList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Payments
//	@Success		204
//	@Router			/v1/payments [options]
func OptionsPaymentList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsPaymentDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Payments
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/payments/{id} [options]
func OptionsPaymentDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Payment{}, httputil.OptionsGet)
}

// OptionsPaymentProposals returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Payments
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/payments/{id}/proposals [options]
func OptionsPaymentProposals(c *gin.Context) {
	resourceOptionsDetail(c, models.Payment{}, httputil.OptionsPost)
}

// OptionsPaymentAllocations returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Payments
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/payments/{id}/allocations [options]
func OptionsPaymentAllocations(c *gin.Context) {
	resourceOptionsDetail(c, models.Payment{}, httputil.OptionsPost)
}

// CreatePayments creates new payments
//
//	@Summary		Create payments
//	@Description	Creates new payments
//	@Tags			Payments
//	@Produce		json
//	@Success		201			{object}	PaymentCreateResponse
//	@Failure		400			{object}	PaymentCreateResponse
//	@Failure		500			{object}	PaymentCreateResponse
//	@Param			payments	body		[]PaymentEditable	true	"Payments"
//	@Router			/v1/payments [post]
func CreatePayments(c *gin.Context) {
	var editables []PaymentEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentCreateResponse{
			Error: &s,
		})
		return
	}

	responseStatus := http.StatusCreated
	r := PaymentCreateResponse{}

	for _, editable := range editables {
		payment := editable.model()

		err = models.DB.Create(&payment).Error
		if err != nil {
			responseStatus = r.appendError(err, responseStatus)
			continue
		}

		// A new payment has no ledger entries yet
		payment.Unallocated = payment.Amount
		data := newPayment(c, payment)
		r.Data = append(r.Data, PaymentResponse{Data: &data})
	}

	c.JSON(responseStatus, r)
}

// GetPayments returns a list of payments filtered by the query parameters
//
//	@Summary		Get payments
//	@Description	Returns a list of payments
//	@Tags			Payments
//	@Produce		json
//	@Success		200	{object}	PaymentListResponse
//	@Failure		400	{object}	PaymentListResponse
//	@Failure		500	{object}	PaymentListResponse
//	@Router			/v1/payments [get]
//	@Param			payer		query	string	false	"Filter by payer name"
//	@Param			method		query	string	false	"Filter by payment method"
//	@Param			reference	query	string	false	"Filter by external reference"
//	@Param			state		query	string	false	"Filter by derived allocation state"
//	@Param			note		query	string	false	"Filter by note"
//	@Param			offset		query	uint	false	"The offset of the first payment returned. Defaults to 0."
//	@Param			limit		query	int		false	"Maximum number of payments to return. Defaults to 50."
func GetPayments(c *gin.Context) {
	var filter PaymentQueryFilter

	// The filters are optional, so we do not need to handle the error
	_ = c.Bind(&filter)

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	where := filter.model()

	var payments []models.Payment
	query := models.DB.
		Order("payment_date ASC, created_at ASC").
		Where(&where, queryFields...)

	if filter.PayerName != "" {
		query = query.Where("payer_name LIKE ?", "%"+filter.PayerName+"%")
	}

	if filter.Note != "" {
		query = query.Where("note LIKE ?", "%"+filter.Note+"%")
	}

	// The state is derived from the ledger, so filtering happens on the
	// same net sum the balance calculation uses
	if filter.State != "" {
		sub := "(SELECT COALESCE(SUM(CASE WHEN allocations.kind = 'reversal' THEN -allocations.amount ELSE allocations.amount END), 0) FROM allocations WHERE allocations.payment_id = payments.id AND allocations.deleted_at IS NULL)"

		switch filter.State {
		case models.PaymentStateUnallocated:
			query = query.Where(sub + " = 0")
		case models.PaymentStatePartiallyAllocated:
			query = query.Where(sub + " > 0 AND " + sub + " < payments.amount")
		case models.PaymentStateFullyAllocated:
			query = query.Where(sub + " >= payments.amount")
		default:
			s := models.ErrPaymentStateInvalid.Error()
			c.JSON(http.StatusBadRequest, PaymentListResponse{Error: &s})
			return
		}
	}

	query = query.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(queryFields, "Limit") {
		limit = filter.Limit
	}
	query = query.Limit(limit)

	err := query.Find(&payments).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = query.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Payment, 0, len(payments))
	for _, payment := range payments {
		payment, err = payment.WithCalculations(models.DB)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), PaymentListResponse{
				Error: &s,
			})
			return
		}

		data = append(data, newPayment(c, payment))
	}

	c.JSON(http.StatusOK, PaymentListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// GetPayment returns a specific payment
//
//	@Summary		Get payment
//	@Description	Returns a specific payment
//	@Tags			Payments
//	@Produce		json
//	@Success		200	{object}	PaymentResponse
//	@Failure		400	{object}	PaymentResponse
//	@Failure		404	{object}	PaymentResponse
//	@Failure		500	{object}	PaymentResponse
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/payments/{id} [get]
func GetPayment(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	var payment models.Payment
	err = models.DB.First(&payment, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	payment, err = payment.WithCalculations(models.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{
			Error: &s,
		})
		return
	}

	data := newPayment(c, payment)
	c.JSON(http.StatusOK, PaymentResponse{Data: &data})
}

// ProposeAllocation computes a suggested allocation of the payment's
// unallocated amount over a set of candidate invoices
//
//	@Summary		Propose allocation
//	@Description	Computes a suggested allocation of the payment's unallocated amount over the candidate invoices. Nothing is persisted, committing the proposal is a separate request.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Success		200			{object}	ProposalResponse
//	@Failure		400			{object}	ProposalResponse
//	@Failure		404			{object}	ProposalResponse
//	@Failure		500			{object}	ProposalResponse
//	@Param			id			path		URIID			true	"ID formatted as string"
//	@Param			proposal	body		ProposalRequest	true	"Proposal parameters"
//	@Router			/v1/payments/{id}/proposals [post]
func ProposeAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	var request ProposalRequest
	err = httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	var payment models.Payment
	err = models.DB.First(&payment, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	payment, err = payment.WithCalculations(models.DB)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	candidates, err := proposalCandidates(request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	proposal, err := ledger.Propose(payment.Unallocated, candidates, request.Strategy)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	// The revision lets the commit detect concurrent ledger changes
	revision, err := ledger.Revision(models.DB, payment.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProposalResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, ProposalResponse{
		Data: &Proposal{
			Lines:          proposal.Lines,
			Leftover:       proposal.Leftover,
			LedgerRevision: revision,
		},
	})
}

// proposalCandidates loads the candidate invoices for a proposal request.
//
// With an explicit ID list, every named invoice is offered as-is and the
// strategy selector rejects non-outstanding ones. With a patient reference,
// invoices that are already settled are silently skipped.
func proposalCandidates(request ProposalRequest) ([]ledger.Candidate, error) {
	if request.Patient == "" && len(request.CandidateIDs) == 0 {
		return nil, errPatientOrCandidatesRequired
	}

	if request.Patient != "" && len(request.CandidateIDs) != 0 {
		return nil, errPatientOrCandidatesRequired
	}

	var invoices []models.Invoice

	if request.Patient != "" {
		err := models.DB.
			Where(&models.Invoice{PatientRef: request.Patient}).
			Order("due_date ASC, created_at ASC").
			Find(&invoices).Error
		if err != nil {
			return nil, err
		}
	} else {
		for _, id := range request.CandidateIDs {
			var invoice models.Invoice
			err := models.DB.First(&invoice, "id = ?", id.UUID).Error
			if err != nil {
				return nil, err
			}

			invoices = append(invoices, invoice)
		}
	}

	candidates := make([]ledger.Candidate, 0, len(invoices))
	for _, invoice := range invoices {
		invoice, err := invoice.WithCalculations(models.DB)
		if err != nil {
			return nil, err
		}

		if request.Patient != "" && invoice.BalanceDue <= 0 {
			continue
		}

		candidates = append(candidates, ledger.NewCandidate(invoice))
	}

	return candidates, nil
}

// CommitAllocation validates the submitted allocation lines against current
// ledger state and appends them as ledger entries, all-or-nothing
//
//	@Summary		Commit allocation
//	@Description	Validates the submitted allocation lines against current ledger state and appends them as ledger entries, all-or-nothing. Returns HTTP 409 with conflict details when a balance invariant would be violated or the ledger changed since the given revision.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Success		201			{object}	CommitResponse
//	@Failure		400			{object}	CommitResponse
//	@Failure		404			{object}	CommitResponse
//	@Failure		409			{object}	CommitResponse
//	@Failure		500			{object}	CommitResponse
//	@Param			id			path		URIID			true	"ID formatted as string"
//	@Param			submission	body		CommitRequest	true	"Allocation lines"
//	@Router			/v1/payments/{id}/allocations [post]
func CommitAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CommitResponse{
			Error: &s,
		})
		return
	}

	var request CommitRequest
	err = httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CommitResponse{
			Error: &s,
		})
		return
	}

	created, err := ledger.Commit(models.DB, uri.ID.UUID, request.Lines, ledger.CommitOptions{
		AllocatedBy: request.AllocatedBy,
		Note:        request.Note,
		Revision:    request.LedgerRevision,
	})
	if err != nil {
		s := err.Error()
		response := CommitResponse{Error: &s}

		var conflict ledger.ConflictError
		if errors.As(err, &conflict) {
			response.Conflict = newConflict(conflict)
		}

		c.JSON(status(err), response)
		return
	}

	data := make([]Allocation, 0, len(created))
	for _, allocation := range created {
		data = append(data, newAllocation(c, allocation))
	}

	c.JSON(http.StatusCreated, CommitResponse{Data: data})
}

// newConflict returns the API representation of a rejected commit.
func newConflict(err ledger.ConflictError) *Conflict {
	conflict := Conflict{
		Invariant: err.Invariant,
		PaymentID: ml_uuid.UUID{UUID: err.PaymentID},
		Requested: err.Requested,
		Available: err.Available,
	}

	if err.InvoiceID != ml_uuid.Nil.UUID {
		id := ml_uuid.UUID{UUID: err.InvoiceID}
		conflict.InvoiceID = &id
	}

	return &conflict
}
