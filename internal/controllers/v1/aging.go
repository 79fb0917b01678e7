package v1

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/money"
	"github.com/medledger/backend/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RegisterAgingRoutes registers the routes for the aging report with
// the RouterGroup that is passed.
func RegisterAgingRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsAging)
	r.GET("", GetAging)
}

// agingBounds returns the configured aging bucket boundaries.
//
// An unparsable AGING_BOUNDARIES value falls back to the defaults so that a
// misconfiguration does not take the API down.
func agingBounds() ledger.BucketBounds {
	env := os.Getenv("AGING_BOUNDARIES")
	if env == "" {
		return ledger.DefaultBounds
	}

	bounds, err := ledger.ParseBounds(env)
	if err != nil {
		log.Warn().Str("AGING_BOUNDARIES", env).Err(err).Msg("falling back to default aging boundaries")
		return ledger.DefaultBounds
	}

	return bounds
}

// AgingRow is the aggregate for one aging bucket.
type AgingRow struct {
	Bucket       ledger.Bucket   `json:"bucket" example:"30_days"`       // The aging bucket
	Count        int             `json:"count" example:"3"`              // Number of outstanding invoices in the bucket
	Total        int64           `json:"total" example:"450000"`         // Summed balance due in minor currency units
	TotalDisplay decimal.Decimal `json:"totalDisplay" example:"4500.00"` // Summed balance due in major currency units
}

// AgingData is the aging report.
type AgingData struct {
	AsOf     types.Date `json:"asOf" example:"2024-06-14"` // Reference date of the report
	Currency string     `json:"currency" example:"USD"`    // Currency the display totals are denominated in
	Rows     []AgingRow `json:"rows"`                      // One aggregate per bucket, oldest last
	Total    int64      `json:"total" example:"1250000"`   // Total outstanding over all buckets, minor units
}

type AgingResponse struct {
	Error *string    `json:"error" example:"the asOf parameter must be a date in YYYY-MM-DD format"` // The error, if any occurred
	Data  *AgingData `json:"data"`                                                                   // The aging report, if the request was successful
}

// OptionsAging returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Aging
//	@Success		204
//	@Router			/v1/aging [options]
func OptionsAging(c *gin.Context) {
	httputil.OptionsGet(c)
}

// GetAging returns the accounts receivable aging report
//
//	@Summary		Get aging report
//	@Description	Returns the outstanding balances grouped into aging buckets. Invoices due at the reference date belong to the current bucket, overdue invoices to the bucket matching their days overdue.
//	@Tags			Aging
//	@Produce		json
//	@Success		200	{object}	AgingResponse
//	@Failure		400	{object}	AgingResponse
//	@Failure		500	{object}	AgingResponse
//	@Router			/v1/aging [get]
//	@Param			asOf	query	string	false	"Reference date for the report (YYYY-MM-DD). Defaults to today."
//	@Param			patient	query	string	false	"Limit the report to one patient reference"
func GetAging(c *gin.Context) {
	asOf := types.Today()
	if param := c.Query("asOf"); param != "" {
		parsed, err := types.ParseDate(param)
		if err != nil {
			s := errAsOfInvalid.Error()
			c.JSON(http.StatusBadRequest, AgingResponse{Error: &s})
			return
		}
		asOf = parsed
	}

	query := models.DB.Order("due_date ASC, created_at ASC")
	if patient := c.Query("patient"); patient != "" {
		query = query.Where(&models.Invoice{PatientRef: patient})
	}

	var invoices []models.Invoice
	err := query.Find(&invoices).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AgingResponse{Error: &s})
		return
	}

	unit, err := money.Unit()
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusInternalServerError, AgingResponse{Error: &s})
		return
	}

	scale, err := money.Scale()
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusInternalServerError, AgingResponse{Error: &s})
		return
	}

	bounds := agingBounds()
	counts := make(map[ledger.Bucket]int)
	totals := make(map[ledger.Bucket]int64)
	var total int64

	for _, invoice := range invoices {
		invoice, err = invoice.WithCalculations(models.DB)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), AgingResponse{Error: &s})
			return
		}

		// Settled invoices do not age
		if invoice.BalanceDue <= 0 {
			continue
		}

		bucket := bounds.Classify(invoice.DueDate, asOf)
		counts[bucket]++
		totals[bucket] += invoice.BalanceDue
		total += invoice.BalanceDue
	}

	// Every configured bucket appears in the report, empty ones included
	rows := make([]AgingRow, 0, len(bounds.Buckets()))
	for _, bucket := range bounds.Buckets() {
		rows = append(rows, AgingRow{
			Bucket:       bucket,
			Count:        counts[bucket],
			Total:        totals[bucket],
			TotalDisplay: money.FromMinor(totals[bucket], scale),
		})
	}

	c.JSON(http.StatusOK, AgingResponse{
		Data: &AgingData{
			AsOf:     asOf,
			Currency: unit.String(),
			Rows:     rows,
			Total:    total,
		},
	})
}
