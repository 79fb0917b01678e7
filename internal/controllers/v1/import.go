package v1

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/importer"
	"github.com/medledger/backend/internal/importer/parser/cashier"
	"github.com/medledger/backend/internal/models"
	ml_uuid "github.com/medledger/backend/internal/uuid"
)

// RegisterImportRoutes registers the routes for imports with
// the RouterGroup that is passed.
func RegisterImportRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsImport)
		r.GET("", GetImport)

		r.OPTIONS("/cashier", OptionsImportCashier)
		r.POST("/cashier", ImportCashier)
	}
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, err
	}

	return f, nil
}

type ImportLinks struct {
	Cashier string `json:"cashier" example:"https://example.com/api/v1/import/cashier"` // URL of the cashiering export import endpoint
}

type ImportResponse struct {
	Links ImportLinks `json:"links"` // Links to the import endpoints
}

// ImportedPayment is a payment created from a cashiering export row,
// together with the patient attribution the match rules produced for it.
type ImportedPayment struct {
	Payment Payment `json:"payment"` // The created payment

	// PatientRef is the patient reference the payer name was attributed to.
	// It is a suggestion for the allocation workflow, nothing is allocated
	// automatically. Empty when no match rule matched.
	PatientRef string `json:"patientRef" example:"PAT-2024-00451"`

	MatchRuleID *ml_uuid.UUID `json:"matchRuleId"` // The match rule that produced the attribution, if any
}

type ImportedPaymentListResponse struct {
	Error *string           `json:"error" example:"error in line 3 of the CSV: could not parse date"` // The error, if any occurred
	Data  []ImportedPayment `json:"data"`                                                             // The created payments
}

// OptionsImport returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Import
//	@Success		204
//	@Router			/v1/import [options]
func OptionsImport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsImportCashier returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Import
//	@Success		204
//	@Router			/v1/import/cashier [options]
func OptionsImportCashier(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GetImport returns general information about the import endpoints
//
//	@Summary		Import overview
//	@Description	Returns general information about the import endpoints
//	@Tags			Import
//	@Success		200	{object}	ImportResponse
//	@Router			/v1/import [get]
func GetImport(c *gin.Context) {
	c.JSON(http.StatusOK, ImportResponse{
		Links: ImportLinks{
			Cashier: c.GetString(string(models.DBContextURL)) + "/v1/import/cashier",
		},
	})
}

// ImportCashier creates payments from a cashiering export
//
//	@Summary		Import cashiering export
//	@Description	Parses a CSV export of the cashiering system and creates one payment per row, all-or-nothing. Payer names are attributed to patient references via the match rules; the attribution is returned as a suggestion for the allocation workflow, nothing is allocated automatically.
//	@Tags			Import
//	@Accept			multipart/form-data
//	@Produce		json
//	@Success		201		{object}	ImportedPaymentListResponse
//	@Failure		400		{object}	ImportedPaymentListResponse
//	@Failure		500		{object}	ImportedPaymentListResponse
//	@Param			file	formData	file	true	"File to import"
//	@Router			/v1/import/cashier [post]
func ImportCashier(c *gin.Context) {
	f, err := getUploadedFile(c, ".csv")
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportedPaymentListResponse{
			Error: &s,
		})
		return
	}

	previews, err := cashier.Parse(f)
	if err != nil {
		// cashier.Parse returns a usable error already, no parsing necessary
		s := err.Error()
		c.JSON(http.StatusBadRequest, ImportedPaymentListResponse{
			Error: &s,
		})
		return
	}

	previews, err = importer.Match(models.DB, previews)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportedPaymentListResponse{
			Error: &s,
		})
		return
	}

	previews, err = importer.Create(models.DB, previews)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportedPaymentListResponse{
			Error: &s,
		})
		return
	}

	data := make([]ImportedPayment, 0, len(previews))
	for _, preview := range previews {
		payment := preview.Payment

		// A new payment has no ledger entries yet
		payment.Unallocated = payment.Amount

		imported := ImportedPayment{
			Payment:    newPayment(c, payment),
			PatientRef: preview.PatientRef,
		}

		if preview.MatchRuleID != uuid.Nil {
			id := ml_uuid.UUID{UUID: preview.MatchRuleID}
			imported.MatchRuleID = &id
		}

		data = append(data, imported)
	}

	c.JSON(http.StatusCreated, ImportedPaymentListResponse{Data: data})
}
