package v1_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	v1 "github.com/medledger/backend/internal/controllers/v1"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	"github.com/medledger/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadTestFile builds a multipart request body containing the test file.
func (suite *TestSuiteStandard) loadTestFile(filePath string) (*bytes.Buffer, map[string]string) {
	path := path.Join("../../../testdata/importer/cashier", filePath)
	body := new(bytes.Buffer)

	mw := multipart.NewWriter(body)

	file, err := os.Open(path)
	if err != nil {
		suite.Assert().Fail(err.Error())
	}

	w, err := mw.CreateFormFile("file", filePath)
	if err != nil {
		suite.Assert().Fail(err.Error())
	}

	if _, err := io.Copy(w, file); err != nil {
		suite.Assert().Fail(err.Error())
	}

	mw.Close()

	return body, map[string]string{"Content-Type": mw.FormDataContentType()}
}

// TestImportOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestImportOptions() {
	tests := []struct {
		name  string
		path  string
		allow string
	}{
		{"Overview", "http://example.com/v1/import", "OPTIONS, GET"},
		{"Cashier", "http://example.com/v1/import/cashier", "OPTIONS, POST"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

// TestImportGet verifies the link list of the import overview.
func (suite *TestSuiteStandard) TestImportGet() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/import", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "http://example.com/v1/import/cashier", response.Links.Cashier)
}

// TestImportCashier verifies that a cashiering export creates payments with
// match rule attribution.
func (suite *TestSuiteStandard) TestImportCashier() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{
		Match:      "ACME*",
		PatientRef: "PAT-ACME",
	})

	body, headers := suite.loadTestFile("cashier-export.csv")
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/import/cashier", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.ImportedPaymentListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 3)

	first := response.Data[0]
	assert.Equal(suite.T(), int64(15000), first.Payment.Amount)
	assert.Equal(suite.T(), models.MethodCash, first.Payment.Method)
	assert.Equal(suite.T(), "John Smith", first.Payment.PayerName)
	assert.Equal(suite.T(), types.NewDate(2024, 6, 1), first.Payment.PaymentDate)
	assert.Equal(suite.T(), int64(15000), first.Payment.Unallocated)
	assert.Empty(suite.T(), first.PatientRef, "No match rule matches this payer")
	assert.Nil(suite.T(), first.MatchRuleID)

	second := response.Data[1]
	assert.Equal(suite.T(), int64(7550), second.Payment.Amount)
	assert.Equal(suite.T(), models.MethodCard, second.Payment.Method)
	assert.Equal(suite.T(), "ACME Insurance Ltd", second.Payment.PayerName)
	assert.Equal(suite.T(), "RCP-1002", second.Payment.ReferenceNumber)
	assert.Equal(suite.T(), "PAT-ACME", second.PatientRef)
	require.NotNil(suite.T(), second.MatchRuleID)
	assert.Equal(suite.T(), rule.Data.ID, second.MatchRuleID.UUID)

	third := response.Data[2]
	assert.Equal(suite.T(), int64(120000), third.Payment.Amount)
	assert.Equal(suite.T(), models.MethodBankTransfer, third.Payment.Method)

	// The payments are persisted
	var list v1.PaymentListResponse
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/payments", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Len(suite.T(), list.Data, 3)
}

// TestImportCashierEmpty verifies that an export without rows creates
// nothing.
func (suite *TestSuiteStandard) TestImportCashierEmpty() {
	body, headers := suite.loadTestFile("empty.csv")
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/import/cashier", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.ImportedPaymentListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 0)
}

func (suite *TestSuiteStandard) TestImportCashierFails() {
	tests := []struct {
		name    string
		file    string // File to upload, none when empty
		status  int
		message string // Expected error message, not checked when empty
	}{
		{
			"No file",
			"",
			http.StatusBadRequest,
			"you must send a file to this endpoint",
		},
		{
			"Wrong file suffix",
			"wrong-suffix.txt",
			http.StatusBadRequest,
			"this endpoint only supports files of the following types: .csv",
		},
		{
			"Unparsable date",
			"error-date.csv",
			http.StatusBadRequest,
			"error in line 3 of the CSV: could not parse date",
		},
		{
			"Wrong currency",
			"error-wrong-currency.csv",
			http.StatusBadRequest,
			"error in line 2 of the CSV: the export contains an amount in EUR, but this instance is configured for USD",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var r httptest.ResponseRecorder
			if tt.file == "" {
				r = test.Request(t, http.MethodPost, "http://example.com/v1/import/cashier", "")
			} else {
				body, headers := suite.loadTestFile(tt.file)
				r = test.Request(t, http.MethodPost, "http://example.com/v1/import/cashier", body, headers)
			}

			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.ImportedPaymentListResponse
			test.DecodeResponse(t, &r, &response)

			if tt.message != "" {
				assert.Equal(t, tt.message, *response.Error)
			}
		})
	}
}

// TestImportCashierRollsBack verifies that no payments are created when a
// row fails to import.
func (suite *TestSuiteStandard) TestImportCashierRollsBack() {
	body, headers := suite.loadTestFile("error-amount-zero.csv")
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/import/cashier", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var list v1.PaymentListResponse
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/payments", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Len(suite.T(), list.Data, 0)
}

// TestImportCashierDBClosed verifies that errors are processed correctly
// when the database is closed.
func (suite *TestSuiteStandard) TestImportCashierDBClosed() {
	suite.CloseDB()

	body, headers := suite.loadTestFile("cashier-export.csv")
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/import/cashier", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
}
