package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/medledger/backend/internal/controllers/v1"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	"github.com/medledger/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// agingReport requests the aging report and decodes it.
func agingReport(t *testing.T, query string) v1.AgingResponse {
	r := test.Request(t, http.MethodGet, "http://example.com/v1/aging"+query, "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.AgingResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)

	return response
}

// TestAgingDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestAgingDBClosed() {
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/aging", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)

	var response v1.AgingResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrGeneral.Error())
}

// TestAgingOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestAgingOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/aging", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, GET", r.Header().Get("allow"))
}

// TestAgingEmpty verifies that the report contains every bucket even without
// any invoices.
func (suite *TestSuiteStandard) TestAgingEmpty() {
	response := agingReport(suite.T(), "")

	assert.Equal(suite.T(), types.Today(), response.Data.AsOf)
	assert.Equal(suite.T(), "USD", response.Data.Currency)
	assert.Equal(suite.T(), int64(0), response.Data.Total)

	require.Len(suite.T(), response.Data.Rows, 4)
	assert.Equal(suite.T(), ledger.BucketCurrent, response.Data.Rows[0].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("30_days"), response.Data.Rows[1].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("60_days"), response.Data.Rows[2].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("90_days"), response.Data.Rows[3].Bucket)

	for _, row := range response.Data.Rows {
		assert.Zero(suite.T(), row.Count)
		assert.Zero(suite.T(), row.Total)
	}
}

// TestAgingReport verifies bucket classification against a fixed reference
// date.
func (suite *TestSuiteStandard) TestAgingReport() {
	asOf := types.NewDate(2024, 6, 14)

	// Due in the future, bucket current
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 10000, DueDate: types.NewDate(2024, 7, 1)})
	// 13 days overdue, bucket 30_days
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 20000, DueDate: types.NewDate(2024, 6, 1)})
	// 44 days overdue, bucket 60_days
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 30000, DueDate: types.NewDate(2024, 5, 1)})
	// 165 days overdue, bucket 90_days
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 40000, DueDate: types.NewDate(2024, 1, 1)})
	// Another one in the 30 days bucket
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 5000, DueDate: types.NewDate(2024, 6, 10)})

	response := agingReport(suite.T(), "?asOf=2024-06-14")

	assert.Equal(suite.T(), asOf, response.Data.AsOf)
	assert.Equal(suite.T(), int64(105000), response.Data.Total)

	require.Len(suite.T(), response.Data.Rows, 4)

	tests := []struct {
		bucket ledger.Bucket
		count  int
		total  int64
	}{
		{ledger.BucketCurrent, 1, 10000},
		{"30_days", 2, 25000},
		{"60_days", 1, 30000},
		{"90_days", 1, 40000},
	}

	for i, tt := range tests {
		row := response.Data.Rows[i]
		assert.Equal(suite.T(), tt.bucket, row.Bucket)
		assert.Equal(suite.T(), tt.count, row.Count, "Wrong count for bucket %s", tt.bucket)
		assert.Equal(suite.T(), tt.total, row.Total, "Wrong total for bucket %s", tt.bucket)
		assert.True(suite.T(), displayAmount(tt.total).Equal(row.TotalDisplay), "Wrong display total for bucket %s: %s", tt.bucket, row.TotalDisplay)
	}
}

// displayAmount converts minor USD units to the display representation.
func displayAmount(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// TestAgingSettledExcluded verifies that settled invoices do not age.
func (suite *TestSuiteStandard) TestAgingSettledExcluded() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 10000, DueDate: types.NewDate(2024, 1, 1)})

	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 10000})
	_ = commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines: []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 10000}},
	})

	response := agingReport(suite.T(), "?asOf=2024-06-14")
	assert.Equal(suite.T(), int64(0), response.Data.Total)

	for _, row := range response.Data.Rows {
		assert.Zero(suite.T(), row.Count)
	}
}

// TestAgingPatientFilter verifies that the report can be limited to one
// patient.
func (suite *TestSuiteStandard) TestAgingPatientFilter() {
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-1", TotalAmount: 10000, DueDate: types.NewDate(2024, 6, 1)})
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-2", TotalAmount: 20000, DueDate: types.NewDate(2024, 6, 1)})

	response := agingReport(suite.T(), "?asOf=2024-06-14&patient=PAT-1")
	assert.Equal(suite.T(), int64(10000), response.Data.Total)

	response = agingReport(suite.T(), "?asOf=2024-06-14&patient=PAT-9")
	assert.Equal(suite.T(), int64(0), response.Data.Total)
}

// TestAgingInvalidAsOf verifies that an unparsable reference date is
// rejected.
func (suite *TestSuiteStandard) TestAgingInvalidAsOf() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/aging?asOf=yesterday", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.AgingResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "the asOf parameter must be a date in YYYY-MM-DD format", *response.Error)
}

// TestAgingBoundariesEnv verifies that the bucket ladder follows the
// AGING_BOUNDARIES environment variable.
func (suite *TestSuiteStandard) TestAgingBoundariesEnv() {
	suite.T().Setenv("AGING_BOUNDARIES", "7,14,30")

	response := agingReport(suite.T(), "")

	require.Len(suite.T(), response.Data.Rows, 5)
	assert.Equal(suite.T(), ledger.BucketCurrent, response.Data.Rows[0].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("7_days"), response.Data.Rows[1].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("14_days"), response.Data.Rows[2].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("30_days"), response.Data.Rows[3].Bucket)
	assert.Equal(suite.T(), ledger.Bucket("46_days"), response.Data.Rows[4].Bucket)
}

// TestAgingBoundariesInvalid verifies that a broken configuration falls back
// to the defaults instead of failing the request.
func (suite *TestSuiteStandard) TestAgingBoundariesInvalid() {
	suite.T().Setenv("AGING_BOUNDARIES", "30,bananas")

	response := agingReport(suite.T(), "")
	assert.Len(suite.T(), response.Data.Rows, 4)
}
