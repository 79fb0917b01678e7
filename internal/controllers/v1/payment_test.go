package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/medledger/backend/internal/controllers/v1"
	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	"github.com/medledger/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPaymentsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestPaymentsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestPayment(t, v1.PaymentEditable{Amount: 10000}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/payments", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.PaymentListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestPaymentsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestPaymentsOptions() {
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 10000})

	tests := []struct {
		name   string
		path   string // path below the payments endpoint
		status int    // Expected HTTP status code
		allow  string // Expected "allow" header
	}{
		{"List", "", http.StatusNoContent, "OPTIONS, GET, POST"},
		{"Detail", payment.Data.ID.String(), http.StatusNoContent, "OPTIONS, GET"},
		{"Proposals", fmt.Sprintf("%s/proposals", payment.Data.ID), http.StatusNoContent, "OPTIONS, POST"},
		{"Allocations", fmt.Sprintf("%s/allocations", payment.Data.ID), http.StatusNoContent, "OPTIONS, POST"},
		{"No payment with this ID", uuid.New().String(), http.StatusNotFound, ""},
		{"Proposals for unknown payment", fmt.Sprintf("%s/proposals", uuid.New()), http.StatusNotFound, ""},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("http://example.com/v1/payments/%s", tt.path)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.allow != "" {
				assert.Equal(t, tt.allow, r.Header().Get("allow"))
			}
		})
	}
}

// TestPaymentsCreate verifies that payment creation sets the derived fields.
func (suite *TestSuiteStandard) TestPaymentsCreate() {
	payment := createTestPayment(suite.T(), v1.PaymentEditable{
		Amount:          250000,
		Method:          models.MethodBankTransfer,
		ReferenceNumber: "TRN-883912",
		PayerName:       "J. Mwangi",
	})

	data := payment.Data
	assert.Equal(suite.T(), int64(0), data.Allocated)
	assert.Equal(suite.T(), int64(250000), data.Unallocated, "A new payment must be fully unallocated")
	assert.Equal(suite.T(), models.PaymentStateUnallocated, data.State)
	assert.Equal(suite.T(), models.MethodBankTransfer, data.Method)

	assert.Equal(suite.T(), fmt.Sprintf("http://example.com/v1/payments/%s", data.ID), data.Links.Self)
	assert.Equal(suite.T(), fmt.Sprintf("http://example.com/v1/payments/%s/proposals", data.ID), data.Links.Proposals)
	assert.Equal(suite.T(), fmt.Sprintf("http://example.com/v1/payments/%s/allocations", data.ID), data.Links.Allocations)
	assert.Equal(suite.T(), fmt.Sprintf("http://example.com/v1/allocations?payment=%s", data.ID), data.Links.Ledger)
}

func (suite *TestSuiteStandard) TestPaymentsCreateFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Broken body", `[{ "note": 2 }]`, http.StatusBadRequest},
		{"No body", "", http.StatusBadRequest},
		{"Negative amount", `[{ "amount": -100 }]`, http.StatusBadRequest},
		{"Invalid method", `[{ "amount": 100, "method": "barter" }]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/payments", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestPaymentsGetSingle verifies that requests for the resource endpoints are
// handled correctly.
func (suite *TestSuiteStandard) TestPaymentsGetSingle() {
	p := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 10000})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing payment", p.Data.ID.String(), http.StatusOK},
		{"ID nil", uuid.Nil.String(), http.StatusNotFound},
		{"No payment with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID (negative number)", "-56", http.StatusBadRequest},
		{"Invalid ID (string)", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/payments/%s", tt.id), "")

			var payment v1.PaymentResponse
			test.DecodeResponse(t, &r, &payment)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestPaymentsGetFilter() {
	_ = createTestPayment(suite.T(), v1.PaymentEditable{
		Amount:          10000,
		Method:          models.MethodCash,
		PayerName:       "John Smith",
		ReferenceNumber: "RCP-1001",
	})

	_ = createTestPayment(suite.T(), v1.PaymentEditable{
		Amount:    20000,
		Method:    models.MethodCard,
		PayerName: "ACME Insurance Ltd",
		Note:      "remittance for May",
	})

	_ = createTestPayment(suite.T(), v1.PaymentEditable{
		Amount:    30000,
		Method:    models.MethodCash,
		PayerName: "Jane Smith",
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Method cash", "method=cash", 2},
		{"Method card", "method=card", 1},
		{"Method without payments", "method=cheque", 0},
		{"Fuzzy payer", "payer=Smith", 2},
		{"Exact reference", "reference=RCP-1001", 1},
		{"Fuzzy note", "note=remittance", 1},
		{"State unallocated", "state=unallocated", 3},
		{"State fully allocated", "state=fully_allocated", 0},
		{"Limit 2", "limit=2", 2},
		{"Offset 2", "offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.PaymentListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/payments?%s", tt.query), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// TestPaymentsGetFilterInvalidState verifies that an unknown state filter is
// rejected.
func (suite *TestSuiteStandard) TestPaymentsGetFilterInvalidState() {
	r := test.Request(suite.T(), http.MethodGet, "/v1/payments?state=half_done", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.PaymentListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ErrPaymentStateInvalid.Error(), *response.Error)
}

// TestPaymentsStateTransitions verifies that the state filter follows the
// ledger through allocation and reversal.
func (suite *TestSuiteStandard) TestPaymentsStateTransitions() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 100000})
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 50000})

	listLen := func(state string) int {
		var response v1.PaymentListResponse
		r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/payments?state=%s", state), "")
		test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
		test.DecodeResponse(suite.T(), &r, &response)

		return len(response.Data)
	}

	assert.Equal(suite.T(), 1, listLen(models.PaymentStateUnallocated))

	_ = commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines: []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 20000}},
	})
	assert.Equal(suite.T(), 1, listLen(models.PaymentStatePartiallyAllocated))
	assert.Equal(suite.T(), 0, listLen(models.PaymentStateUnallocated))

	_ = commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines: []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 30000}},
	})
	assert.Equal(suite.T(), 1, listLen(models.PaymentStateFullyAllocated))
	assert.Equal(suite.T(), 0, listLen(models.PaymentStatePartiallyAllocated))
}

func (suite *TestSuiteStandard) TestPaymentsProposal() {
	// Three outstanding invoices for the same patient, due in reverse
	// creation order
	i1 := createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 30000, DueDate: types.NewDate(2024, 7, 1)})
	i2 := createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 20000, DueDate: types.NewDate(2024, 6, 1)})
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-8", TotalAmount: 99999})

	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 40000})

	r := test.Request(suite.T(), http.MethodPost, payment.Data.Links.Proposals, v1.ProposalRequest{
		Strategy: ledger.StrategyDueDate,
		Patient:  "PAT-7",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProposalResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	require.Len(suite.T(), response.Data.Lines, 2)

	// The earlier due date is paid in full first
	assert.Equal(suite.T(), i2.Data.ID, response.Data.Lines[0].InvoiceID)
	assert.Equal(suite.T(), int64(20000), response.Data.Lines[0].Amount)
	assert.Equal(suite.T(), i1.Data.ID, response.Data.Lines[1].InvoiceID)
	assert.Equal(suite.T(), int64(20000), response.Data.Lines[1].Amount)
	assert.Equal(suite.T(), int64(0), response.Data.Leftover)
	assert.Equal(suite.T(), int64(0), response.Data.LedgerRevision)
}

// TestPaymentsProposalSkipsSettled verifies that settled invoices of a
// patient are not offered as candidates.
func (suite *TestSuiteStandard) TestPaymentsProposalSkipsSettled() {
	settled := createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 10000})
	open := createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 20000})

	settler := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 10000})
	_ = commitTestAllocation(suite.T(), settler.Data.ID, v1.CommitRequest{
		Lines: []ledger.Line{{InvoiceID: settled.Data.ID, Amount: 10000}},
	})

	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 50000})
	r := test.Request(suite.T(), http.MethodPost, payment.Data.Links.Proposals, v1.ProposalRequest{
		Strategy: ledger.StrategyFIFO,
		Patient:  "PAT-7",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProposalResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	require.Len(suite.T(), response.Data.Lines, 1)
	assert.Equal(suite.T(), open.Data.ID, response.Data.Lines[0].InvoiceID)
	assert.Equal(suite.T(), int64(30000), response.Data.Leftover)
}

// TestPaymentsProposalCandidates verifies proposals against an explicit
// candidate list.
func (suite *TestSuiteStandard) TestPaymentsProposalCandidates() {
	i1 := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 30000})
	i2 := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 5000})

	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 20000})

	body := fmt.Sprintf(`{ "strategy": "smallest_balance", "candidateIds": ["%s", "%s"] }`, i1.Data.ID, i2.Data.ID)
	r := test.Request(suite.T(), http.MethodPost, payment.Data.Links.Proposals, body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProposalResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	require.Len(suite.T(), response.Data.Lines, 2)
	assert.Equal(suite.T(), i2.Data.ID, response.Data.Lines[0].InvoiceID)
	assert.Equal(suite.T(), int64(5000), response.Data.Lines[0].Amount)
	assert.Equal(suite.T(), i1.Data.ID, response.Data.Lines[1].InvoiceID)
	assert.Equal(suite.T(), int64(15000), response.Data.Lines[1].Amount)
}

func (suite *TestSuiteStandard) TestPaymentsProposalFails() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 10000})
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 10000})

	tests := []struct {
		name    string
		path    string // Path of the proposals endpoint to use. Defaults to the test payment's.
		body    any
		status  int
		message string // Expected error message, not checked when empty
	}{
		{
			"Neither patient nor candidates",
			"", `{ "strategy": "fifo" }`,
			http.StatusBadRequest,
			"either the patient query parameter or a list of candidate invoice IDs must be set",
		},
		{
			"Both patient and candidates",
			"", fmt.Sprintf(`{ "strategy": "fifo", "patient": "PAT-7", "candidateIds": ["%s"] }`, invoice.Data.ID),
			http.StatusBadRequest,
			"either the patient query parameter or a list of candidate invoice IDs must be set",
		},
		{
			"Unknown strategy",
			"", `{ "strategy": "largest_first", "patient": "PAT-7" }`,
			http.StatusBadRequest,
			"the allocation strategy is not valid",
		},
		{
			"Unknown candidate invoice",
			"", fmt.Sprintf(`{ "strategy": "fifo", "candidateIds": ["%s"] }`, uuid.New()),
			http.StatusNotFound,
			"",
		},
		{
			"Unknown payment",
			fmt.Sprintf("http://example.com/v1/payments/%s/proposals", uuid.New()),
			`{ "strategy": "fifo", "patient": "PAT-7" }`,
			http.StatusNotFound,
			"",
		},
		{
			"Broken body",
			"", `{ "strategy": `,
			http.StatusBadRequest,
			"",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			if tt.path == "" {
				tt.path = payment.Data.Links.Proposals
			}

			r := test.Request(t, http.MethodPost, tt.path, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.ProposalResponse
			test.DecodeResponse(t, &r, &response)

			if tt.message != "" {
				assert.Equal(t, tt.message, *response.Error)
			}
		})
	}
}

// TestPaymentsCommit verifies that committing allocation lines creates
// ledger entries and updates the balances.
func (suite *TestSuiteStandard) TestPaymentsCommit() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 60000})
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 50000})

	response := commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines:       []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 40000}},
		AllocatedBy: "jdoe",
		Note:        "Receipt RCP-10233",
	})

	require.Len(suite.T(), response.Data, 1)
	entry := response.Data[0]
	require.NotNil(suite.T(), entry)
	assert.Equal(suite.T(), models.KindAllocation, entry.Kind)
	assert.Equal(suite.T(), int64(40000), entry.Amount)
	assert.Equal(suite.T(), "jdoe", entry.AllocatedBy)
	assert.Equal(suite.T(), "Receipt RCP-10233", entry.Note)

	var updatedPayment v1.PaymentResponse
	r := test.Request(suite.T(), http.MethodGet, payment.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updatedPayment)
	assert.Equal(suite.T(), int64(40000), updatedPayment.Data.Allocated)
	assert.Equal(suite.T(), int64(10000), updatedPayment.Data.Unallocated)
	assert.Equal(suite.T(), models.PaymentStatePartiallyAllocated, updatedPayment.Data.State)

	var updatedInvoice v1.InvoiceResponse
	r = test.Request(suite.T(), http.MethodGet, invoice.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updatedInvoice)
	assert.Equal(suite.T(), int64(20000), updatedInvoice.Data.BalanceDue)
}

func (suite *TestSuiteStandard) TestPaymentsCommitFails() {
	tests := []struct {
		name   string
		id     string // ID of the payment to commit for. Defaults to a fresh payment.
		body   any
		status int
	}{
		{"No lines", "", `{ "lines": [] }`, http.StatusBadRequest},
		{"Broken body", "", `{ "lines": `, http.StatusBadRequest},
		{"Unknown payment", uuid.New().String(), `{ "lines": [] }`, http.StatusNotFound},
		{"Invalid payment ID", "notaUUID", `{ "lines": [] }`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			if tt.id == "" {
				payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 10000})
				tt.id = payment.Data.ID.String()
			}

			r := test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/payments/%s/allocations", tt.id), tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestPaymentsCommitPaymentConflict verifies the conflict response when the
// submission exceeds the payment's unallocated amount.
func (suite *TestSuiteStandard) TestPaymentsCommitPaymentConflict() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 100000})
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 50000})

	response := commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines: []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 60000}},
	}, http.StatusConflict)

	require.NotNil(suite.T(), response.Conflict)
	assert.Equal(suite.T(), "payment_unallocated", response.Conflict.Invariant)
	assert.Equal(suite.T(), payment.Data.ID, response.Conflict.PaymentID.UUID)
	assert.Nil(suite.T(), response.Conflict.InvoiceID)
	assert.Equal(suite.T(), int64(60000), response.Conflict.Requested)
	assert.Equal(suite.T(), int64(50000), response.Conflict.Available)
}

// TestPaymentsCommitInvoiceConflict verifies the conflict response when a
// line exceeds the invoice's balance due.
func (suite *TestSuiteStandard) TestPaymentsCommitInvoiceConflict() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 30000})
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 50000})

	response := commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines: []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 40000}},
	}, http.StatusConflict)

	require.NotNil(suite.T(), response.Conflict)
	assert.Equal(suite.T(), "invoice_balance_due", response.Conflict.Invariant)
	require.NotNil(suite.T(), response.Conflict.InvoiceID)
	assert.Equal(suite.T(), invoice.Data.ID, response.Conflict.InvoiceID.UUID)
	assert.Equal(suite.T(), int64(40000), response.Conflict.Requested)
	assert.Equal(suite.T(), int64(30000), response.Conflict.Available)

	// Nothing may have been persisted
	var updatedInvoice v1.InvoiceResponse
	r := test.Request(suite.T(), http.MethodGet, invoice.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updatedInvoice)
	assert.Equal(suite.T(), int64(30000), updatedInvoice.Data.BalanceDue)
}

// TestPaymentsCommitStaleRevision verifies that a commit against an outdated
// ledger revision is rejected.
func (suite *TestSuiteStandard) TestPaymentsCommitStaleRevision() {
	invoice := createTestInvoice(suite.T(), v1.InvoiceEditable{TotalAmount: 100000})
	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 50000})

	stale := int64(0)

	// First commit against revision 0 succeeds
	_ = commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines:          []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 10000}},
		LedgerRevision: &stale,
	})

	// The same revision is now outdated
	response := commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines:          []ledger.Line{{InvoiceID: invoice.Data.ID, Amount: 10000}},
		LedgerRevision: &stale,
	}, http.StatusConflict)

	assert.Contains(suite.T(), *response.Error, "changed since the proposal was computed")
	assert.Nil(suite.T(), response.Conflict)
}

// TestPaymentsProposeCommitRoundTrip verifies that a proposal can be
// committed unchanged with its ledger revision.
func (suite *TestSuiteStandard) TestPaymentsProposeCommitRoundTrip() {
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 30000})
	_ = createTestInvoice(suite.T(), v1.InvoiceEditable{PatientRef: "PAT-7", TotalAmount: 20000})

	payment := createTestPayment(suite.T(), v1.PaymentEditable{Amount: 40000})

	r := test.Request(suite.T(), http.MethodPost, payment.Data.Links.Proposals, v1.ProposalRequest{
		Strategy: ledger.StrategyFIFO,
		Patient:  "PAT-7",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var proposal v1.ProposalResponse
	test.DecodeResponse(suite.T(), &r, &proposal)
	require.NotNil(suite.T(), proposal.Data)

	response := commitTestAllocation(suite.T(), payment.Data.ID, v1.CommitRequest{
		Lines:          proposal.Data.Lines,
		AllocatedBy:    "jdoe",
		LedgerRevision: &proposal.Data.LedgerRevision,
	})
	assert.Len(suite.T(), response.Data, len(proposal.Data.Lines))

	var updatedPayment v1.PaymentResponse
	r = test.Request(suite.T(), http.MethodGet, payment.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updatedPayment)
	assert.Equal(suite.T(), int64(0), updatedPayment.Data.Unallocated)
	assert.Equal(suite.T(), models.PaymentStateFullyAllocated, updatedPayment.Data.State)
}
