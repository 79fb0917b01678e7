package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/medledger/backend/internal/controllers/v1"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMatchRulesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestMatchRulesDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestMatchRule(t, v1.MatchRuleEditable{Match: "NHIF *", PatientRef: "PAT-1"}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/match-rules", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.MatchRuleListResponse
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

// TestMatchRulesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestMatchRulesOptions() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: "NHIF *", PatientRef: "PAT-1"})

	tests := []struct {
		name   string
		path   string // path below the match rules endpoint
		status int    // Expected HTTP status code
		allow  string // Expected "allow" header
	}{
		{"List", "", http.StatusNoContent, "OPTIONS, GET, POST"},
		{"Detail", rule.Data.ID.String(), http.StatusNoContent, "OPTIONS, GET, PATCH, DELETE"},
		{"No rule with this ID", uuid.New().String(), http.StatusNotFound, ""},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("http://example.com/v1/match-rules/%s", tt.path)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.allow != "" {
				assert.Equal(t, tt.allow, r.Header().Get("allow"))
			}
		})
	}
}

// TestMatchRulesCreate verifies match rule creation.
func (suite *TestSuiteStandard) TestMatchRulesCreate() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{
		Priority:   2,
		Match:      "NHIF *",
		PatientRef: "PAT-2024-00451",
	})

	data := rule.Data
	assert.Equal(suite.T(), uint(2), data.Priority)
	assert.Equal(suite.T(), "NHIF *", data.Match)
	assert.Equal(suite.T(), "PAT-2024-00451", data.PatientRef)
	assert.Equal(suite.T(), fmt.Sprintf("http://example.com/v1/match-rules/%s", data.ID), data.Links.Self)
}

func (suite *TestSuiteStandard) TestMatchRulesCreateFails() {
	tests := []struct {
		name     string
		body     any
		status   int
		testFunc func(t *testing.T, r v1.MatchRuleCreateResponse)
	}{
		{"Broken body", `[{ "match": 2 }]`, http.StatusBadRequest, nil},
		{"No body", "", http.StatusBadRequest, nil},
		{
			"No match pattern",
			`[{ "patientRef": "PAT-1" }]`,
			http.StatusBadRequest,
			func(t *testing.T, r v1.MatchRuleCreateResponse) {
				require.Len(t, r.Data, 1)
				assert.Equal(t, models.ErrMatchRuleEmpty.Error(), *r.Data[0].Error)
			},
		},
		{
			"No patient reference",
			`[{ "match": "NHIF *" }]`,
			http.StatusBadRequest,
			func(t *testing.T, r v1.MatchRuleCreateResponse) {
				require.Len(t, r.Data, 1)
				assert.Equal(t, models.ErrMatchRuleEmpty.Error(), *r.Data[0].Error)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/match-rules", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.MatchRuleCreateResponse
			test.DecodeResponse(t, &r, &response)

			if tt.testFunc != nil {
				tt.testFunc(t, response)
			}
		})
	}
}

// TestMatchRulesGetSingle verifies that requests for the resource endpoints
// are handled correctly.
func (suite *TestSuiteStandard) TestMatchRulesGetSingle() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: "NHIF *", PatientRef: "PAT-1"})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing rule", rule.Data.ID.String(), http.StatusOK},
		{"No rule with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID (string)", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/match-rules/%s", tt.id), "")

			var response v1.MatchRuleResponse
			test.DecodeResponse(t, &r, &response)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestMatchRulesGetFilter() {
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 1, Match: "NHIF *", PatientRef: "PAT-1"})
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 2, Match: "ACME Insurance*", PatientRef: "PAT-1"})
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 3, Match: "Harbor Mutual", PatientRef: "PAT-2"})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Fuzzy match", "match=Insurance", 1},
		{"Patient 1", "patient=PAT-1", 2},
		{"Patient 2", "patient=PAT-2", 1},
		{"Patient without rules", "patient=PAT-9", 0},
		{"Limit 2", "limit=2", 2},
		{"Offset 2", "offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.MatchRuleListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/match-rules?%s", tt.query), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// TestMatchRulesGetSorted verifies that match rules are sorted by priority.
func (suite *TestSuiteStandard) TestMatchRulesGetSorted() {
	r3 := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 3, Match: "Harbor Mutual", PatientRef: "PAT-2"})
	r1 := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 1, Match: "NHIF *", PatientRef: "PAT-1"})
	r2 := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 2, Match: "ACME Insurance*", PatientRef: "PAT-1"})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/match-rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 3)
	assert.Equal(suite.T(), r1.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), r2.Data.ID, response.Data[1].ID)
	assert.Equal(suite.T(), r3.Data.ID, response.Data[2].ID)
}

// TestMatchRulesUpdate verifies that updating match rules works as desired.
func (suite *TestSuiteStandard) TestMatchRulesUpdate() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: "NHIF *", PatientRef: "PAT-1"})

	r := test.Request(suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{
		"priority": 5,
		"match":    "NHIF Branch *",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.MatchRuleResponse
	test.DecodeResponse(suite.T(), &r, &updated)

	assert.Equal(suite.T(), uint(5), updated.Data.Priority)
	assert.Equal(suite.T(), "NHIF Branch *", updated.Data.Match)
	assert.Equal(suite.T(), "PAT-1", updated.Data.PatientRef)
}

func (suite *TestSuiteStandard) TestMatchRulesUpdateFails() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: "NHIF *", PatientRef: "PAT-1"})

	tests := []struct {
		name   string
		id     string
		body   any
		status int
	}{
		{"Invalid type", rule.Data.ID.String(), `{"match": 2}`, http.StatusBadRequest},
		{"Broken JSON", rule.Data.ID.String(), `{ "match": 2" }`, http.StatusBadRequest},
		{"Non-existing rule", uuid.New().String(), `{"match": "X*"}`, http.StatusNotFound},
		{"Empty match pattern", rule.Data.ID.String(), `{"match": ""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, fmt.Sprintf("http://example.com/v1/match-rules/%s", tt.id), tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestMatchRulesDelete verifies that match rules can be deleted.
func (suite *TestSuiteStandard) TestMatchRulesDelete() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: "NHIF *", PatientRef: "PAT-1"})

	r := test.Request(suite.T(), http.MethodDelete, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestMatchRulesDeleteFails() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Non-existing rule", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1/match-rules/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}
