package v1

import (
	"errors"
	"net/http"

	"github.com/medledger/backend/internal/ledger"
	"github.com/medledger/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate HTTP status for an error.
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	var conflict ledger.ConflictError
	var revision ledger.RevisionError
	if errors.As(err, &conflict) || errors.As(err, &revision) || errors.Is(err, models.ErrAllocationAlreadyReversed) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}

var (
	errPatientOrCandidatesRequired = errors.New("either the patient query parameter or a list of candidate invoice IDs must be set")
	errAsOfInvalid                 = errors.New("the asOf parameter must be a date in YYYY-MM-DD format")
)

// Cleanup errors
var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
)

// Import errors
var (
	errNoFilePost      = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix = errors.New("this endpoint only supports files of the following types")
)
