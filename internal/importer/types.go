// Package importer creates payments from cashiering system exports.
package importer

import (
	"github.com/google/uuid"
	"github.com/medledger/backend/internal/models"
)

// PaymentPreview is a payment as parsed from a cashiering export, together
// with the patient attribution the match rules produced for it.
type PaymentPreview struct {
	Payment models.Payment

	// PatientRef is the patient reference the payer name was attributed to.
	// Empty when no match rule matched.
	PatientRef string

	// MatchRuleID is the match rule that produced the attribution
	MatchRuleID uuid.UUID
}
