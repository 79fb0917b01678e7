package importer

import (
	"github.com/google/uuid"
	"github.com/medledger/backend/internal/models"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// Match attributes the payer names of the previews to patient references
// using the stored match rules.
func Match(db *gorm.DB, previews []PaymentPreview) ([]PaymentPreview, error) {
	var rules []models.MatchRule
	err := db.Order("priority ASC").Find(&rules).Error
	if err != nil {
		return nil, err
	}

	for i, preview := range previews {
		preview.PatientRef, preview.MatchRuleID = match(preview.Payment.PayerName, rules)
		previews[i] = preview
	}

	return previews, nil
}

// match returns the patient reference for a payer name. Since rules are
// loaded from the database in priority order, the first match wins.
func match(payerName string, rules []models.MatchRule) (string, uuid.UUID) {
	for _, rule := range rules {
		if glob.Glob(rule.Match, payerName) {
			return rule.PatientRef, rule.ID
		}
	}

	return "", uuid.Nil
}
