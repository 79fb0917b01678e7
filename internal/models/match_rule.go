package models

import (
	"strings"

	"gorm.io/gorm"
)

// MatchRule maps payer names from cashiering exports to patient references.
// The Match field is a glob pattern. Rules with a lower priority value are
// applied first.
type MatchRule struct {
	DefaultModel
	Priority   uint
	Match      string
	PatientRef string
}

// BeforeSave validates the match rule.
func (r *MatchRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)
	r.PatientRef = strings.TrimSpace(r.PatientRef)

	if r.Match == "" || r.PatientRef == "" {
		return ErrMatchRuleEmpty
	}

	return nil
}
