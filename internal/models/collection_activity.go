package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/medledger/backend/internal/types"
	"gorm.io/gorm"
)

// ActivityType is the kind of contact attempt logged for an invoice.
//
// swagger:enum ActivityType
type ActivityType string

const (
	ActivityPhoneCall ActivityType = "phone_call"
	ActivitySMS       ActivityType = "sms"
	ActivityEmail     ActivityType = "email"
	ActivityLetter    ActivityType = "letter"
	ActivityVisit     ActivityType = "visit"
)

// Valid reports whether the activity type is one of the known values.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPhoneCall, ActivitySMS, ActivityEmail, ActivityLetter, ActivityVisit:
		return true
	}
	return false
}

// CollectionActivity is an append-only log entry of a contact attempt or
// reminder for an invoice. It has no effect on any balance; it exists so
// that contact history can be shown next to balance data.
type CollectionActivity struct {
	DefaultModel
	InvoiceID    uuid.UUID `gorm:"index"`
	Invoice      Invoice   `json:"-"`
	ActivityType ActivityType
	Outcome      string
	Notes        string
	FollowUpDate types.Date
	Actor        string
}

// BeforeSave validates the activity.
func (a *CollectionActivity) BeforeSave(_ *gorm.DB) error {
	a.Outcome = strings.TrimSpace(a.Outcome)
	a.Notes = strings.TrimSpace(a.Notes)
	a.Actor = strings.TrimSpace(a.Actor)

	if !a.ActivityType.Valid() {
		return ErrActivityTypeInvalid
	}

	return nil
}
