// Package ledger implements the payment-to-invoice allocation engine.
//
// Balances are always derived from the append-only allocation ledger; the
// engine never stores a running total. Proposals are pure computations,
// only Commit writes ledger entries.
package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medledger/backend/internal/types"
)

// Bucket is the aging classification of an invoice.
type Bucket string

// BucketCurrent is the bucket for invoices that are not overdue.
const BucketCurrent Bucket = "current"

// BucketBounds holds the upper day boundaries of the overdue aging tiers.
//
// The boundaries are cumulative: with the default of [30, 60], an invoice
// that is 1-30 days overdue is in "30_days", 31-60 days in "60_days" and
// everything beyond the last boundary in the final open-ended tier, which
// is labelled one step further ("90_days") per accounts-receivable
// convention.
type BucketBounds struct {
	boundaries []int
}

// DefaultBounds is the 30/60/90 ladder used by accounts receivable unless
// configured otherwise.
var DefaultBounds = MustParseBounds("30,60")

// ParseBounds parses a comma-separated list of strictly increasing positive
// day boundaries, e.g. "30,60,90".
func ParseBounds(s string) (BucketBounds, error) {
	parts := strings.Split(s, ",")

	boundaries := make([]int, 0, len(parts))
	last := 0
	for _, part := range parts {
		days, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return BucketBounds{}, fmt.Errorf("invalid aging boundary %q: %w", part, err)
		}

		if days <= last {
			return BucketBounds{}, fmt.Errorf("aging boundaries must be strictly increasing, got %q", s)
		}

		boundaries = append(boundaries, days)
		last = days
	}

	return BucketBounds{boundaries: boundaries}, nil
}

// MustParseBounds is ParseBounds, but panics on invalid input.
func MustParseBounds(s string) BucketBounds {
	bounds, err := ParseBounds(s)
	if err != nil {
		panic(err)
	}

	return bounds
}

// Buckets returns all buckets in ascending severity, starting with
// BucketCurrent.
func (b BucketBounds) Buckets() []Bucket {
	buckets := make([]Bucket, 0, len(b.boundaries)+2)
	buckets = append(buckets, BucketCurrent)

	for _, boundary := range b.boundaries {
		buckets = append(buckets, Bucket(fmt.Sprintf("%d_days", boundary)))
	}

	buckets = append(buckets, b.overflowBucket())
	return buckets
}

// overflowBucket labels the open-ended tier past the last boundary. The
// label continues the ladder by the step between the last two boundaries,
// so [30, 60] yields "90_days" for everything 61 days and beyond.
func (b BucketBounds) overflowBucket() Bucket {
	last := b.boundaries[len(b.boundaries)-1]

	step := last
	if len(b.boundaries) > 1 {
		step = last - b.boundaries[len(b.boundaries)-2]
	}

	return Bucket(fmt.Sprintf("%d_days", last+step))
}

// DaysOverdue returns the number of whole days the due date is past as of
// the given date. It is 0 for invoices that are due today or not yet due.
func DaysOverdue(due, asOf types.Date) int {
	days := asOf.DaysSince(due)
	if days < 0 {
		return 0
	}

	return days
}

// Classify returns the aging bucket for a due date as of the given date.
// An invoice due today is current.
func (b BucketBounds) Classify(due, asOf types.Date) Bucket {
	days := DaysOverdue(due, asOf)
	if days == 0 {
		return BucketCurrent
	}

	for _, boundary := range b.boundaries {
		if days <= boundary {
			return Bucket(fmt.Sprintf("%d_days", boundary))
		}
	}

	return b.overflowBucket()
}
