package pipeline

import (
	"math"
	"time"

	"registrar/internal"
	"registrar/internal/util"
)

// ClassifyExpiry buckets an expiry date into its urgency category relative
// to now, both anchored to UTC+7 midnight. Pure function of its arguments;
// a missing or unparseable date is ExpiryUnknown, never an error.
func ClassifyExpiry(expiryDate string, now time.Time) internal.ExpiryStatus {
	expiry, ok := util.ParseDate(expiryDate)
	if !ok {
		return internal.ExpiryUnknown
	}

	today := util.Midnight(now)
	diff := util.Midnight(expiry).Sub(today)
	diffDays := int(math.Ceil(diff.Hours() / 24))

	switch {
	case diffDays < 0:
		return internal.ExpiryExpired
	case diffDays <= 7:
		return internal.ExpiryWithin7
	case diffDays <= 30:
		return internal.ExpiryWithin30
	default:
		return internal.ExpiryOK
	}
}

// NeedsAttention reports whether a status belongs in the expiring report.
func NeedsAttention(status internal.ExpiryStatus) bool {
	switch status {
	case internal.ExpiryExpired, internal.ExpiryWithin7, internal.ExpiryWithin30:
		return true
	default:
		return false
	}
}

// StatusRank orders statuses most-urgent-first for report sorting.
func StatusRank(status internal.ExpiryStatus) int {
	switch status {
	case internal.ExpiryExpired:
		return 0
	case internal.ExpiryWithin7:
		return 1
	case internal.ExpiryWithin30:
		return 2
	default:
		return 3
	}
}
