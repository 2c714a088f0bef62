// Package dates is the single normalization boundary for calendar dates.
// Every date that crosses the remote accessor is reduced to one shape here;
// no other package may produce its own date representation.
package dates

import (
	"time"
)

// LocalMidnight returns t truncated to 00:00:00 in t's own location.
func LocalMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Normalize maps an optional date to local midnight. A nil input stays nil.
func Normalize(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	midnight := LocalMidnight(*t)
	return &midnight
}

// SameCalendarDay reports whether a and b fall on the same year, month and
// day. This is a calendar comparison, not an elapsed-24h one.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
