package analytics

import (
	"time"

	"subkeeper/internal/models"
)

// maxSteps bounds the recurrence walk. An anchor that cannot reach the
// reference within this many interval additions (a far-past anchor with a
// huge interval, or a corrupt non-positive interval that makes no forward
// progress) yields "no projection" instead of looping.
const maxSteps = 120

// addMonths advances a date by whole calendar months. time.Time.AddDate
// normalizes an overflowing day-of-month by rolling into the following month
// (Jan 31 + 1 month = Mar 2, or Mar 3 in a non-leap year). Repeated
// stepping compounds the rollover, so enumeration below always advances one
// interval at a time rather than jumping with a closed form.
func addMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// NextOccurrence computes the first occurrence on/after reference reachable
// from the subscription's anchor date by whole billing intervals. The second
// return is false when the anchor fails to parse or the step cap is hit;
// callers treat that as "no projection available" and exclude the
// subscription from forecasts, calendars and next-payment display.
func NextOccurrence(s models.Subscription, reference time.Time) (time.Time, bool) {
	next, ok := s.AnchorDate()
	if !ok {
		return time.Time{}, false
	}

	steps := 0
	for next.Before(reference) && steps < maxSteps {
		next = addMonths(next, s.Months)
		steps++
	}
	if steps >= maxSteps {
		return time.Time{}, false
	}

	return next, true
}

// advance moves an enumeration cursor one interval forward. The second
// return is false when the date did not move, which stops enumeration for
// degenerate non-positive intervals.
func advance(t time.Time, months int) (time.Time, bool) {
	next := addMonths(t, months)
	if !next.After(t) {
		return t, false
	}
	return next, true
}

// startOfMonth returns midnight UTC on the first day of t's month
func startOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthKey builds the stable bucket key for a forecast month, e.g. "2026-09"
func monthKey(t time.Time) string {
	u := t.UTC()
	return u.Format("2006-01")
}
