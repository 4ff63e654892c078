package utils

import "time"

// Japan time (JST, +09:00, no DST).
var jstLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*3600)
}()

// FromUnixSecondsJST converts an epoch value in seconds to Japan time.
// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsJST(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(jstLoc)
}

func FormatRFC3339JST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(jstLoc).Format(time.RFC3339)
}

// FormatISODateJST renders the calendar date ("2006-01-02") in Japan time.
func FormatISODateJST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(jstLoc).Format("2006-01-02")
}

// ParseISODateJST parses a "2006-01-02" date as Japan-time midnight.
func ParseISODateJST(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, jstLoc)
}

// MidnightJST truncates a timestamp to its Japan-time midnight.
func MidnightJST(t time.Time) time.Time {
	local := t.In(jstLoc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, jstLoc)
}

// TripDayCount is the inclusive number of calendar days between two dates in
// Japan time; same-day trips count as one day.
func TripDayCount(start, end time.Time) int {
	s := MidnightJST(start)
	e := MidnightJST(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}
