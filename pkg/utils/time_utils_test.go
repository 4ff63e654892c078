package utils

import (
	"testing"
	"time"
)

func TestTripDayCount(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "2026-04-01", "2026-04-01", 1},
		{"weekend", "2026-04-03", "2026-04-05", 3},
		{"end before start", "2026-04-05", "2026-04-01", 0},
		{"across month boundary", "2026-03-30", "2026-04-02", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := ParseISODateJST(tt.start)
			if err != nil {
				t.Fatalf("parse start: %v", err)
			}
			end, err := ParseISODateJST(tt.end)
			if err != nil {
				t.Fatalf("parse end: %v", err)
			}
			if got := TripDayCount(start, end); got != tt.want {
				t.Errorf("TripDayCount(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestTripDayCountIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, 4, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2026, 4, 2, 0, 15, 0, 0, time.UTC)

	// 23:30 UTC is already April 2nd in Japan; both instants fall on the same JST day.
	if got := TripDayCount(start, end); got != 1 {
		t.Errorf("TripDayCount = %d, want 1", got)
	}
}

func TestParseISODateJST(t *testing.T) {
	parsed, err := ParseISODateJST("2026-04-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatISODateJST(parsed); got != "2026-04-01" {
		t.Errorf("round trip = %q, want %q", got, "2026-04-01")
	}
	if parsed.Hour() != 0 || parsed.Minute() != 0 {
		t.Errorf("expected midnight, got %v", parsed)
	}

	if _, err := ParseISODateJST("04/01/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestMidnightJST(t *testing.T) {
	// 2026-04-01 20:00 UTC is 2026-04-02 05:00 JST.
	input := time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC)
	got := MidnightJST(input)

	if FormatISODateJST(got) != "2026-04-02" {
		t.Errorf("MidnightJST date = %q, want 2026-04-02", FormatISODateJST(got))
	}
	if got.Hour() != 0 {
		t.Errorf("expected midnight, got hour %d", got.Hour())
	}
}
