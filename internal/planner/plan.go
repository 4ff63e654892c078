package planner

import "math"

// ScheduleItem is one bookable unit inside a day: a meal, an activity, a
// lodging stay or a transit leg. Price keeps whatever the generator sent
// (display string or number); PriceAmount is the canonical yen amount and is
// non-nil and >= 0 once the item went through NormalizeDayPlan.
type ScheduleItem struct {
	Time         string   `json:"time"`
	ActivityName string   `json:"activityName"`
	Type         string   `json:"type"`
	Description  string   `json:"description,omitempty"`
	Price        any      `json:"price,omitempty"`
	PriceAmount  *int     `json:"priceAmount,omitempty"`
	URL          string   `json:"url,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// DayPlan is one calendar day of an itinerary. Schedule order is the
// time-of-day order. TotalCost equals the sum of the items' PriceAmount
// after normalization.
type DayPlan struct {
	Day       int            `json:"day"`
	Date      string         `json:"date,omitempty"`
	Area      string         `json:"area,omitempty"`
	Theme     string         `json:"theme,omitempty"`
	Schedule  []ScheduleItem `json:"schedule"`
	TotalCost int            `json:"totalCost"`
}

// Item types the generator is asked to produce.
const (
	ItemTypeActivity = "activity"
	ItemTypeMeal     = "meal"
	ItemTypeHotel    = "hotel"
	ItemTypeTravel   = "travel"
)

// Default target ratio band for trip-level reconciliation.
const (
	DefaultTargetMinRatio = 0.8
	DefaultTargetMaxRatio = 1.0
)

// ItineraryTotal sums the day totals of a normalized itinerary.
func ItineraryTotal(itinerary []DayPlan) int {
	total := 0
	for _, day := range itinerary {
		total += day.TotalCost
	}
	if total < 0 {
		return 0
	}
	return total
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
