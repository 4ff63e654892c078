package request_models

type CreateItineraryRequest struct {
	Destination string `json:"destination" binding:"required,min=2"`
	// ISO dates in JST, e.g. "2026-04-01".
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	PerDayBudget float64  `json:"per_day_budget"`
	Interests    []string `json:"interests"`
}

// DayPlanPrompt carries everything the model needs to draft one day.
type DayPlanPrompt struct {
	Destination  string   `json:"destination"`
	Day          int      `json:"day"`
	Date         string   `json:"date"`
	Area         string   `json:"area"`
	Theme        string   `json:"theme"`
	PerDayBudget float64  `json:"per_day_budget"`
	Interests    []string `json:"interests"`
}
