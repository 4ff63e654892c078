package response_models

import (
	"tabiplan/internal/planner"
)

type ItineraryResponse struct {
	ID           string            `json:"id"`
	Destination  string            `json:"destination"`
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	PerDayBudget float64           `json:"per_day_budget"`
	Interests    []string          `json:"interests"`
	Days         []planner.DayPlan `json:"days"`
	TotalCost    int               `json:"total_cost"`
	// Budget window the reconciler targeted; both zero when unconstrained.
	BudgetMin int  `json:"budget_min"`
	BudgetMax int  `json:"budget_max"`
	Converged bool `json:"converged"`
}

type ItinerarySummaryResponse struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TotalCost   int    `json:"total_cost"`
	DayCount    int    `json:"day_count"`
	CreatedAt   string `json:"created_at"`
}

type PagedItinerariesResponse struct {
	Items    []ItinerarySummaryResponse `json:"items"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Total    int64                      `json:"total"`
}
