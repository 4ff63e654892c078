package planner

import (
	"context"
	"math"
)

// Reconciliation delegates content changes to an external revision function
// (the LLM-backed generator) and keeps the budget arithmetic and retry
// bookkeeping here. The reviser is trusted to respect the structural contract
// (day identity, one lodging item per day); its output is still re-normalized
// and shape-checked before being adopted, and a failing or malformed reviser
// never replaces the best-known-good plan.

// TripReviseFunc proposes a revised itinerary for the given state and target
// window. The returned value is a decoded JSON value; an object with a "days"
// sequence is the expected shape.
type TripReviseFunc func(ctx context.Context, req TripRevisionRequest) (any, error)

// DayReviseFunc proposes a revised single day. The returned value is a
// decoded JSON value; an object with a "schedule" sequence is the expected
// shape.
type DayReviseFunc func(ctx context.Context, req DayRevisionRequest) (any, error)

// RevisionItem is the stripped schedule view sent to the reviser. Prices are
// re-rendered as display strings; internal numeric fields are not exposed.
type RevisionItem struct {
	Time         string `json:"time"`
	ActivityName string `json:"activityName"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	URL          string `json:"url,omitempty"`
}

type RevisionDay struct {
	Day      int            `json:"day"`
	Date     string         `json:"date,omitempty"`
	Area     string         `json:"area,omitempty"`
	Theme    string         `json:"theme,omitempty"`
	Schedule []RevisionItem `json:"schedule"`
}

// TripRevisionRequest carries the current itinerary and the window the
// revision should land in.
type TripRevisionRequest struct {
	Days         []RevisionDay `json:"days"`
	PerDayBudget float64       `json:"perDayBudget"`
	TotalBudget  int           `json:"totalBudget"`
	MinTarget    int           `json:"minTarget"`
	MaxTarget    int           `json:"maxTarget"`
	CurrentTotal int           `json:"currentTotal"`
}

// DayRevisionRequest carries one day's fixed identity fields, its stripped
// schedule and the cap the revision must come in under.
type DayRevisionRequest struct {
	Day          int            `json:"day"`
	Date         string         `json:"date,omitempty"`
	Area         string         `json:"area,omitempty"`
	Theme        string         `json:"theme,omitempty"`
	Schedule     []RevisionItem `json:"schedule"`
	PerDayBudget float64        `json:"perDayBudget"`
	CurrentTotal int            `json:"currentTotal"`
}

// TripRevision is the typed form of a trip-level reviser response.
type TripRevision struct {
	Days []DayPlan `json:"days"`
}

const tripReconcileAttempts = 2

// TripReconcileInput configures one trip-level reconciliation pass.
// TargetMinRatio/TargetMaxRatio default to 0.8 and 1.0 when zero.
type TripReconcileInput struct {
	Revise         TripReviseFunc
	Itinerary      []DayPlan
	PerDayBudget   float64
	TargetMinRatio float64
	TargetMaxRatio float64
}

type TripReconcileResult struct {
	Itinerary []DayPlan
	Total     int
	MinTarget int
	MaxTarget int
	Converged bool
	Attempts  int
}

// ReconcileTrip pulls an itinerary's aggregate cost into the target ratio
// band of the total budget, asking the reviser for at most two revisions.
// It is a pure repair action: when the budget is unconstrained or the total
// already sits inside the window, the reviser is never called. Failure to
// converge is a reported outcome, not an error.
func ReconcileTrip(ctx context.Context, in TripReconcileInput) TripReconcileResult {
	itinerary := NormalizeItinerary(in.Itinerary)
	total := ItineraryTotal(itinerary)

	result := TripReconcileResult{Itinerary: itinerary, Total: total, Converged: true}

	if !isPositiveFinite(in.PerDayBudget) || len(itinerary) == 0 {
		return result
	}

	minRatio := in.TargetMinRatio
	if minRatio <= 0 {
		minRatio = DefaultTargetMinRatio
	}
	maxRatio := in.TargetMaxRatio
	if maxRatio <= 0 {
		maxRatio = DefaultTargetMaxRatio
	}

	totalBudget := in.PerDayBudget * float64(len(itinerary))
	if totalBudget <= 0 {
		return result
	}

	minTarget := int(math.Floor(totalBudget * minRatio))
	maxTarget := int(math.Floor(totalBudget * maxRatio))
	result.MinTarget = minTarget
	result.MaxTarget = maxTarget

	if total >= minTarget && total <= maxTarget {
		return result
	}
	result.Converged = false

	for attempt := 1; attempt <= tripReconcileAttempts; attempt++ {
		result.Attempts = attempt

		req := TripRevisionRequest{
			Days:         stripItinerary(itinerary),
			PerDayBudget: in.PerDayBudget,
			TotalBudget:  int(math.Floor(totalBudget)),
			MinTarget:    minTarget,
			MaxTarget:    maxTarget,
			CurrentTotal: total,
		}

		raw, err := in.Revise(ctx, req)
		if err != nil {
			break
		}
		days, ok := extractDays(raw)
		if !ok {
			break
		}

		itinerary = normalizeDrafts(days)
		total = ItineraryTotal(itinerary)
		result.Itinerary = itinerary
		result.Total = total

		if total >= minTarget && total <= maxTarget {
			result.Converged = true
			break
		}
	}

	return result
}

// DayReconcileInput configures one day-level repair pass. MaxAttempts
// defaults to 2 when zero.
type DayReconcileInput struct {
	Revise       DayReviseFunc
	Draft        any
	PerDayBudget float64
	MaxAttempts  int
}

type DayReconcileResult struct {
	Day       DayPlan
	Converged bool
	Attempts  int
}

// ReconcileDay forces one day under its per-day cap. Unlike the trip-level
// window this repair has only a ceiling: a day that is already compliant is
// returned untouched with zero reviser calls.
func ReconcileDay(ctx context.Context, in DayReconcileInput) DayReconcileResult {
	day := NormalizeDayPlan(in.Draft)
	result := DayReconcileResult{Day: day, Converged: true}

	if !isPositiveFinite(in.PerDayBudget) {
		return result
	}
	if float64(day.TotalCost) <= in.PerDayBudget {
		return result
	}
	result.Converged = false

	maxAttempts := in.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		req := DayRevisionRequest{
			Day:          day.Day,
			Date:         day.Date,
			Area:         day.Area,
			Theme:        day.Theme,
			Schedule:     stripDay(day).Schedule,
			PerDayBudget: in.PerDayBudget,
			CurrentTotal: day.TotalCost,
		}

		raw, err := in.Revise(ctx, req)
		if err != nil {
			break
		}
		draft, ok := extractDay(raw)
		if !ok {
			break
		}

		day = NormalizeDayPlan(draft)
		result.Day = day

		if float64(day.TotalCost) <= in.PerDayBudget {
			result.Converged = true
			break
		}
	}

	return result
}

func stripItinerary(itinerary []DayPlan) []RevisionDay {
	out := make([]RevisionDay, 0, len(itinerary))
	for _, day := range itinerary {
		out = append(out, stripDay(day))
	}
	return out
}

func stripDay(day DayPlan) RevisionDay {
	items := make([]RevisionItem, 0, len(day.Schedule))
	for _, item := range day.Schedule {
		amount := 0
		if item.PriceAmount != nil {
			amount = *item.PriceAmount
		}
		items = append(items, RevisionItem{
			Time:         item.Time,
			ActivityName: item.ActivityName,
			Type:         item.Type,
			Description:  item.Description,
			Price:        FormatYen(amount),
			URL:          item.URL,
		})
	}
	return RevisionDay{
		Day:      day.Day,
		Date:     day.Date,
		Area:     day.Area,
		Theme:    day.Theme,
		Schedule: items,
	}
}

// extractDays pulls the day sequence out of a trip-level reviser response.
// A nil value, a non-object, an object without a days sequence or an empty
// sequence all report false.
func extractDays(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case map[string]any:
		days, ok := v["days"].([]any)
		if !ok || len(days) == 0 {
			return nil, false
		}
		return days, true
	case TripRevision:
		return dayPlansToAny(v.Days)
	case *TripRevision:
		if v == nil {
			return nil, false
		}
		return dayPlansToAny(v.Days)
	case []DayPlan:
		return dayPlansToAny(v)
	default:
		return nil, false
	}
}

func dayPlansToAny(days []DayPlan) ([]any, bool) {
	if len(days) == 0 {
		return nil, false
	}
	out := make([]any, 0, len(days))
	for _, d := range days {
		out = append(out, d)
	}
	return out, true
}

// extractDay accepts a single-day reviser response when it carries a
// non-empty schedule sequence.
func extractDay(raw any) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case map[string]any:
		schedule, ok := v["schedule"].([]any)
		if !ok || len(schedule) == 0 {
			return nil, false
		}
		return v, true
	case DayPlan:
		if len(v.Schedule) == 0 {
			return nil, false
		}
		return v, true
	case *DayPlan:
		if v == nil || len(v.Schedule) == 0 {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}
