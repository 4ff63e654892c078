package planner

import "math"

// NormalizeDayPlan turns a possibly malformed draft into a canonical DayPlan.
// The draft may be a typed DayPlan, a pointer to one, or a decoded JSON value
// straight from the generator (map[string]any). Anything else degrades to the
// empty canonical shape; this function must never take the caller down with a
// foreign-shaped generator response.
//
// It is the single place that establishes the plan invariants: every item
// carries a finite PriceAmount >= 0 and TotalCost equals the sum of the
// items' amounts. An item that already carries a valid non-negative numeric
// override keeps it untouched regardless of its display price.
func NormalizeDayPlan(draft any) DayPlan {
	plan, ok := coerceDayPlan(draft)
	if !ok {
		return DayPlan{Schedule: []ScheduleItem{}}
	}

	if plan.Schedule == nil {
		plan.Schedule = []ScheduleItem{}
	}

	total := 0
	for i := range plan.Schedule {
		item := &plan.Schedule[i]
		if item.PriceAmount == nil || *item.PriceAmount < 0 {
			amount := ParsePrice(item.Price, PriceModeMid)
			item.PriceAmount = &amount
		}
		total += *item.PriceAmount
	}
	if total < 0 {
		total = 0
	}
	plan.TotalCost = total
	return plan
}

// NormalizeItinerary normalizes every day of an itinerary in place order.
func NormalizeItinerary(drafts []DayPlan) []DayPlan {
	out := make([]DayPlan, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, NormalizeDayPlan(d))
	}
	return out
}

func normalizeDrafts(drafts []any) []DayPlan {
	out := make([]DayPlan, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, NormalizeDayPlan(d))
	}
	return out
}

func coerceDayPlan(draft any) (DayPlan, bool) {
	switch v := draft.(type) {
	case DayPlan:
		return cloneDayPlan(v), true
	case *DayPlan:
		if v == nil {
			return DayPlan{}, false
		}
		return cloneDayPlan(*v), true
	case map[string]any:
		return decodeDayPlan(v), true
	default:
		return DayPlan{}, false
	}
}

// cloneDayPlan copies the schedule slice so normalization of a revision never
// mutates the caller's best-known-good plan.
func cloneDayPlan(p DayPlan) DayPlan {
	items := make([]ScheduleItem, len(p.Schedule))
	copy(items, p.Schedule)
	for i := range items {
		if items[i].PriceAmount != nil {
			amount := *items[i].PriceAmount
			items[i].PriceAmount = &amount
		}
	}
	p.Schedule = items
	return p
}

func decodeDayPlan(m map[string]any) DayPlan {
	plan := DayPlan{
		Day:      intField(m, "day"),
		Date:     stringField(m, "date"),
		Area:     stringField(m, "area"),
		Theme:    stringField(m, "theme"),
		Schedule: []ScheduleItem{},
	}

	rawSchedule, _ := m["schedule"].([]any)
	for _, raw := range rawSchedule {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := ScheduleItem{
			Time:         stringField(entry, "time"),
			ActivityName: stringField(entry, "activityName"),
			Type:         stringField(entry, "type"),
			Description:  stringField(entry, "description"),
			Price:        entry["price"],
			URL:          stringField(entry, "url"),
		}
		if f, ok := numberField(entry, "priceAmount"); ok && f >= 0 {
			amount := int(math.Floor(f))
			item.PriceAmount = &amount
		}
		if f, ok := numberField(entry, "latitude"); ok {
			lat := f
			item.Latitude = &lat
		}
		if f, ok := numberField(entry, "longitude"); ok {
			lng := f
			item.Longitude = &lng
		}
		plan.Schedule = append(plan.Schedule, item)
	}
	return plan
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	if f, ok := numberField(m, key); ok {
		return int(math.Floor(f))
	}
	return 0
}

func numberField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
