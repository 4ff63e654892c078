package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"tabiplan/internal/models/request_models"
)

// PlannerAIInterface is the generator behind itinerary planning. All
// generation calls return raw JSON text; callers decode and normalize it
// themselves, so a misbehaving model can never crash the planning pipeline.
type PlannerAIInterface interface {
	DiscoverAreas(ctx context.Context, destination string, dayCount int, interests []string) (string, error)
	GenerateDayPlan(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error)

	// Revision calls take a system instruction plus the current plan state as
	// JSON and return a revised plan as JSON.
	ReviseDayPlan(ctx context.Context, systemInstruction string, currentStateJSON string) (string, error)
	ReviseTripPlan(ctx context.Context, systemInstruction string, currentStateJSON string) (string, error)

	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Close() error
}

// NewPlannerAIClient creates an OpenAI or Gemini backed client based on config.
func NewPlannerAIClient(provider, apiKey, model string) (PlannerAIInterface, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIPlannerClient(apiKey, model), nil
	case "gemini":
		return NewGeminiPlannerClient(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

const dayPlanSchema = `
{
  "day": 1,
  "date": "2026-04-01",
  "area": "Asakusa",
  "theme": "old Tokyo",
  "schedule": [
    {"time":"09:00","activityName":"Senso-ji","type":"activity","description":"...","price":"無料","url":""},
    {"time":"12:00","activityName":"Lunch","type":"meal","description":"...","price":"1,500円〜3,000円","url":""}
  ]
}`

const areaListSchema = `
{"areas":[{"name":"Asakusa","reason":"..."},{"name":"Shibuya","reason":"..."}]}`

func buildDayPlanPrompt(p request_models.DayPlanPrompt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan day %d of a trip to %s. Return **JSON only** matching the schema below.\n", p.Day, p.Destination)
	if p.Area != "" {
		fmt.Fprintf(&b, "The day is spent around %s.\n", p.Area)
	}
	if p.Theme != "" {
		fmt.Fprintf(&b, "Theme: %s.\n", p.Theme)
	}
	if p.Date != "" {
		fmt.Fprintf(&b, "Date: %s.\n", p.Date)
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(&b, "Traveler interests: %s.\n", strings.Join(p.Interests, ", "))
	}
	if p.PerDayBudget > 0 {
		fmt.Fprintf(&b, "Keep the day's total cost at or below %.0f yen.\n", p.PerDayBudget)
	}

	b.WriteString(`
Schema (match keys exactly):`)
	b.WriteString(dayPlanSchema)
	b.WriteString(`

Hard constraints:
- "type" is one of activity|meal|hotel|travel.
- At most one hotel item; schedule ordered by time of day; times formatted HH:MM.
- "price" is a display string in yen; ranges like "1,500円〜3,000円" are fine; use "無料" for free.
- Return JSON only. No comments, no markdown.
`)
	return b.String()
}

func buildAreaPrompt(destination string, dayCount int, interests []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d distinct areas or neighborhoods for a %d-day trip to %s, one per day, ordered for minimal backtracking.\n",
		dayCount, dayCount, destination)
	if len(interests) > 0 {
		fmt.Fprintf(&b, "Traveler interests: %s.\n", strings.Join(interests, ", "))
	}
	b.WriteString("Return **JSON only** matching this schema:")
	b.WriteString(areaListSchema)
	b.WriteString("\nNo comments, no markdown.\n")
	return b.String()
}

func buildRevisionPrompt(systemInstruction, currentStateJSON string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nCurrent plan state (JSON):\n")
	b.WriteString(currentStateJSON)
	b.WriteString("\n\nReturn the revised plan as JSON only, same schema as the input days/schedule. No comments, no markdown.\n")
	return b.String()
}
