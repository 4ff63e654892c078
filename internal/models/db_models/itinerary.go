package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Itinerary struct {
	BaseModel
	AccountID    uuid.UUID `gorm:"index"`
	Destination  string
	StartDate    time.Time
	EndDate      time.Time
	PerDayBudget float64
	Interests    pq.StringArray `gorm:"type:text[]"`
	TotalCost    int
	BudgetMin    int
	BudgetMax    int
	Converged    bool

	Days []ItineraryDay `gorm:"foreignKey:ItineraryID"`
}

type ItineraryDay struct {
	BaseModel
	ItineraryID uuid.UUID `gorm:"index"`
	DayNumber   int
	Date        time.Time
	Area        string
	Theme       string
	TotalCost   int

	Items []ItineraryItem `gorm:"foreignKey:ItineraryDayID"`
}

type ItineraryItem struct {
	BaseModel
	ItineraryDayID uuid.UUID `gorm:"index"`
	Position       int
	Time           string
	ActivityName   string
	ActivityType   string
	Description    string
	// Raw price text exactly as the model produced it, e.g. "1,500円〜3,000円".
	PriceRaw    string
	PriceAmount int
	URL         string
	Latitude    *float64
	Longitude   *float64
}
