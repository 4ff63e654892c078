package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tabiplan/internal/models/db_models"
	"tabiplan/internal/models/request_models"
	"tabiplan/internal/planner"
	"tabiplan/internal/repositories"
	"tabiplan/pkg/utils"
)

type stubAIClient struct {
	discover   func(ctx context.Context, destination string, dayCount int, interests []string) (string, error)
	generate   func(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error)
	reviseDay  func(ctx context.Context, instruction, state string) (string, error)
	reviseTrip func(ctx context.Context, instruction, state string) (string, error)

	tripReviseCalls int
}

func (s *stubAIClient) DiscoverAreas(ctx context.Context, destination string, dayCount int, interests []string) (string, error) {
	if s.discover == nil {
		return "", errors.New("unexpected DiscoverAreas call")
	}
	return s.discover(ctx, destination, dayCount, interests)
}

func (s *stubAIClient) GenerateDayPlan(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error) {
	if s.generate == nil {
		return "", errors.New("unexpected GenerateDayPlan call")
	}
	return s.generate(ctx, prompt)
}

func (s *stubAIClient) ReviseDayPlan(ctx context.Context, instruction, state string) (string, error) {
	if s.reviseDay == nil {
		return "", errors.New("unexpected ReviseDayPlan call")
	}
	return s.reviseDay(ctx, instruction, state)
}

func (s *stubAIClient) ReviseTripPlan(ctx context.Context, instruction, state string) (string, error) {
	s.tripReviseCalls++
	if s.reviseTrip == nil {
		return "", errors.New("unexpected ReviseTripPlan call")
	}
	return s.reviseTrip(ctx, instruction, state)
}

func (s *stubAIClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return pgvector.Vector{}, errors.New("embeddings disabled")
}

func (s *stubAIClient) Close() error { return nil }

type fakeItineraryRepo struct {
	savedPlan  *repositories.MaterializedPlan
	savedInput *repositories.CreateItineraryInput
	detail     *db_models.Itinerary
	list       []db_models.Itinerary
	count      int64
	id         uuid.UUID
}

func (f *fakeItineraryRepo) ReplaceMaterializedItinerary(ctx context.Context, itineraryID *uuid.UUID, plan *repositories.MaterializedPlan, createIn *repositories.CreateItineraryInput) (uuid.UUID, error) {
	f.savedPlan = plan
	f.savedInput = createIn
	if f.id == uuid.Nil {
		f.id = uuid.New()
	}
	return f.id, nil
}

func (f *fakeItineraryRepo) GetDetailsOfItineraryById(ctx context.Context, itineraryId string) (*db_models.Itinerary, error) {
	return f.detail, nil
}

func (f *fakeItineraryRepo) GetListOfItinerariesByAccountId(ctx context.Context, page int, pagesize int, accountId string) ([]db_models.Itinerary, error) {
	return f.list, nil
}

func (f *fakeItineraryRepo) CountItinerariesByAccountId(ctx context.Context, accountId string) (int64, error) {
	return f.count, nil
}

type fakeAreaRepo struct {
	upserted []string
}

func (f *fakeAreaRepo) GetAreasByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.AreaEmbedding, error) {
	return nil, nil
}

func (f *fakeAreaRepo) UpsertArea(ctx context.Context, area db_models.AreaEmbedding) error {
	f.upserted = append(f.upserted, area.Name)
	return nil
}

type noopGeoService struct {
	enrichedFor []string
}

func (n *noopGeoService) EnrichDayPlans(ctx context.Context, destination string, days []planner.DayPlan) {
	n.enrichedFor = append(n.enrichedFor, destination)
}

func dayPlanJSON(day int, date, price string) string {
	return fmt.Sprintf(`{
		"day": %d,
		"date": %q,
		"area": "Asakusa",
		"theme": "old town",
		"schedule": [
			{"time":"09:00","activityName":"Morning walk","type":"activity","price":"無料"},
			{"time":"12:00","activityName":"Lunch","type":"meal","price":%q}
		]
	}`, day, date, price)
}

const areasJSON = `{"areas":[{"name":"Asakusa","reason":"old town"},{"name":"Shibuya","reason":"nightlife"}]}`

func newTestItineraryService(ai *stubAIClient, repo *fakeItineraryRepo) (ItineraryServiceInterface, *noopGeoService) {
	geo := &noopGeoService{}
	svc := NewItineraryService(ai, repo, &fakeAreaRepo{}, geo, zap.NewNop())
	return svc, geo
}

func TestCreateItineraryHappyPath(t *testing.T) {
	ai := &stubAIClient{
		discover: func(ctx context.Context, destination string, dayCount int, interests []string) (string, error) {
			assert.Equal(t, "Tokyo", destination)
			assert.Equal(t, 2, dayCount)
			return areasJSON, nil
		},
		generate: func(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error) {
			return dayPlanJSON(prompt.Day, prompt.Date, "1,000円"), nil
		},
	}
	repo := &fakeItineraryRepo{}
	svc, geo := newTestItineraryService(ai, repo)

	accountID := uuid.New().String()
	resp, err := svc.CreateItinerary(context.Background(), accountID, request_models.CreateItineraryRequest{
		Destination:  "Tokyo",
		StartDate:    "2026-04-01",
		EndDate:      "2026-04-02",
		PerDayBudget: 1250,
		Interests:    []string{"food", "temples"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	// Each day costs 1,000 yen so the trip total of 2,000 already sits inside
	// the [2000, 2500] window and no revision happens.
	assert.Equal(t, 2000, resp.TotalCost)
	assert.Equal(t, 2000, resp.BudgetMin)
	assert.Equal(t, 2500, resp.BudgetMax)
	assert.True(t, resp.Converged)
	assert.Zero(t, ai.tripReviseCalls)

	require.Len(t, resp.Days, 2)
	assert.Equal(t, 1, resp.Days[0].Day)
	assert.Equal(t, "2026-04-01", resp.Days[0].Date)
	assert.Equal(t, 2, resp.Days[1].Day)
	assert.Equal(t, "2026-04-02", resp.Days[1].Date)
	assert.Equal(t, 1000, resp.Days[0].TotalCost)

	require.NotNil(t, repo.savedPlan)
	assert.Equal(t, 2000, repo.savedPlan.TotalCost)
	require.NotNil(t, repo.savedInput)
	assert.Equal(t, accountID, repo.savedInput.AccountID.String())
	assert.Equal(t, []string{"Tokyo"}, geo.enrichedFor)
}

func TestCreateItineraryTripRevision(t *testing.T) {
	revised := fmt.Sprintf(`{"days":[%s,%s]}`,
		dayPlanJSON(1, "2026-04-01", "8,000円"),
		dayPlanJSON(2, "2026-04-02", "8,000円"))

	ai := &stubAIClient{
		discover: func(ctx context.Context, destination string, dayCount int, interests []string) (string, error) {
			return areasJSON, nil
		},
		generate: func(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error) {
			// Cheap days, well under the per-day cap but below the trip window.
			return dayPlanJSON(prompt.Day, prompt.Date, "1,000円"), nil
		},
		reviseTrip: func(ctx context.Context, instruction, state string) (string, error) {
			return revised, nil
		},
	}
	repo := &fakeItineraryRepo{}
	svc, _ := newTestItineraryService(ai, repo)

	resp, err := svc.CreateItinerary(context.Background(), uuid.New().String(), request_models.CreateItineraryRequest{
		Destination:  "Kyoto",
		StartDate:    "2026-04-01",
		EndDate:      "2026-04-02",
		PerDayBudget: 10000,
	})
	require.NoError(t, err)

	// Window is [16000, 20000]; the 2,000 yen draft gets revised to 16,000.
	assert.Equal(t, 1, ai.tripReviseCalls)
	assert.Equal(t, 16000, resp.TotalCost)
	assert.True(t, resp.Converged)
}

func TestCreateItineraryDayFailureDegradesToEmptyDay(t *testing.T) {
	ai := &stubAIClient{
		discover: func(ctx context.Context, destination string, dayCount int, interests []string) (string, error) {
			return areasJSON, nil
		},
		generate: func(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error) {
			if prompt.Day == 2 {
				return "", errors.New("model unavailable")
			}
			return dayPlanJSON(prompt.Day, prompt.Date, "1,000円"), nil
		},
	}
	repo := &fakeItineraryRepo{}
	svc, _ := newTestItineraryService(ai, repo)

	resp, err := svc.CreateItinerary(context.Background(), uuid.New().String(), request_models.CreateItineraryRequest{
		Destination: "Osaka",
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-02",
	})
	require.NoError(t, err)

	require.Len(t, resp.Days, 2)
	assert.Empty(t, resp.Days[1].Schedule)
	assert.Equal(t, 0, resp.Days[1].TotalCost)
	assert.Equal(t, "2026-04-02", resp.Days[1].Date)
	assert.Equal(t, 1000, resp.TotalCost)
}

func TestCreateItineraryRejectsBadInput(t *testing.T) {
	svc, _ := newTestItineraryService(&stubAIClient{}, &fakeItineraryRepo{})

	_, err := svc.CreateItinerary(context.Background(), "not-a-uuid", request_models.CreateItineraryRequest{
		Destination: "Tokyo",
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-02",
	})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = svc.CreateItinerary(context.Background(), uuid.New().String(), request_models.CreateItineraryRequest{
		Destination: "Tokyo",
		StartDate:   "2026-04-05",
		EndDate:     "2026-04-01",
	})
	assert.ErrorIs(t, err, utils.ErrInvalidDateRange)

	_, err = svc.CreateItinerary(context.Background(), uuid.New().String(), request_models.CreateItineraryRequest{
		Destination: "Tokyo",
		StartDate:   "04/01/2026",
		EndDate:     "2026-04-02",
	})
	assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
}

func TestGetItineraryByIdNotFound(t *testing.T) {
	svc, _ := newTestItineraryService(&stubAIClient{}, &fakeItineraryRepo{})

	_, err := svc.GetItineraryById(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, utils.ErrItineraryNotFound)

	_, err = svc.GetItineraryById(context.Background(), "garbage")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestGetItineraryByIdMapsStoredRows(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	stored := &db_models.Itinerary{
		Destination:  "Tokyo",
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, jst),
		EndDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, jst),
		PerDayBudget: 10000,
		TotalCost:    9500,
		BudgetMin:    8000,
		BudgetMax:    10000,
		Converged:    true,
		Days: []db_models.ItineraryDay{
			{
				DayNumber: 1,
				Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, jst),
				Area:      "Asakusa",
				TotalCost: 9500,
				Items: []db_models.ItineraryItem{
					{
						Position:     0,
						Time:         "09:00",
						ActivityName: "Senso-ji",
						ActivityType: "activity",
						PriceRaw:     "無料",
						PriceAmount:  0,
					},
					{
						Position:     1,
						Time:         "19:00",
						ActivityName: "Dinner",
						ActivityType: "meal",
						PriceRaw:     "9,500円",
						PriceAmount:  9500,
					},
				},
			},
		},
	}
	stored.ID = uuid.New()

	svc, _ := newTestItineraryService(&stubAIClient{}, &fakeItineraryRepo{detail: stored})

	resp, err := svc.GetItineraryById(context.Background(), stored.ID.String())
	require.NoError(t, err)

	assert.Equal(t, stored.ID.String(), resp.ID)
	assert.Equal(t, "2026-04-01", resp.StartDate)
	require.Len(t, resp.Days, 1)
	require.Len(t, resp.Days[0].Schedule, 2)

	item := resp.Days[0].Schedule[1]
	assert.Equal(t, "9,500円", item.Price)
	require.NotNil(t, item.PriceAmount)
	assert.Equal(t, 9500, *item.PriceAmount)
}

func TestGetItinerariesByAccountValidatesPaging(t *testing.T) {
	svc, _ := newTestItineraryService(&stubAIClient{}, &fakeItineraryRepo{})
	accountId := uuid.New().String()

	_, err := svc.GetItinerariesByAccount(context.Background(), accountId, 0, 10)
	assert.ErrorIs(t, err, utils.ErrInvalidPage)

	_, err = svc.GetItinerariesByAccount(context.Background(), accountId, 1, 101)
	assert.ErrorIs(t, err, utils.ErrInvalidPageSize)
}

func TestGetItinerariesByAccountBuildsSummaries(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	row := db_models.Itinerary{
		Destination: "Sapporo",
		StartDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, jst),
		EndDate:     time.Date(2026, 2, 3, 0, 0, 0, 0, jst),
		TotalCost:   42000,
	}
	row.ID = uuid.New()

	svc, _ := newTestItineraryService(&stubAIClient{}, &fakeItineraryRepo{
		list:  []db_models.Itinerary{row},
		count: 7,
	})

	resp, err := svc.GetItinerariesByAccount(context.Background(), uuid.New().String(), 1, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Sapporo", resp.Items[0].Destination)
	assert.Equal(t, 3, resp.Items[0].DayCount)
	assert.Equal(t, 42000, resp.Items[0].TotalCost)
}
