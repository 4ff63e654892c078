package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tabiplan/internal/models/db_models"
	"tabiplan/internal/models/request_models"
	"tabiplan/internal/models/response_models"
	"tabiplan/internal/planner"
	"tabiplan/internal/repositories"
	"tabiplan/pkg/utils"
)

const maxTripDays = 30

const dayRevisionInstruction = `The day below costs more than its per-day budget.
Revise the schedule so the day's total cost is at or below "perDayBudget".
Swap expensive items for cheaper alternatives rather than emptying the day.
Keep the same day number, date, area and theme.`

const tripRevisionInstruction = `The itinerary below misses its budget window.
Revise the days so the combined cost lands between "minTarget" and "maxTarget" yen.
Swap items rather than deleting whole days; keep day numbers, dates and areas.`

type ItineraryServiceInterface interface {
	CreateItinerary(ctx context.Context, accountId string, request request_models.CreateItineraryRequest) (*response_models.ItineraryResponse, error)
	GetItineraryById(ctx context.Context, itineraryId string) (*response_models.ItineraryResponse, error)
	GetItinerariesByAccount(ctx context.Context, accountId string, page int, pageSize int) (*response_models.PagedItinerariesResponse, error)
}

type ItineraryService struct {
	aiClient      utils.PlannerAIInterface
	itineraryRepo repositories.ItineraryRepository
	areaRepo      repositories.IAreaRepository
	geoService    GeoServiceInterface
	logger        *zap.Logger
}

func NewItineraryService(
	aiClient utils.PlannerAIInterface,
	itineraryRepo repositories.ItineraryRepository,
	areaRepo repositories.IAreaRepository,
	geoService GeoServiceInterface,
	logger *zap.Logger,
) ItineraryServiceInterface {
	return &ItineraryService{
		aiClient:      aiClient,
		itineraryRepo: itineraryRepo,
		areaRepo:      areaRepo,
		geoService:    geoService,
		logger:        logger,
	}
}

type areaSuggestion struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (s *ItineraryService) CreateItinerary(ctx context.Context, accountId string, request request_models.CreateItineraryRequest) (*response_models.ItineraryResponse, error) {
	accountUUID, err := uuid.Parse(accountId)
	if err != nil {
		return nil, utils.ErrInvalidInput
	}

	start, err := utils.ParseISODateJST(request.StartDate)
	if err != nil {
		return nil, utils.ErrInvalidDateRange
	}
	end, err := utils.ParseISODateJST(request.EndDate)
	if err != nil {
		return nil, utils.ErrInvalidDateRange
	}

	dayCount := utils.TripDayCount(start, end)
	if dayCount < 1 || dayCount > maxTripDays {
		return nil, utils.ErrInvalidDateRange
	}

	areas := s.discoverAreas(ctx, request.Destination, dayCount, request.Interests)

	drafts := s.generateDays(ctx, request, areas, dayCount)

	tripResult := planner.ReconcileTrip(ctx, planner.TripReconcileInput{
		Revise:       s.tripReviseFunc(),
		Itinerary:    drafts,
		PerDayBudget: request.PerDayBudget,
	})

	itinerary := tripResult.Itinerary
	restoreDayIdentity(itinerary, start)

	s.geoService.EnrichDayPlans(ctx, request.Destination, itinerary)

	// Identity restoration and enrichment do not touch prices, so totals
	// computed by the reconciler stay valid.
	plan := &repositories.MaterializedPlan{
		Days:      itinerary,
		TotalCost: tripResult.Total,
		BudgetMin: tripResult.MinTarget,
		BudgetMax: tripResult.MaxTarget,
		Converged: tripResult.Converged,
	}

	itineraryID, err := s.itineraryRepo.ReplaceMaterializedItinerary(ctx, nil, plan, &repositories.CreateItineraryInput{
		AccountID:    accountUUID,
		Destination:  request.Destination,
		StartDate:    start,
		EndDate:      end,
		PerDayBudget: request.PerDayBudget,
		Interests:    request.Interests,
	})
	if err != nil {
		s.logger.Error("failed to persist itinerary", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	if !tripResult.Converged {
		s.logger.Warn("itinerary did not converge into budget window",
			zap.String("itinerary_id", itineraryID.String()),
			zap.Int("total", tripResult.Total),
			zap.Int("min_target", tripResult.MinTarget),
			zap.Int("max_target", tripResult.MaxTarget),
			zap.Int("attempts", tripResult.Attempts))
	}

	return &response_models.ItineraryResponse{
		ID:           itineraryID.String(),
		Destination:  request.Destination,
		StartDate:    utils.FormatISODateJST(start),
		EndDate:      utils.FormatISODateJST(end),
		PerDayBudget: request.PerDayBudget,
		Interests:    request.Interests,
		Days:         itinerary,
		TotalCost:    tripResult.Total,
		BudgetMin:    tripResult.MinTarget,
		BudgetMax:    tripResult.MaxTarget,
		Converged:    tripResult.Converged,
	}, nil
}

// discoverAreas prefers areas already embedded for this destination and
// falls back to asking the model. Any failure degrades to unnamed areas
// rather than aborting the trip.
func (s *ItineraryService) discoverAreas(ctx context.Context, destination string, dayCount int, interests []string) []areaSuggestion {
	if cached := s.areasFromEmbeddings(ctx, destination, dayCount, interests); len(cached) >= dayCount {
		return cached[:dayCount]
	}

	raw, err := s.aiClient.DiscoverAreas(ctx, destination, dayCount, interests)
	if err != nil {
		s.logger.Warn("area discovery failed", zap.String("destination", destination), zap.Error(err))
		return make([]areaSuggestion, dayCount)
	}

	var decoded struct {
		Areas []areaSuggestion `json:"areas"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil || len(decoded.Areas) == 0 {
		s.logger.Warn("area discovery returned unusable JSON", zap.String("destination", destination))
		return make([]areaSuggestion, dayCount)
	}

	s.storeAreaEmbeddings(ctx, destination, decoded.Areas)

	areas := decoded.Areas
	for len(areas) < dayCount {
		// Fewer areas than days: cycle through them.
		areas = append(areas, areas[len(areas)%len(decoded.Areas)])
	}
	return areas[:dayCount]
}

func (s *ItineraryService) areasFromEmbeddings(ctx context.Context, destination string, dayCount int, interests []string) []areaSuggestion {
	query := destination
	if len(interests) > 0 {
		query += " " + strings.Join(interests, " ")
	}

	vector, err := s.aiClient.GetEmbedding(ctx, query)
	if err != nil {
		return nil
	}

	stored, err := s.areaRepo.GetAreasByVector(ctx, vector, dayCount)
	if err != nil {
		s.logger.Debug("area vector lookup failed", zap.Error(err))
		return nil
	}

	out := make([]areaSuggestion, 0, len(stored))
	for _, a := range stored {
		if a.Destination != "" && !strings.EqualFold(a.Destination, destination) {
			continue
		}
		out = append(out, areaSuggestion{Name: a.Name, Reason: a.Description})
	}
	return out
}

func (s *ItineraryService) storeAreaEmbeddings(ctx context.Context, destination string, areas []areaSuggestion) {
	for _, area := range areas {
		if area.Name == "" {
			continue
		}
		vector, err := s.aiClient.GetEmbedding(ctx, destination+" "+area.Name+" "+area.Reason)
		if err != nil {
			continue
		}
		record := db_models.AreaEmbedding{
			AreaID:      strings.ToLower(destination + "/" + area.Name),
			Destination: destination,
			Name:        area.Name,
			Description: area.Reason,
			Embedding:   vector,
		}
		if err := s.areaRepo.UpsertArea(ctx, record); err != nil {
			s.logger.Debug("area embedding upsert failed", zap.String("area", area.Name), zap.Error(err))
		}
	}
}

// generateDays drafts every day concurrently and waits for all of them. A
// day whose generation fails becomes an empty plan so the trip survives
// partial model outages.
func (s *ItineraryService) generateDays(ctx context.Context, request request_models.CreateItineraryRequest, areas []areaSuggestion, dayCount int) []planner.DayPlan {
	start, _ := utils.ParseISODateJST(request.StartDate)

	days := make([]planner.DayPlan, dayCount)
	var wg sync.WaitGroup

	for i := 0; i < dayCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			prompt := request_models.DayPlanPrompt{
				Destination:  request.Destination,
				Day:          idx + 1,
				Date:         utils.FormatISODateJST(start.AddDate(0, 0, idx)),
				Area:         areas[idx].Name,
				Theme:        areas[idx].Reason,
				PerDayBudget: request.PerDayBudget,
				Interests:    request.Interests,
			}

			days[idx] = s.generateSingleDay(ctx, prompt)
		}(i)
	}

	wg.Wait()
	return days
}

func (s *ItineraryService) generateSingleDay(ctx context.Context, prompt request_models.DayPlanPrompt) planner.DayPlan {
	raw, err := s.aiClient.GenerateDayPlan(ctx, prompt)
	if err != nil {
		s.logger.Warn("day generation failed", zap.Int("day", prompt.Day), zap.Error(err))
		return emptyDay(prompt)
	}

	var draft any
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		s.logger.Warn("day generation returned unusable JSON", zap.Int("day", prompt.Day))
		return emptyDay(prompt)
	}

	result := planner.ReconcileDay(ctx, planner.DayReconcileInput{
		Revise:       s.dayReviseFunc(),
		Draft:        draft,
		PerDayBudget: prompt.PerDayBudget,
	})

	day := result.Day
	if day.Day == 0 {
		day.Day = prompt.Day
	}
	if day.Date == "" {
		day.Date = prompt.Date
	}
	if day.Area == "" {
		day.Area = prompt.Area
	}
	return day
}

func emptyDay(prompt request_models.DayPlanPrompt) planner.DayPlan {
	return planner.DayPlan{
		Day:      prompt.Day,
		Date:     prompt.Date,
		Area:     prompt.Area,
		Theme:    prompt.Theme,
		Schedule: []planner.ScheduleItem{},
	}
}

func (s *ItineraryService) dayReviseFunc() planner.DayReviseFunc {
	return func(ctx context.Context, req planner.DayRevisionRequest) (any, error) {
		state, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		raw, err := s.aiClient.ReviseDayPlan(ctx, dayRevisionInstruction, string(state))
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	}
}

func (s *ItineraryService) tripReviseFunc() planner.TripReviseFunc {
	return func(ctx context.Context, req planner.TripRevisionRequest) (any, error) {
		state, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		raw, err := s.aiClient.ReviseTripPlan(ctx, tripRevisionInstruction, string(state))
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	}
}

// restoreDayIdentity reasserts day numbers and dates after revisions; a
// reviser that reorders or renumbers days does not get to corrupt the
// calendar.
func restoreDayIdentity(days []planner.DayPlan, start time.Time) {
	for i := range days {
		days[i].Day = i + 1
		days[i].Date = utils.FormatISODateJST(start.AddDate(0, 0, i))
	}
}

func (s *ItineraryService) GetItineraryById(ctx context.Context, itineraryId string) (*response_models.ItineraryResponse, error) {
	if _, err := uuid.Parse(itineraryId); err != nil {
		return nil, utils.ErrInvalidInput
	}

	it, err := s.itineraryRepo.GetDetailsOfItineraryById(ctx, itineraryId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if it == nil {
		return nil, utils.ErrItineraryNotFound
	}

	return buildItineraryResponse(it), nil
}

func (s *ItineraryService) GetItinerariesByAccount(ctx context.Context, accountId string, page int, pageSize int) (*response_models.PagedItinerariesResponse, error) {
	if _, err := uuid.Parse(accountId); err != nil {
		return nil, utils.ErrInvalidInput
	}
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	itineraries, err := s.itineraryRepo.GetListOfItinerariesByAccountId(ctx, page, pageSize, accountId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	total, err := s.itineraryRepo.CountItinerariesByAccountId(ctx, accountId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	items := make([]response_models.ItinerarySummaryResponse, 0, len(itineraries))
	for _, it := range itineraries {
		items = append(items, response_models.ItinerarySummaryResponse{
			ID:          it.ID.String(),
			Destination: it.Destination,
			StartDate:   utils.FormatISODateJST(it.StartDate),
			EndDate:     utils.FormatISODateJST(it.EndDate),
			TotalCost:   it.TotalCost,
			DayCount:    utils.TripDayCount(it.StartDate, it.EndDate),
			CreatedAt:   utils.FormatRFC3339JST(utils.FromUnixSecondsJST(it.CreatedAt)),
		})
	}

	return &response_models.PagedItinerariesResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func buildItineraryResponse(it *db_models.Itinerary) *response_models.ItineraryResponse {
	days := make([]planner.DayPlan, 0, len(it.Days))
	for _, d := range it.Days {
		schedule := make([]planner.ScheduleItem, 0, len(d.Items))
		for _, item := range d.Items {
			amount := item.PriceAmount
			schedule = append(schedule, planner.ScheduleItem{
				Time:         item.Time,
				ActivityName: item.ActivityName,
				Type:         item.ActivityType,
				Description:  item.Description,
				Price:        item.PriceRaw,
				PriceAmount:  &amount,
				URL:          item.URL,
				Latitude:     item.Latitude,
				Longitude:    item.Longitude,
			})
		}
		days = append(days, planner.DayPlan{
			Day:       d.DayNumber,
			Date:      utils.FormatISODateJST(d.Date),
			Area:      d.Area,
			Theme:     d.Theme,
			Schedule:  schedule,
			TotalCost: d.TotalCost,
		})
	}

	return &response_models.ItineraryResponse{
		ID:           it.ID.String(),
		Destination:  it.Destination,
		StartDate:    utils.FormatISODateJST(it.StartDate),
		EndDate:      utils.FormatISODateJST(it.EndDate),
		PerDayBudget: it.PerDayBudget,
		Interests:    it.Interests,
		Days:         days,
		TotalCost:    it.TotalCost,
		BudgetMin:    it.BudgetMin,
		BudgetMax:    it.BudgetMax,
		Converged:    it.Converged,
	}
}
