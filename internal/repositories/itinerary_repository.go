// internal/repositories/itinerary_repo.go
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "tabiplan/internal/models/db_models"
	"tabiplan/internal/planner"
	"tabiplan/pkg/utils"
)

type ItineraryRepository interface {
	// ReplaceMaterializedItinerary creates the itinerary row when itineraryID
	// is nil (createIn required) and swaps its materialized days and items for
	// the given plan in one transaction.
	ReplaceMaterializedItinerary(ctx context.Context,
		itineraryID *uuid.UUID,
		plan *MaterializedPlan,
		createIn *CreateItineraryInput) (uuid.UUID, error)

	GetDetailsOfItineraryById(ctx context.Context, itineraryId string) (*dbm.Itinerary, error)
	GetListOfItinerariesByAccountId(ctx context.Context, page int, pagesize int, accountId string) ([]dbm.Itinerary, error)
	CountItinerariesByAccountId(ctx context.Context, accountId string) (int64, error)
}

type CreateItineraryInput struct {
	AccountID    uuid.UUID
	Destination  string
	StartDate    time.Time // REQUIRED when creating a new itinerary
	EndDate      time.Time
	PerDayBudget float64
	Interests    []string
}

// MaterializedPlan is the reconciled plan ready to persist.
type MaterializedPlan struct {
	Days      []planner.DayPlan
	TotalCost int
	BudgetMin int
	BudgetMax int
	Converged bool
}

type itineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) ItineraryRepository {
	return &itineraryRepository{db: db}
}

func (r *itineraryRepository) ReplaceMaterializedItinerary(
	ctx context.Context,
	itineraryID *uuid.UUID,
	plan *MaterializedPlan,
	createIn *CreateItineraryInput,
) (uuid.UUID, error) {

	var outID uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it dbm.Itinerary
		needCreate := false

		switch {
		case itineraryID == nil || *itineraryID == uuid.Nil:
			needCreate = true
		default:
			if err := tx.First(&it, "id = ?", *itineraryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					needCreate = true
				} else {
					return err
				}
			}
		}

		if needCreate {
			if createIn == nil {
				return errors.New("createIn is required to create a new itinerary")
			}
			start := utils.MidnightJST(createIn.StartDate)
			end := utils.MidnightJST(createIn.EndDate)
			if end.Before(start) && len(plan.Days) > 0 {
				end = start.AddDate(0, 0, len(plan.Days)-1)
			}

			it = dbm.Itinerary{
				AccountID:    createIn.AccountID,
				Destination:  createIn.Destination,
				StartDate:    start,
				EndDate:      end,
				PerDayBudget: createIn.PerDayBudget,
				Interests:    createIn.Interests,
			}
			if err := tx.Create(&it).Error; err != nil {
				return err
			}
		}

		outID = it.ID

		it.TotalCost = plan.TotalCost
		it.BudgetMin = plan.BudgetMin
		it.BudgetMax = plan.BudgetMax
		it.Converged = plan.Converged
		if err := tx.Model(&dbm.Itinerary{}).Where("id = ?", it.ID).Updates(map[string]interface{}{
			"total_cost": plan.TotalCost,
			"budget_min": plan.BudgetMin,
			"budget_max": plan.BudgetMax,
			"converged":  plan.Converged,
		}).Error; err != nil {
			return err
		}

		baseDate := utils.MidnightJST(it.StartDate)

		// 1) Wipe previous materialized data
		subDayIDs := tx.Model(&dbm.ItineraryDay{}).
			Select("id").
			Where("itinerary_id = ?", it.ID)

		if err := tx.Where("itinerary_day_id IN (?)", subDayIDs).
			Delete(&dbm.ItineraryItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("itinerary_id = ?", it.ID).
			Delete(&dbm.ItineraryDay{}).Error; err != nil {
			return err
		}

		// 2) Create days + items
		for _, d := range plan.Days {
			dayDate := baseDate.AddDate(0, 0, d.Day-1)

			day := dbm.ItineraryDay{
				ItineraryID: it.ID,
				DayNumber:   d.Day,
				Date:        dayDate,
				Area:        d.Area,
				Theme:       d.Theme,
				TotalCost:   d.TotalCost,
			}
			if err := tx.Create(&day).Error; err != nil {
				return err
			}

			items := make([]dbm.ItineraryItem, 0, len(d.Schedule))
			for i, s := range d.Schedule {
				amount := 0
				if s.PriceAmount != nil {
					amount = *s.PriceAmount
				}
				items = append(items, dbm.ItineraryItem{
					ItineraryDayID: day.ID,
					Position:       i,
					Time:           s.Time,
					ActivityName:   s.ActivityName,
					ActivityType:   s.Type,
					Description:    s.Description,
					PriceRaw:       rawPriceString(s.Price),
					PriceAmount:    amount,
					URL:            s.URL,
					Latitude:       s.Latitude,
					Longitude:      s.Longitude,
				})
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})

	return outID, err
}

func rawPriceString(price interface{}) string {
	switch v := price.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (r *itineraryRepository) GetDetailsOfItineraryById(ctx context.Context, itineraryId string) (*dbm.Itinerary, error) {
	var it dbm.Itinerary
	err := r.db.WithContext(ctx).
		Where("id = ?", itineraryId).
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC")
		}).
		Preload("Days.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&it).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &it, nil
}

func (r *itineraryRepository) GetListOfItinerariesByAccountId(ctx context.Context, page int, pagesize int, accountId string) ([]dbm.Itinerary, error) {
	var itineraries []dbm.Itinerary
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountId).
		Order("created_at DESC").
		Offset((page - 1) * pagesize).
		Limit(pagesize).
		Find(&itineraries).Error

	if err != nil {
		return nil, err
	}

	return itineraries, nil
}

func (r *itineraryRepository) CountItinerariesByAccountId(ctx context.Context, accountId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Itinerary{}).
		Where("account_id = ?", accountId).
		Count(&count).Error
	return count, err
}
