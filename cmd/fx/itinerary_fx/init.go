package itinerary_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tabiplan/internal/repositories"
	"tabiplan/internal/services"
	"tabiplan/pkg/utils"
)

var Module = fx.Provide(
	provideItineraryRepo, provideAreaRepo, provideItineraryService)

func provideItineraryRepo(db *gorm.DB) repositories.ItineraryRepository {
	return repositories.NewItineraryRepository(db)
}

func provideAreaRepo(db *gorm.DB) repositories.IAreaRepository {
	return repositories.NewAreaRepository(db)
}

func provideItineraryService(
	aiClient utils.PlannerAIInterface,
	itineraryRepo repositories.ItineraryRepository,
	areaRepo repositories.IAreaRepository,
	geoService services.GeoServiceInterface,
	logger *zap.Logger,
) services.ItineraryServiceInterface {
	return services.NewItineraryService(aiClient, itineraryRepo, areaRepo, geoService, logger)
}
