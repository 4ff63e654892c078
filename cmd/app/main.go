package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tabiplan/cmd/fx/account_fx"
	"tabiplan/cmd/fx/ai_fx"
	"tabiplan/cmd/fx/config_fx"
	"tabiplan/cmd/fx/controllers_fx"
	"tabiplan/cmd/fx/db_fx"
	"tabiplan/cmd/fx/geo_fx"
	"tabiplan/cmd/fx/itinerary_fx"
	"tabiplan/cmd/fx/logger_fx"
	"tabiplan/cmd/fx/memcache_fx"
	"tabiplan/internal/api/controllers"
	"tabiplan/internal/infra"
	"tabiplan/pkg/middleware"
	"tabiplan/pkg/utils"
)

func main() {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		ai_fx.Module,
		memcache_fx.Module,
		geo_fx.Module,
		account_fx.Module,
		itinerary_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *infra.Config, db *gorm.DB, aiClient utils.PlannerAIInterface, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
				if err := engine.Run(":" + cfg.Port); err != nil {
					logger.Fatal("Failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			if err := aiClient.Close(); err != nil {
				logger.Error("Error closing AI client", zap.Error(err))
			}
			infra.ClosePostgresql(db)
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	itineraryController *controllers.ItineraryController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, accountController, itineraryController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	itineraryController *controllers.ItineraryController) {

	accountGroup := r.Group("/accounts")
	accountGroup.POST("/register", accountController.Register)
	accountGroup.POST("/login", accountController.Login)

	itineraryGroup := r.Group("/itineraries")
	itineraryGroup.Use(middleware.JWTAuthMiddleware())
	itineraryGroup.POST("/create", itineraryController.CreateItinerary)
	itineraryGroup.GET("/get-itinerary-by-id/:itineraryId", itineraryController.GetItineraryById)
	itineraryGroup.GET("/get-itineraries-by-account", itineraryController.GetItinerariesByAccount)
}
