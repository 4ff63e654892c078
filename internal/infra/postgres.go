package infra

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tabiplan/internal/models/db_models"
)

func InitPostgresql(dsn string) *gorm.DB {

	connectionPool, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("Error connecting to database", zap.Error(err))
	}

	if err := connectionPool.AutoMigrate(
		&db_models.Account{},
		&db_models.Itinerary{},
		&db_models.ItineraryDay{},
		&db_models.ItineraryItem{},
		&db_models.AreaEmbedding{},
	); err != nil {
		zap.L().Fatal("Error migrating database schema", zap.Error(err))
	}

	return connectionPool
}

func ClosePostgresql(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Error("Error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		zap.L().Error("Error closing database connection", zap.Error(err))
	}
}
