package db_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"tabiplan/internal/infra"
)

var Module = fx.Provide(
	provideDB)

func provideDB(cfg *infra.Config) *gorm.DB {
	return infra.InitPostgresql(cfg.PostgresURL)
}
