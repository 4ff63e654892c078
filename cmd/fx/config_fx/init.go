package config_fx

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"tabiplan/internal/infra"
)

var Module = fx.Provide(provideConfig)

func provideConfig() *infra.Config {
	_ = godotenv.Load()
	return infra.LoadConfig()
}
