package logger_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tabiplan/internal/infra"
)

var Module = fx.Provide(provideLogger)

func provideLogger(cfg *infra.Config) *zap.Logger {
	var logger *zap.Logger
	var err error

	if cfg.AppEnv == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(logger)
	return logger
}
