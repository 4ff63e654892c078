package ai_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tabiplan/internal/infra"
	"tabiplan/pkg/utils"
)

var Module = fx.Provide(provideAIClient)

func provideAIClient(cfg *infra.Config, logger *zap.Logger) utils.PlannerAIInterface {
	client, err := utils.NewPlannerAIClient(cfg.AIProvider, cfg.AIAPIKey, cfg.AIModel)
	if err != nil {
		logger.Fatal("failed to initialize AI client", zap.String("provider", cfg.AIProvider), zap.Error(err))
	}
	return client
}
