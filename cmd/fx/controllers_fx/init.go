package controllers_fx

import (
	"go.uber.org/fx"

	"tabiplan/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewItineraryController))
