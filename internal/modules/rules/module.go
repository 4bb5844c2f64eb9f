package rules

import (
	"signal_monitor/internal/modules/rules/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("rules",
		fx.Provide(
			service.NewEvaluator,
			service.NewValidator,
		),
	)
}
