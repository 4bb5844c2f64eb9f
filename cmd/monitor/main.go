package main

import (
	"context"
	"log"

	"signal_monitor/internal/modules/config"
	"signal_monitor/internal/modules/health"
	"signal_monitor/internal/modules/marketdata"
	"signal_monitor/internal/modules/monitor"
	"signal_monitor/internal/modules/notify"
	"signal_monitor/internal/modules/postgres"
	"signal_monitor/internal/modules/rules"
	"signal_monitor/pkg/logger"
	"signal_monitor/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	logger.SetServiceName("signal-monitor")
	tracing.SetServiceName("signal-monitor")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		rules.Module(),
		marketdata.Module(),
		notify.Module(),
		monitor.Module(),
		health.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
