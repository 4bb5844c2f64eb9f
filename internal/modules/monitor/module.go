package monitor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"signal_monitor/internal/modules/config"
	healthsvc "signal_monitor/internal/modules/health/service"
	mdsvc "signal_monitor/internal/modules/marketdata/service"
	"signal_monitor/internal/modules/monitor/service"
	"signal_monitor/internal/modules/monitor/service/pg"
	notifysvc "signal_monitor/internal/modules/notify/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("monitor",
		// репозитории
		fx.Provide(
			pg.NewStrategies,
			pg.NewSignals,
			pg.NewSettings,
		),

		// адаптеры репозиториев и сервисов к интерфейсам мониторинга
		fx.Provide(
			func(r *pg.Strategies) service.StrategySource { return r },
			func(r *pg.Strategies) mdsvc.SymbolSource { return r },
			func(r *pg.Signals) service.SignalStore { return r },
			func(r *pg.Settings) service.SettingsSource { return r },
			func(m *mdsvc.Market) service.PriceSource { return m },
			func(f *notifysvc.Fanout) service.Dispatcher { return f },
			func(s *healthsvc.State) service.RunRecorder { return s },
		),

		fx.Provide(
			func(cfg *config.Config, signals service.SignalStore) *service.PositionChecker {
				return service.NewPositionChecker(signals, nil, cfg.PositionTTL)
			},
			service.NewEmitter,
			func(cfg *config.Config) service.Config {
				return service.Config{
					BatchSize:        cfg.MonitorBatchSize,
					MarketHoursCheck: cfg.MarketHoursCheck,
				}
			},
			service.NewMonitor,
			service.NewHandler,
		),

		fx.Invoke(RunHTTP),
	)
}

// RunHTTP поднимает публичный эндпойнт триггера мониторинга.
func RunHTTP(lc fx.Lifecycle, cfg *config.Config, h *service.Handler) {
	addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           service.NewMux(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
