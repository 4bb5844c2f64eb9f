package marketdata

import (
	"context"
	"signal_monitor/internal/modules/config"
	"signal_monitor/internal/modules/marketdata/service"
	"signal_monitor/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			func(cfg *config.Config) service.Fetcher {
				return service.NewHTTPFetcher(
					cfg.MarketData.BaseURL,
					cfg.MarketData.APIKey,
					cfg.FetchTimeout,
				)
			},
			func(cfg *config.Config, fetcher service.Fetcher) *service.Market {
				return service.NewMarket(fetcher, nil, cfg.PriceTTL, cfg.HistoryDepth)
			},
		),

		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, market *service.Market, symbols service.SymbolSource) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go market.SweepWorker(runCtx, cfg.SweepInterval)

					if cfg.MarketData.StreamEnabled {
						go func() {
							syms, err := symbols.ActiveSymbols(runCtx)
							if err != nil {
								logger.Error("[STREAM] не собрали символы: %v", err)
								return
							}
							service.NewStream(cfg.MarketData.StreamURL, market).Run(runCtx, syms)
						}()
					}
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
