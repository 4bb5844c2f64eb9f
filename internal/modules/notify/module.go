package notify

import (
	"signal_monitor/internal/modules/config"
	"signal_monitor/internal/modules/notify/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) (*service.TelegramChannel, error) {
				return service.NewTelegramChannel(cfg.Telegram.Token)
			},
			func(cfg *config.Config) *service.EmailChannel {
				return service.NewEmailChannel(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From)
			},
			service.NewDiscordChannel,

			func(cfg *config.Config, tg *service.TelegramChannel, dc *service.DiscordChannel, em *service.EmailChannel) *service.Fanout {
				return service.NewFanout(
					[]service.Channel{em, dc, tg},
					cfg.ChannelTimeout,
				)
			},
		),
	)
}
