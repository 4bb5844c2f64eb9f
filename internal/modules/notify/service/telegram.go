package service

import (
	"context"

	"signal_monitor/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

type TelegramChannel struct {
	bot *tgbot.BotAPI
}

// NewTelegramChannel терпит пустой токен: канал остаётся в списке,
// но Enabled для всех вернёт false.
func NewTelegramChannel(token string) (*TelegramChannel, error) {
	if token == "" {
		return &TelegramChannel{}, nil
	}
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "init telegram bot")
	}
	return &TelegramChannel{bot: b}, nil
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Enabled(s *models.NotificationSettings) bool {
	return t.bot != nil && s.TelegramEnabled && s.TelegramChatID != 0
}

func (t *TelegramChannel) Send(_ context.Context, s *models.NotificationSettings, n models.Notification) error {
	msg := tgbot.NewMessage(s.TelegramChatID, BuildMessage(n))
	_, err := t.bot.Send(msg)
	return err
}
