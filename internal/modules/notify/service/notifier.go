package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/logger"
)

// Channel — один транспорт уведомлений. Доставка best-effort,
// at-most-once: ни ретраев, ни dead-letter — упавший канал просто
// попадает в лог.
type Channel interface {
	Name() string
	Enabled(s *models.NotificationSettings) bool
	Send(ctx context.Context, s *models.NotificationSettings, n models.Notification) error
}

type Fanout struct {
	channels []Channel
	timeout  time.Duration
}

func NewFanout(channels []Channel, timeout time.Duration) *Fanout {
	return &Fanout{channels: channels, timeout: timeout}
}

// Dispatch прогоняет каждый включённый канал независимо: падение одного
// не трогает остальные и не откатывает уже записанный сигнал.
// Уведомления получают только premium-пользователи; сигналы free-тарифа
// пишутся в базу без рассылки.
func (f *Fanout) Dispatch(ctx context.Context, s *models.NotificationSettings, n models.Notification) {
	if s == nil {
		return
	}
	if s.Tier != models.TierPremium {
		logger.Info("[NOTIFY] user %s skipped: tier %s", s.UserID, s.Tier)
		return
	}
	if !s.WantsType(n.Type) {
		logger.Info("[NOTIFY] user %s skipped: %s alerts disabled", s.UserID, n.Type)
		return
	}

	for _, ch := range f.channels {
		if !ch.Enabled(s) {
			continue
		}

		chCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := ch.Send(chCtx, s, n)
		cancel()

		if err != nil {
			logger.Error("[NOTIFY] channel %s failed for user %s: %v", ch.Name(), s.UserID, err)
			continue
		}
		logger.Info("[NOTIFY] channel %s delivered for user %s", ch.Name(), s.UserID)
	}
}

// BuildMessage — общий текст для всех каналов.
func BuildMessage(n models.Notification) string {
	var b strings.Builder

	emoji := "📈"
	if n.Type == models.SignalExit || n.Type == models.SignalStopLoss {
		emoji = "📉"
	}
	fmt.Fprintf(&b, "%s %s signal: %s @ %.2f\n", emoji, strings.ToUpper(string(n.Type)), n.Asset, n.Price)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", n.Confidence*100)
	if len(n.Conditions) > 0 {
		b.WriteString("Conditions:\n")
		for _, c := range n.Conditions {
			fmt.Fprintf(&b, "• %s\n", c)
		}
	}
	return b.String()
}
