package pg

import (
	"context"
	"errors"
	"fmt"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/db"

	"github.com/jackc/pgx/v5"
)

type Settings struct {
	db db.TxManager
}

// NewSettings instance
func NewSettings(m db.TxManager) *Settings {
	return &Settings{db: m}
}

// GetByUser — nil без ошибки когда настроек нет: фан-аут просто молчит.
func (r *Settings) GetByUser(ctx context.Context, userID string) (out *models.NotificationSettings, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Settings.GetByUser: %w", err)
		}
	}()

	row := r.db.Conn().QueryRow(ctx, `
		SELECT user_id, tier,
		       email_enabled, discord_enabled, telegram_enabled,
		       entry_alerts, exit_alerts, stop_loss_alerts, take_profit_alerts,
		       email, discord_webhook_url, telegram_chat_id
		FROM notification_settings
		WHERE user_id = $1`, userID)

	var s models.NotificationSettings
	err = row.Scan(&s.UserID, &s.Tier,
		&s.EmailEnabled, &s.DiscordEnabled, &s.TelegramEnabled,
		&s.EntryAlerts, &s.ExitAlerts, &s.StopLossAlerts, &s.TakeProfitAlerts,
		&s.Email, &s.DiscordWebhookURL, &s.TelegramChatID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
