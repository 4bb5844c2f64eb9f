package models

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// NotificationSettings мониторинг только читает.
type NotificationSettings struct {
	UserID string `json:"user_id"`
	Tier   Tier   `json:"tier"`

	EmailEnabled    bool `json:"email_enabled"`
	DiscordEnabled  bool `json:"discord_enabled"`
	TelegramEnabled bool `json:"telegram_enabled"`

	EntryAlerts      bool `json:"entry_alerts"`
	ExitAlerts       bool `json:"exit_alerts"`
	StopLossAlerts   bool `json:"stop_loss_alerts"`
	TakeProfitAlerts bool `json:"take_profit_alerts"`

	Email             string `json:"email"`
	DiscordWebhookURL string `json:"discord_webhook_url"`
	TelegramChatID    int64  `json:"telegram_chat_id"`
}

// WantsType — включён ли у пользователя данный тип сигнала.
func (s *NotificationSettings) WantsType(t SignalType) bool {
	switch t {
	case SignalEntry:
		return s.EntryAlerts
	case SignalExit:
		return s.ExitAlerts
	case SignalStopLoss:
		return s.StopLossAlerts
	case SignalTakeProfit:
		return s.TakeProfitAlerts
	default:
		return false
	}
}

// Notification — то что уходит в каналы.
type Notification struct {
	UserID     string
	Type       SignalType
	Asset      string
	Price      float64
	Conditions []string
	Confidence float64
}
