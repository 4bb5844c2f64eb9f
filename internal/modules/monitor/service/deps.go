package service

import (
	"context"
	"time"

	"signal_monitor/internal/models"
)

// Интерфейсы коллабораторов мониторинга; живые реализации — pg-репозитории,
// Market и Fanout, в тестах — фейки.

type StrategySource interface {
	ListActive(ctx context.Context, limit int, timeframes []models.Timeframe) ([]models.Strategy, error)
}

type SignalStore interface {
	Insert(ctx context.Context, sig *models.Signal) error
	MarkProcessed(ctx context.Context, id string) error
	LatestTypeByStrategy(ctx context.Context, strategyID string) (models.SignalType, bool, error)
	DeleteInvalid(ctx context.Context) (int64, error)
}

type SettingsSource interface {
	GetByUser(ctx context.Context, userID string) (*models.NotificationSettings, error)
}

type PriceSource interface {
	Quote(ctx context.Context, symbol string) (models.PriceSnapshot, error)
	History(symbol string) []float64
}

type Dispatcher interface {
	Dispatch(ctx context.Context, s *models.NotificationSettings, n models.Notification)
}

type RunRecorder interface {
	RecordRun(at time.Time, signals int)
}
