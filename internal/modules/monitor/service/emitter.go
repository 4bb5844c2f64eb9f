package service

import (
	"context"
	"time"

	"signal_monitor/internal/models"
	rulesvc "signal_monitor/internal/modules/rules/service"
	"signal_monitor/pkg/logger"

	"github.com/google/uuid"
)

// Emitter персистит сигнал, делает best-effort фан-аут и помечает сигнал
// processed независимо от исхода доставки. Доставка at-most-once:
// корректирующее действие при сбое канала — читать логи, не ретрай.
type Emitter struct {
	signals  SignalStore
	settings SettingsSource
	fanout   Dispatcher
	now      func() time.Time
}

func NewEmitter(signals SignalStore, settings SettingsSource, fanout Dispatcher) *Emitter {
	return &Emitter{
		signals:  signals,
		settings: settings,
		fanout:   fanout,
		now:      time.Now,
	}
}

func (e *Emitter) Emit(
	ctx context.Context,
	strat models.Strategy,
	sigType models.SignalType,
	snap models.PriceSnapshot,
	res rulesvc.Result,
) (*models.Signal, error) {
	sig := &models.Signal{
		ID:                uuid.NewString(),
		StrategyID:        strat.ID,
		Type:              sigType,
		Asset:             strat.Symbol,
		Price:             snap.Price,
		MatchedConditions: res.Matched,
		Confidence:        res.Confidence,
		CreatedAt:         e.now().UTC(),
	}

	if err := e.signals.Insert(ctx, sig); err != nil {
		return nil, err
	}

	settings, err := e.settings.GetByUser(ctx, strat.OwnerID)
	if err != nil {
		logger.Error("[EMIT] настройки пользователя %s не прочитались: %v", strat.OwnerID, err)
	} else if settings != nil {
		e.fanout.Dispatch(ctx, settings, models.Notification{
			UserID:     strat.OwnerID,
			Type:       sigType,
			Asset:      strat.Symbol,
			Price:      snap.Price,
			Conditions: res.Matched,
			Confidence: res.Confidence,
		})
	}

	if err := e.signals.MarkProcessed(ctx, sig.ID); err != nil {
		logger.Error("[EMIT] сигнал %s не пометился processed: %v", sig.ID, err)
	} else {
		sig.Processed = true
	}

	logger.Info("[EMIT] %s signal %s for strategy %s @ %.2f", sigType, sig.ID, strat.ID, snap.Price)
	return sig, nil
}
