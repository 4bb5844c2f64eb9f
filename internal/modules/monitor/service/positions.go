package service

import (
	"context"
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/cache"
)

// PositionChecker — гейт для exit-правил: без открытой entry-позиции
// exit-сигнал не эмитится. Источник истины — история сигналов в базе,
// кэш лишь экономит чтения внутри окна планировщика.
type PositionChecker struct {
	signals SignalStore
	cache   *cache.Store[bool]
	ttl     time.Duration
}

func NewPositionChecker(signals SignalStore, clock cache.Clock, ttl time.Duration) *PositionChecker {
	return &PositionChecker{
		signals: signals,
		cache:   cache.New[bool](clock),
		ttl:     ttl,
	}
}

func (p *PositionChecker) HasOpenPosition(ctx context.Context, strategyID string) (bool, error) {
	if open, ok := p.cache.Get(strategyID, p.ttl); ok {
		return open, nil
	}

	t, found, err := p.signals.LatestTypeByStrategy(ctx, strategyID)
	if err != nil {
		return false, err
	}
	open := found && t == models.SignalEntry

	p.cache.Set(strategyID, open)
	return open, nil
}

// Invalidate дёргается после эмита, чтобы следующий прогон перечитал базу.
func (p *PositionChecker) Invalidate(strategyID string) {
	p.cache.Delete(strategyID)
}
