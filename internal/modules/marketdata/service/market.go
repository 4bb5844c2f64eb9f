package service

import (
	"context"
	"sync"
	"time"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/cache"
)

// Market — read-through кэш котировок поверх Fetcher плюс ограниченная
// история close-цен на символ для кроссоверов и индикаторов.
// Кэш и история process-local и best-effort: потеря стоит лишних
// запросов, не неверных сигналов.
type Market struct {
	fetcher  Fetcher
	prices   *cache.Store[models.PriceSnapshot]
	priceTTL time.Duration

	histMu  sync.RWMutex
	history map[string][]float64
	depth   int
}

func NewMarket(fetcher Fetcher, clock cache.Clock, priceTTL time.Duration, depth int) *Market {
	if depth < 2 {
		depth = 2
	}
	return &Market{
		fetcher:  fetcher,
		prices:   cache.New[models.PriceSnapshot](clock),
		priceTTL: priceTTL,
		history:  make(map[string][]float64),
		depth:    depth,
	}
}

// Quote отдаёт закэшированный снапшот пока тот моложе TTL; несколько
// стратегий на один символ в пределах окна делят один внешний запрос.
// Неудача не кэшируется — следующий вызов пробует сразу.
func (m *Market) Quote(ctx context.Context, symbol string) (models.PriceSnapshot, error) {
	if snap, ok := m.prices.Get(symbol, m.priceTTL); ok {
		snap.Cached = true
		return snap, nil
	}

	snap, err := m.fetcher.Quote(ctx, symbol)
	if err != nil {
		return models.PriceSnapshot{}, err
	}

	m.Push(snap)
	return snap, nil
}

// Push кладёт снапшот в кэш и историю; сюда же пишет WS-стрим.
func (m *Market) Push(snap models.PriceSnapshot) {
	m.prices.Set(snap.Symbol, snap)

	m.histMu.Lock()
	h := append(m.history[snap.Symbol], snap.Price)
	if len(h) > m.depth {
		h = h[len(h)-m.depth:]
	}
	m.history[snap.Symbol] = h
	m.histMu.Unlock()
}

// History — копия накопленных close-цен, последняя — самая свежая.
func (m *Market) History(symbol string) []float64 {
	m.histMu.RLock()
	defer m.histMu.RUnlock()

	h := m.history[symbol]
	out := make([]float64, len(h))
	copy(out, h)
	return out
}

func (m *Market) SweepWorker(ctx context.Context, interval time.Duration) {
	m.prices.SweepWorker(ctx, interval, m.priceTTL)
}
