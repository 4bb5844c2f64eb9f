package service

import (
	"context"
	"fmt"
	"time"

	"signal_monitor/internal/models"
	rulesvc "signal_monitor/internal/modules/rules/service"
	"signal_monitor/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

type TriggerRequest struct {
	Manual     bool               `json:"manual"`
	Source     string             `json:"source"`
	Timeframes []models.Timeframe `json:"timeframes,omitempty"`
}

type Summary struct {
	SignalsGenerated    int       `json:"signalsGenerated"`
	StrategiesProcessed int       `json:"strategiesProcessed"`
	Errors              []string  `json:"errors"`
	Timestamp           time.Time `json:"timestamp"`
}

type Config struct {
	BatchSize        int
	MarketHoursCheck bool
}

// Monitor — один прогон: пачка активных стратегий, по каждой цена через
// кэш, оценка entry-правил либо exit-правил под гейтом открытой позиции.
type Monitor struct {
	cfg        Config
	strategies StrategySource
	market     PriceSource
	eval       *rulesvc.Evaluator
	positions  *PositionChecker
	emitter    *Emitter
	recorder   RunRecorder
	now        func() time.Time
}

func NewMonitor(
	cfg Config,
	strategies StrategySource,
	market PriceSource,
	eval *rulesvc.Evaluator,
	positions *PositionChecker,
	emitter *Emitter,
	recorder RunRecorder,
) *Monitor {
	return &Monitor{
		cfg:        cfg,
		strategies: strategies,
		market:     market,
		eval:       eval,
		positions:  positions,
		emitter:    emitter,
		recorder:   recorder,
		now:        time.Now,
	}
}

// Run обрабатывает стратегии последовательно и терпит обрез по ctx:
// уже закоммиченные сигналы остаются, хвост доберёт следующий прогон.
// Ошибка возвращается только когда пачку вообще не удалось загрузить.
func (m *Monitor) Run(ctx context.Context, req TriggerRequest) (Summary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "monitor.run")
	defer span.Finish()

	sum := Summary{Errors: []string{}, Timestamp: m.now().UTC()}

	if m.cfg.MarketHoursCheck && !req.Manual && !MarketOpen(m.now()) {
		logger.Info("[MONITOR] рынок закрыт, автоматический прогон пропущен (source=%s)", req.Source)
		return sum, nil
	}

	strats, err := m.strategies.ListActive(ctx, m.cfg.BatchSize, req.Timeframes)
	if err != nil {
		return sum, fmt.Errorf("load active strategies: %w", err)
	}

	for _, strat := range strats {
		if ctx.Err() != nil {
			logger.Error("[MONITOR] прогон обрезан: %v", ctx.Err())
			break
		}
		if ok := m.processOne(ctx, strat, &sum); ok {
			sum.StrategiesProcessed++
		}
	}

	if m.recorder != nil {
		m.recorder.RecordRun(sum.Timestamp, sum.SignalsGenerated)
	}
	logger.Info("[MONITOR] прогон завершён: %d стратегий, %d сигналов, %d ошибок",
		sum.StrategiesProcessed, sum.SignalsGenerated, len(sum.Errors))
	return sum, nil
}

func (m *Monitor) processOne(ctx context.Context, strat models.Strategy, sum *Summary) bool {
	span, ctx := opentracing.StartSpanFromContext(ctx, "monitor.strategy")
	span.SetTag("strategy_id", strat.ID)
	defer span.Finish()

	// структурный брак — молча в лог, не в errors
	if strat.Symbol == "" {
		logger.Info("[MONITOR] стратегия %s без символа, пропуск", strat.ID)
		return false
	}
	if len(strat.EntryRules) == 0 && len(strat.ExitRules) == 0 {
		logger.Info("[MONITOR] стратегия %s без правил, пропуск", strat.ID)
		return false
	}

	snap, err := m.market.Quote(ctx, strat.Symbol)
	if err != nil {
		// fail-soft: стратегия ждёт следующего цикла, негативного кэша нет
		logger.Error("[MONITOR] котировка %s не получена: %v", strat.Symbol, err)
		sum.Errors = append(sum.Errors, fmt.Sprintf("%s: quote unavailable: %v", strat.Symbol, err))
		return false
	}

	hist := m.market.History(strat.Symbol)
	cur := rulesvc.BuildSample(hist, snap.Volume, strat.EntryRules, strat.ExitRules)
	var prev *rulesvc.Sample
	if len(hist) >= 2 {
		p := rulesvc.BuildSample(hist[:len(hist)-1], snap.Volume, strat.EntryRules, strat.ExitRules)
		prev = &p
	}

	open, err := m.positions.HasOpenPosition(ctx, strat.ID)
	if err != nil {
		logger.Error("[MONITOR] позиция стратегии %s не прочиталась: %v", strat.ID, err)
		sum.Errors = append(sum.Errors, fmt.Sprintf("%s: position lookup failed: %v", strat.ID, err))
		return false
	}

	// entry и его exit никогда не в одном прогоне: ветка выбирается по
	// состоянию позиции на начало обработки
	if !open {
		res := m.eval.Evaluate(strat.EntryRules, cur, prev)
		if res.ShouldEmit {
			m.emit(ctx, strat, models.SignalEntry, snap, res, sum)
		}
		return true
	}

	res := m.eval.Evaluate(strat.ExitRules, cur, prev)
	if res.ShouldEmit {
		m.emit(ctx, strat, models.SignalExit, snap, res, sum)
	}
	return true
}

func (m *Monitor) emit(
	ctx context.Context,
	strat models.Strategy,
	sigType models.SignalType,
	snap models.PriceSnapshot,
	res rulesvc.Result,
	sum *Summary,
) {
	if _, err := m.emitter.Emit(ctx, strat, sigType, snap, res); err != nil {
		logger.Error("[MONITOR] эмит %s для стратегии %s упал: %v", sigType, strat.ID, err)
		sum.Errors = append(sum.Errors, fmt.Sprintf("%s: emit failed: %v", strat.ID, err))
		return
	}
	sum.SignalsGenerated++
	m.positions.Invalidate(strat.ID)
}
