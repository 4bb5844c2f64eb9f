package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"signal_monitor/internal/models"
	rulesvc "signal_monitor/internal/modules/rules/service"
	"signal_monitor/pkg/logger"

	"github.com/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeStrategies struct {
	list []models.Strategy
	err  error
}

func (f *fakeStrategies) ListActive(_ context.Context, limit int, _ []models.Timeframe) ([]models.Strategy, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.list) > limit {
		return f.list[:limit], nil
	}
	return f.list, nil
}

type fakeSignals struct {
	inserted  []*models.Signal
	processed []string
	latest    map[string]models.SignalType
}

func newFakeSignals() *fakeSignals {
	return &fakeSignals{latest: map[string]models.SignalType{}}
}

func (f *fakeSignals) Insert(_ context.Context, sig *models.Signal) error {
	cp := *sig
	f.inserted = append(f.inserted, &cp)
	f.latest[sig.StrategyID] = sig.Type
	return nil
}

func (f *fakeSignals) MarkProcessed(_ context.Context, id string) error {
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeSignals) LatestTypeByStrategy(_ context.Context, strategyID string) (models.SignalType, bool, error) {
	t, ok := f.latest[strategyID]
	return t, ok, nil
}

func (f *fakeSignals) DeleteInvalid(_ context.Context) (int64, error) { return 0, nil }

type fakeSettings struct {
	s *models.NotificationSettings
}

func (f *fakeSettings) GetByUser(_ context.Context, _ string) (*models.NotificationSettings, error) {
	return f.s, nil
}

type fakePrices struct {
	snaps map[string]models.PriceSnapshot
	errs  map[string]error
	hist  map[string][]float64
}

func (f *fakePrices) Quote(_ context.Context, symbol string) (models.PriceSnapshot, error) {
	if err := f.errs[symbol]; err != nil {
		return models.PriceSnapshot{}, err
	}
	return f.snaps[symbol], nil
}

func (f *fakePrices) History(symbol string) []float64 { return f.hist[symbol] }

type fakeDispatcher struct {
	sent []models.Notification
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ *models.NotificationSettings, n models.Notification) {
	f.sent = append(f.sent, n)
}

func closeAbove(v float64) []models.RuleGroup {
	return []models.RuleGroup{{
		Logic:              models.LogicAND,
		RequiredConditions: 1,
		Inequalities: []models.Inequality{{
			Left:      models.Operand{Kind: models.OperandPrice, Field: models.PriceClose},
			Condition: models.CondGreaterThan,
			Right:     models.Operand{Kind: models.OperandValue, Value: v},
		}},
	}}
}

func testStrategy(id, symbol string, entry, exit []models.RuleGroup) models.Strategy {
	return models.Strategy{
		ID:         id,
		OwnerID:    "user-1",
		Symbol:     symbol,
		Active:     true,
		Timeframe:  models.Timeframe1h,
		EntryRules: entry,
		ExitRules:  exit,
	}
}

type monitorFixture struct {
	monitor    *Monitor
	signals    *fakeSignals
	dispatcher *fakeDispatcher
}

func newMonitorFixture(strategies *fakeStrategies, prices *fakePrices) *monitorFixture {
	signals := newFakeSignals()
	dispatcher := &fakeDispatcher{}
	settings := &fakeSettings{s: &models.NotificationSettings{
		UserID:          "user-1",
		Tier:            models.TierPremium,
		TelegramEnabled: true,
		EntryAlerts:     true,
		ExitAlerts:      true,
	}}

	emitter := NewEmitter(signals, settings, dispatcher)
	positions := NewPositionChecker(signals, nil, time.Minute)
	m := NewMonitor(
		Config{BatchSize: 10, MarketHoursCheck: false},
		strategies, prices, rulesvc.NewEvaluator(), positions, emitter, nil,
	)
	return &monitorFixture{monitor: m, signals: signals, dispatcher: dispatcher}
}

func TestRun_EmitsEntrySignal(t *testing.T) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "AAPL", closeAbove(100), nil),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)

	sum, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.SignalsGenerated != 1 || sum.StrategiesProcessed != 1 {
		t.Fatalf("expected 1 signal / 1 strategy, got %+v", sum)
	}
	if len(fx.signals.inserted) != 1 || fx.signals.inserted[0].Type != models.SignalEntry {
		t.Fatalf("expected one entry signal, got %v", fx.signals.inserted)
	}
	if len(fx.signals.processed) != 1 {
		t.Fatalf("signal must be marked processed after dispatch")
	}
	if len(fx.dispatcher.sent) != 1 {
		t.Fatalf("notification fan-out must run once, got %d", len(fx.dispatcher.sent))
	}
}

func TestRun_BackToBackRunsDoNotDoubleEmitEntry(t *testing.T) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "AAPL", closeAbove(100), nil),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)

	for i := 0; i < 2; i++ {
		if _, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true}); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
	}

	if len(fx.signals.inserted) != 1 {
		t.Fatalf("open entry position must gate a second entry, got %d signals", len(fx.signals.inserted))
	}
}

func TestRun_NoExitWithoutOpenPosition(t *testing.T) {
	// exit-правила сработали бы, но позиции нет — ветка даже не оценивается
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "AAPL", closeAbove(1000), closeAbove(1)),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)

	sum, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.signals.inserted) != 0 {
		t.Fatalf("no signal may be emitted without an open position, got %v", fx.signals.inserted)
	}
	if sum.StrategiesProcessed != 1 {
		t.Fatalf("strategy still counts as processed, got %+v", sum)
	}
}

func TestRun_ExitEmittedWhenPositionOpen(t *testing.T) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "AAPL", closeAbove(1000), closeAbove(100)),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)
	fx.signals.latest["s1"] = models.SignalEntry // открытая позиция из прошлых прогонов

	if _, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.signals.inserted) != 1 || fx.signals.inserted[0].Type != models.SignalExit {
		t.Fatalf("expected one exit signal, got %v", fx.signals.inserted)
	}
}

func TestRun_QuoteFailureSkipsStrategyFailSoft(t *testing.T) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "ZZZZ", closeAbove(100), nil),
		testStrategy("s2", "AAPL", closeAbove(100), nil),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		errs:  map[string]error{"ZZZZ": errors.New("fetch timeout")},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)

	sum, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true})
	if err != nil {
		t.Fatalf("quote failure must not fail the invocation: %v", err)
	}
	if sum.StrategiesProcessed != 1 {
		t.Fatalf("only the healthy strategy counts as processed, got %+v", sum)
	}
	if len(sum.Errors) != 1 || !strings.Contains(sum.Errors[0], "ZZZZ") {
		t.Fatalf("expected ZZZZ in errors, got %v", sum.Errors)
	}
	if len(fx.signals.inserted) != 1 {
		t.Fatalf("healthy strategy must still emit, got %d", len(fx.signals.inserted))
	}
}

func TestRun_StructuralSkipsAreSilent(t *testing.T) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "", closeAbove(100), nil), // без символа
		testStrategy("s2", "AAPL", nil, nil),         // без правил
	}}
	prices := &fakePrices{hist: map[string][]float64{}}
	fx := newMonitorFixture(strategies, prices)

	sum, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StrategiesProcessed != 0 || len(sum.Errors) != 0 {
		t.Fatalf("structural skips are logged, not errors: %+v", sum)
	}
}

func TestRun_BatchLoadFailureIsFatal(t *testing.T) {
	strategies := &fakeStrategies{err: errors.New("db unreachable")}
	fx := newMonitorFixture(strategies, &fakePrices{})

	if _, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: true}); err == nil {
		t.Fatalf("unreachable database at batch load must fail the invocation")
	}
}

func TestRun_MarketHoursGateSkipsAutomaticRuns(t *testing.T) {
	strategies := &fakeStrategies{list: []models.Strategy{
		testStrategy("s1", "AAPL", closeAbove(100), nil),
	}}
	prices := &fakePrices{
		snaps: map[string]models.PriceSnapshot{"AAPL": {Symbol: "AAPL", Price: 105}},
		hist:  map[string][]float64{"AAPL": {105}},
	}
	fx := newMonitorFixture(strategies, prices)
	fx.monitor.cfg.MarketHoursCheck = true
	fx.monitor.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) // суббота
	}

	sum, err := fx.monitor.Run(context.Background(), TriggerRequest{Manual: false, Source: "cron"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StrategiesProcessed != 0 || sum.SignalsGenerated != 0 {
		t.Fatalf("automatic weekend run must short-circuit, got %+v", sum)
	}

	// ручной триггер гейт обходит
	sum, err = fx.monitor.Run(context.Background(), TriggerRequest{Manual: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StrategiesProcessed != 1 {
		t.Fatalf("manual run must bypass the market-hours gate, got %+v", sum)
	}
}
