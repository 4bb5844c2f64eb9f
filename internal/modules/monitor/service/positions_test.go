package service

import (
	"context"
	"testing"
	"time"

	"signal_monitor/internal/models"
)

type countingSignals struct {
	*fakeSignals
	lookups int
}

func (c *countingSignals) LatestTypeByStrategy(ctx context.Context, strategyID string) (models.SignalType, bool, error) {
	c.lookups++
	return c.fakeSignals.LatestTypeByStrategy(ctx, strategyID)
}

func TestPositionChecker_CachesDurableLookup(t *testing.T) {
	signals := &countingSignals{fakeSignals: newFakeSignals()}
	signals.latest["s1"] = models.SignalEntry
	p := NewPositionChecker(signals, nil, time.Minute)

	for i := 0; i < 3; i++ {
		open, err := p.HasOpenPosition(context.Background(), "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !open {
			t.Fatalf("latest entry signal means the position is open")
		}
	}
	if signals.lookups != 1 {
		t.Fatalf("repeated checks within TTL must hit the cache, got %d lookups", signals.lookups)
	}
}

func TestPositionChecker_ClosedAfterExit(t *testing.T) {
	signals := &countingSignals{fakeSignals: newFakeSignals()}
	signals.latest["s1"] = models.SignalExit
	p := NewPositionChecker(signals, nil, time.Minute)

	open, err := p.HasOpenPosition(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open {
		t.Fatalf("latest exit signal means the position is closed")
	}
}

func TestPositionChecker_InvalidateForcesReread(t *testing.T) {
	signals := &countingSignals{fakeSignals: newFakeSignals()}
	p := NewPositionChecker(signals, nil, time.Minute)

	if open, _ := p.HasOpenPosition(context.Background(), "s1"); open {
		t.Fatalf("no signals yet, position must be closed")
	}

	signals.latest["s1"] = models.SignalEntry
	p.Invalidate("s1")

	open, err := p.HasOpenPosition(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open {
		t.Fatalf("invalidated entry must re-read the durable state")
	}
	if signals.lookups != 2 {
		t.Fatalf("expected 2 durable lookups, got %d", signals.lookups)
	}
}
