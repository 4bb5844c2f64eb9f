package service

import (
	"sync"
	"time"
)

// State — наблюдаемое состояние мониторинга для health-эндпойнтов.
type State struct {
	mu sync.RWMutex

	ready        bool
	startedAt    time.Time
	lastRun      time.Time
	totalRuns    int64
	totalSignals int64
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) {
	s.mu.Lock()
	s.ready = v
	s.mu.Unlock()
}

func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *State) RecordRun(at time.Time, signals int) {
	s.mu.Lock()
	s.lastRun = at
	s.totalRuns++
	s.totalSignals += int64(signals)
	s.mu.Unlock()
}

func (s *State) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

func (s *State) Totals() (runs, signals int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalRuns, s.totalSignals
}

func (s *State) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
