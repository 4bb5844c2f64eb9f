package cache

import (
	"context"
	"sync"
	"time"
)

// Clock — источник времени; в тестах подменяется на детерминированный.
type Clock func() time.Time

type entry[V any] struct {
	value V
	at    time.Time
}

// Store — TTL-кэш с проверкой возраста на чтении.
// Истёкшие записи чистятся Sweep'ом, а не в Get.
type Store[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
	now  Clock
}

func New[V any](clock Clock) *Store[V] {
	if clock == nil {
		clock = time.Now
	}
	return &Store[V]{
		data: make(map[string]entry[V]),
		now:  clock,
	}
}

// Get возвращает значение если запись моложе ttl.
func (s *Store[V]) Get(key string, ttl time.Duration) (V, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok || s.now().Sub(e.at) > ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	s.data[key] = entry[V]{value: value, at: s.now()}
	s.mu.Unlock()
}

func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Sweep удаляет записи старше maxAge, возвращает сколько снесли.
func (s *Store[V]) Sweep(maxAge time.Duration) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.data {
		if now.Sub(e.at) > maxAge {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

func (s *Store[V]) SweepWorker(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(maxAge)
		}
	}
}
