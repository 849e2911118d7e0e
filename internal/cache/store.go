package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the freshness window used by Get.
const DefaultTTL = 60 * time.Second

// Entry is one cached value and the moment it was written.
type Entry struct {
	Data      any
	WrittenAt time.Time
}

// Observer is told about every lookup outcome.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
}

// Store is an in-memory key/value cache. Freshness is checked on read and
// expired entries are never removed; a later Set replaces them.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	defaultTTL time.Duration
	now        func() time.Time
	observer   Observer
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver reports hits and misses to o.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

func New(defaultTTL time.Duration, opts ...Option) *Store {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	s := &Store{
		entries:    make(map[string]Entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value under key if it was written less than the default TTL ago.
func (s *Store) Get(key string) (any, bool) {
	return s.GetWithTTL(key, s.defaultTTL)
}

// GetWithTTL returns the value under key if it was written less than ttl ago.
func (s *Store) GetWithTTL(key string, ttl time.Duration) (any, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if ok && s.now().Sub(entry.WrittenAt) < ttl {
		s.hit(key)
		return entry.Data, true
	}
	s.miss(key)
	return nil, false
}

// Set stores value under key, replacing any previous entry.
func (s *Store) Set(key string, value any) {
	entry := Entry{Data: value, WrittenAt: s.now()}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

// Len reports how many entries are held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) hit(key string) {
	if s.observer != nil {
		s.observer.CacheHit(key)
	}
}

func (s *Store) miss(key string) {
	if s.observer != nil {
		s.observer.CacheMiss(key)
	}
}
