// Package cache stores per-symbol sentiment readings between polls so a
// source is not re-queried inside its TTL. The fusion result itself is never
// cached; only the per-source readings are.
package cache

import (
	"context"
	"sync"
	"time"

	"investment-agent/internal/types"
)

// ReadingCache caches one reading per key.
type ReadingCache interface {
	Get(ctx context.Context, key string) (types.SentimentReading, bool)
	Set(ctx context.Context, key string, reading types.SentimentReading)
}

// Memory is an in-process TTL cache.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	ttl  time.Duration
}

type memoryEntry struct {
	reading types.SentimentReading
	stored  time.Time
}

// NewMemory creates an in-memory cache with the given TTL and starts its
// cleanup loop.
func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) Get(_ context.Context, key string) (types.SentimentReading, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.data[key]
	if !ok || time.Since(entry.stored) > m.ttl {
		return types.SentimentReading{}, false
	}
	return entry.reading, true
}

func (m *Memory) Set(_ context.Context, key string, reading types.SentimentReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoryEntry{reading: reading, stored: time.Now()}
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, entry := range m.data {
		if now.Sub(entry.stored) > m.ttl {
			delete(m.data, key)
		}
	}
}
