package observability

import (
	"strconv"
	"sync"
	"time"
)

// RouteStats aggregates one route+method+status combination.
type RouteStats struct {
	Count         int64
	TotalDuration time.Duration
}

// Metrics keeps in-memory request and error counters. Enough for the
// readiness dashboards this service feeds; an exporter can wrap
// Snapshot later without touching the call sites.
type Metrics struct {
	mu         sync.Mutex
	requests   map[string]*RouteStats
	errorCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:   make(map[string]*RouteStats),
		errorCount: make(map[string]int64),
	}
}

// RecordRequest accumulates count and latency for a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[key]
	if !ok {
		stats = &RouteStats{}
		m.requests[key] = stats
	}
	stats.Count++
	stats.TotalDuration += duration
}

// RecordError counts a request that resolved to an error code from the
// taxonomy (RATE_LIMITED, SESSION_NOT_FOUND, ...).
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[path+"|"+method+"|"+code]++
}

// Snapshot copies the current counters for inspection.
func (m *Metrics) Snapshot() (map[string]RouteStats, map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	requests := make(map[string]RouteStats, len(m.requests))
	for key, stats := range m.requests {
		requests[key] = *stats
	}
	errors := make(map[string]int64, len(m.errorCount))
	for key, count := range m.errorCount {
		errors[key] = count
	}
	return requests, errors
}
