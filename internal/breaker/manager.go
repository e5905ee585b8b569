package breaker

import (
	"sync"

	"akamai-mcp-gateway/internal/metrics"
)

// Manager owns one Breaker per host, created lazily on first use.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	metrics  *metrics.Collector
}

// NewManager builds a Manager. coll may be nil to skip metrics recording.
func NewManager(coll *metrics.Collector) *Manager {
	return &Manager{breakers: make(map[string]*Breaker), metrics: coll}
}

func (m *Manager) For(host string) *Breaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.breakers[host]
	if !ok {
		b = New(host, m.metrics)
		m.breakers[host] = b
	}
	return b
}
