package monitoring

import (
	"sync"
	"time"
)

// Monitor collects lightweight operational values for the UI's metrics view.
// Prometheus handles the real time-series; this keeps last-seen style data
// the dashboard can show without scraping.
type Monitor struct {
	values      map[string]interface{}
	valuesMutex sync.RWMutex
	startTime   time.Time
}

// NewMonitor creates a new monitoring instance.
func NewMonitor() *Monitor {
	return &Monitor{
		values:    make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// Record stores a value under the given name.
func (m *Monitor) Record(name string, value interface{}) {
	m.valuesMutex.Lock()
	defer m.valuesMutex.Unlock()
	m.values[name] = value
}

// Get returns a specific recorded value.
func (m *Monitor) Get(name string) (interface{}, bool) {
	m.valuesMutex.RLock()
	defer m.valuesMutex.RUnlock()
	value, exists := m.values[name]
	return value, exists
}

// Snapshot returns all current values plus system metrics.
func (m *Monitor) Snapshot() map[string]interface{} {
	m.valuesMutex.RLock()
	defer m.valuesMutex.RUnlock()

	// Copy to avoid concurrent map access
	values := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		values[k] = v
	}

	values["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return values
}

// Reset clears all recorded values.
func (m *Monitor) Reset() {
	m.valuesMutex.Lock()
	defer m.valuesMutex.Unlock()
	m.values = make(map[string]interface{})
}

// RecordToolCall records the most recent tool invocation and its outcome.
func (m *Monitor) RecordToolCall(tool, outcome string) {
	m.valuesMutex.Lock()
	defer m.valuesMutex.Unlock()

	m.values["last_tool_call"] = tool
	m.values["last_tool_outcome"] = outcome
	m.values["last_tool_call_at"] = time.Now().Format(time.RFC3339)
}

// RecordCartState records the cart's current size and value for the
// dashboard.
func (m *Monitor) RecordCartState(items int, total string) {
	m.valuesMutex.Lock()
	defer m.valuesMutex.Unlock()

	m.values["cart_total_items"] = items
	m.values["cart_total_price"] = total
}
