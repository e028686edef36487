package observability

import (
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for engine and HTTP activity.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	errorCount     map[string]int64
	runCount       map[string]int64
	rulesExecuted  int64
	actionFailures map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:   make(map[string]int64),
		errorCount:     make(map[string]int64),
		runCount:       make(map[string]int64),
		actionFailures: make(map[string]int64),
	}
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[path+"|"+method]++
}

// RecordError increments HTTP error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[path+"|"+method+"|"+code]++
}

// RecordRun counts one engine pass. Mode is "ticket" or "batch".
func (m *Metrics) RecordRun(mode string, rulesExecuted, errors int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runCount[mode]++
	m.rulesExecuted += int64(rulesExecuted)
	if errors > 0 {
		m.errorCount["engine|"+mode]++
	}
}

// RecordActionFailure counts one failed escalation action by kind.
func (m *Metrics) RecordActionFailure(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionFailures[kind]++
}

// Snapshot returns a copy of the counters for the health/debug surface.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.runCount)+len(m.actionFailures)+1)
	for k, v := range m.runCount {
		out["runs_"+k] = v
	}
	for k, v := range m.actionFailures {
		out["action_failures_"+k] = v
	}
	out["rules_executed"] = m.rulesExecuted
	return out
}
