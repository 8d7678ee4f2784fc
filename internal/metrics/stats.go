package metrics

import "time"

// Stats is a point-in-time summary of the in-process measurements.
type Stats struct {
	GenerationLatency LatencyStats `json:"generationLatency"`
	ProviderLatency   LatencyStats `json:"providerLatency"`

	Generations       uint64  `json:"generations"`
	GenerationErrors  uint64  `json:"generationErrors"`
	ProviderRequests  uint64  `json:"providerRequests"`
	ProviderErrors    uint64  `json:"providerErrors"`
	ProviderErrorRate float64 `json:"providerErrorRate"` // percentage

	Uptime string `json:"uptime"`
}

// Stats returns a snapshot of recent latencies and lifetime counters.
func (m *Manager) Stats() *Stats {
	requests := m.providerCount.Load()
	failures := m.providerErrors.Load()

	errorRate := 0.0
	if requests > 0 {
		errorRate = float64(failures) / float64(requests) * 100
	}

	return &Stats{
		GenerationLatency: m.generationLatency.Stats(),
		ProviderLatency:   m.providerLatency.Stats(),
		Generations:       m.generationCount.Load(),
		GenerationErrors:  m.generationErrors.Load(),
		ProviderRequests:  requests,
		ProviderErrors:    failures,
		ProviderErrorRate: errorRate,
		Uptime:            time.Since(m.startTime).Round(time.Second).String(),
	}
}
