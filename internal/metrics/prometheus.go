// Package metrics exposes deck generation, card provider and HTTP measurements
// as Prometheus metrics and an in-process summary.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

const defaultNamespace = "commander_forge"

// Manager owns the Prometheus collectors for the service. It satisfies
// deckbuilder.Observer and scryfall.RequestObserver.
type Manager struct {
	namespace         string
	histogramBuckets  []float64
	registry          *prometheus.Registry
	runtimeCollectors bool
	windowSize        int
	startTime         time.Time

	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	deckOptions        prometheus.Counter
	collectionCards    *prometheus.CounterVec

	providerRequests        *prometheus.CounterVec
	providerRequestDuration *prometheus.HistogramVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationLatency *LatencyWindow
	providerLatency   *LatencyWindow
	generationCount   atomic.Uint64
	generationErrors  atomic.Uint64
	providerCount     atomic.Uint64
	providerErrors    atomic.Uint64
}

// NewManager creates a metrics manager. Without WithRegistry it registers on
// a private registry, so several managers can coexist in tests.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		histogramBuckets: prometheus.DefBuckets,
		windowSize:       defaultWindowSize,
		startTime:        time.Now(),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.generations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "generations_total",
		Help:      "Deck generation requests by result",
	}, []string{"result"})

	m.generationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "generation_duration_seconds",
		Help:      "Time to generate deck options for one commander",
		Buckets:   m.histogramBuckets,
	})

	m.deckOptions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "deck_options_total",
		Help:      "Deck options produced by successful generations",
	})

	m.collectionCards = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "collection_cards_total",
		Help:      "Collection entries looked up during generation by outcome",
	}, []string{"outcome"})

	m.providerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "provider_requests_total",
		Help:      "Card data provider HTTP requests by endpoint and status code",
	}, []string{"endpoint", "status_code"})

	m.providerRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Card data provider HTTP request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "API request latency by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	m.generationLatency = NewLatencyWindow(m.windowSize)
	m.providerLatency = NewLatencyWindow(m.windowSize)
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveGeneration records one call to the deck generator.
func (m *Manager) ObserveGeneration(d time.Duration, options int, err error) {
	m.generations.WithLabelValues(ResultLabel(err)).Inc()
	m.generationDuration.Observe(d.Seconds())
	m.generationLatency.Record(d)
	m.generationCount.Add(1)
	if err != nil {
		m.generationErrors.Add(1)
		return
	}
	m.deckOptions.Add(float64(options))
}

// ObserveCollection records how the collection lookups of one generation went.
func (m *Manager) ObserveCollection(report deckbuilder.ResolveReport) {
	m.collectionCards.WithLabelValues("resolved").Add(float64(report.Resolved))
	m.collectionCards.WithLabelValues("not_found").Add(float64(report.NotFound))
	m.collectionCards.WithLabelValues("failed").Add(float64(report.Failed))
}

// ObserveRequest records one provider HTTP attempt. A zero status means the
// request failed before a response arrived.
func (m *Manager) ObserveRequest(endpoint string, status int, d time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.providerRequests.WithLabelValues(endpoint, code).Inc()
	m.providerRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	m.providerLatency.Record(d)
	m.providerCount.Add(1)
	if status == 0 || status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		m.providerErrors.Add(1)
	}
}

// Middleware records request counts and latency per chi route pattern.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ResultLabel maps a generation error to a low-cardinality label value.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, deckbuilder.ErrIneligibleCommander):
		return "ineligible_commander"
	case errors.Is(err, deckbuilder.ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, deckbuilder.ErrNoViableDeck):
		return "no_viable_deck"
	case errors.Is(err, deckbuilder.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, deckbuilder.ErrUnknownFormat):
		return "unknown_format"
	default:
		return "error"
	}
}
