package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the settlement engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	settlementsTotal   *prometheus.CounterVec
	settlementAmount   prometheus.Counter
	counterMismatches  prometheus.Counter
	intentsTotal       *prometheus.CounterVec
	settlementDuration prometheus.Histogram
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	settlementsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_total",
		Help: "Settlement attempts by outcome",
	}, []string{"outcome"})

	settlementAmount := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_amount_total",
		Help: "Total settled amount in currency units",
	})

	counterMismatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_counter_mismatches_total",
		Help: "Settlements whose adjusted course count differed from the requested count",
	})

	intentsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_total",
		Help: "Payment intent requests by outcome",
	}, []string{"outcome"})

	settlementDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement transactions",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, settlementsTotal, settlementAmount, counterMismatches, intentsTotal, settlementDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		settlementsTotal:   settlementsTotal,
		settlementAmount:   settlementAmount,
		counterMismatches:  counterMismatches,
		intentsTotal:       intentsTotal,
		settlementDuration: settlementDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSettlement records one settlement attempt.
func (m *MetricsService) ObserveSettlement(outcome string, amount float64, mismatch bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.settlementsTotal.WithLabelValues(outcome).Inc()
	m.settlementDuration.Observe(duration.Seconds())
	if outcome == "success" {
		m.settlementAmount.Add(amount)
	}
	if mismatch {
		m.counterMismatches.Inc()
	}
}

// ObservePaymentIntent records one intent request against the provider.
func (m *MetricsService) ObservePaymentIntent(outcome string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(outcome).Inc()
}
