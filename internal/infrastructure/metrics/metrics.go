// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "bizdesk"

// Metrics owns a private registry so tests and multiple servers do not clash
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	documentsIssued *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec
	paymentsAmount  *prometheus.CounterVec
	backups         *prometheus.CounterVec
	forecasts       *prometheus.CounterVec
	emails          *prometheus.CounterVec
	presenceOnline  prometheus.Gauge
	wsConnections   prometheus.Gauge
	validationFails *prometheus.CounterVec

	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		documentsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "documents_issued_total",
			Help:      "Invoices and quotes created.",
		}, []string{"type"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "payments_total",
			Help:      "Payments recorded against invoices.",
		}, []string{"method"}),
		paymentsAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "payments_amount_total",
			Help:      "Sum of recorded payment amounts, all currencies mixed.",
		}, []string{"method"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "runs_total",
			Help:      "Backups by final status.",
		}, []string{"status"}),
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "requests_total",
			Help:      "Forecasts served by source (llm or baseline).",
		}, []string{"source"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Emails by template and outcome.",
		}, []string{"template", "status"}),
		presenceOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "presence",
			Name:      "online_users",
			Help:      "Users with a live heartbeat at the last prune.",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open websocket connections.",
		}),
		validationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "validation_failures_total",
			Help:      "Requests rejected by input validation.",
		}, []string{"route"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by outcome.",
		}, []string{"job", "success"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_run_duration_seconds",
			Help:      "Duration of scheduled job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"job"}),
	}

	m.registry.MustRegister(
		m.httpInFlight, m.httpRequests, m.httpDuration,
		m.documentsIssued, m.paymentsTotal, m.paymentsAmount,
		m.backups, m.forecasts, m.emails,
		m.presenceOnline, m.wsConnections, m.validationFails,
		m.jobRuns, m.jobDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RequestStarted returns the function that completes the observation
func (m *Metrics) RequestStarted() func(method, route string, status int) {
	start := time.Now()
	m.httpInFlight.Inc()
	return func(method, route string, status int) {
		m.httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) DocumentIssued(docType string) {
	m.documentsIssued.WithLabelValues(docType).Inc()
}

func (m *Metrics) PaymentRecorded(method string, amount decimal.Decimal) {
	m.paymentsTotal.WithLabelValues(method).Inc()
	m.paymentsAmount.WithLabelValues(method).Add(amount.InexactFloat64())
}

func (m *Metrics) BackupFinished(status string) {
	m.backups.WithLabelValues(status).Inc()
}

func (m *Metrics) ForecastServed(source string) {
	m.forecasts.WithLabelValues(source).Inc()
}

func (m *Metrics) EmailSent(template string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.emails.WithLabelValues(template, status).Inc()
}

func (m *Metrics) SetOnlineUsers(n int) {
	m.presenceOnline.Set(float64(n))
}

func (m *Metrics) ConnectionOpened() { m.wsConnections.Inc() }

func (m *Metrics) ConnectionClosed() { m.wsConnections.Dec() }

func (m *Metrics) ValidationFailed(route string) {
	m.validationFails.WithLabelValues(route).Inc()
}

// ObserveJob has the scheduler.Observer signature
func (m *Metrics) ObserveJob(name string, duration time.Duration, err error) {
	m.jobRuns.WithLabelValues(name, strconv.FormatBool(err == nil)).Inc()
	m.jobDuration.WithLabelValues(name).Observe(duration.Seconds())
}
