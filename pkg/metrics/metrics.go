package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencanvass/territory/internal/common/config"
)

// Metrics holds the prometheus registry and the instruments used by the server
type Metrics struct {
	registry *prometheus.Registry

	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec

	scanCnt         *prometheus.CounterVec
	notificationCnt *prometheus.CounterVec
}

// New creates a Metrics instance with standard process collectors registered
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds"}, []string{"method", "route"})
	r.MustRegister(httpReqCnt, httpDur)

	scanCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "notification_scans_total"}, []string{"entity_kind", "status"})
	notificationCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "notifications_total"}, []string{"entity_kind", "outcome"})
	r.MustRegister(scanCnt, notificationCnt)

	return &Metrics{
		registry:        r,
		httpReqCnt:      httpReqCnt,
		httpDur:         httpDur,
		scanCnt:         scanCnt,
		notificationCnt: notificationCnt,
	}
}

// ObserveScan records the outcome of one scanner sub-scan
func (m *Metrics) ObserveScan(entityKind, status string) {
	m.scanCnt.WithLabelValues(entityKind, status).Inc()
}

// ObserveNotification records a notification create attempt: "created" or "skipped"
func (m *Metrics) ObserveNotification(entityKind, outcome string) {
	m.notificationCnt.WithLabelValues(entityKind, outcome).Inc()
}

// GinMiddleware instruments HTTP requests
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
