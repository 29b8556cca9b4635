package app

import (
	"bookminder/models"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	borrows  *prometheus.CounterVec
	returns  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookminder",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookminder",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		borrows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookminder",
			Name:      "borrows_total",
			Help:      "Borrow attempts by outcome.",
		}, []string{"outcome"}),
		returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookminder",
			Name:      "returns_total",
			Help:      "Return attempts by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.borrows, m.returns,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveBorrow(err error) { m.borrows.WithLabelValues(Outcome(err)).Inc() }
func (m *Metrics) ObserveReturn(err error) { m.returns.WithLabelValues(Outcome(err)).Inc() }

// Outcome names the result of a lending call for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrAlreadyBorrowed):
		return "already_borrowed"
	case errors.Is(err, models.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, models.ErrNotEnoughStock):
		return "not_enough_stock"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
