package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"authn-simple/internal/service"
)

const (
	outcomeSuccess   = "success"
	outcomeForbidden = "forbidden"
	outcomeError     = "error"
)

type metrics struct {
	authenticate *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		authenticate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authn_simple_authenticate_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authn_simple_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(m.authenticate, m.duration)
	return m
}

func (m *metrics) observeOutcome(err error) {
	m.authenticate.WithLabelValues(outcome(err)).Inc()
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.duration.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func outcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var authErr *service.AuthError
	if errors.As(err, &authErr) && authErr.Code == http.StatusForbidden {
		return outcomeForbidden
	}
	return outcomeError
}
