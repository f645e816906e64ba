// Package metrics collects and exposes Prometheus metrics for the auth flows.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is what the transport layer records into.
type Collector interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordRefresh(success bool)
	RecordLogout()
	RecordHTTPStatus(statusCode int)
}

type PromCollector struct {
	registrations  prometheus.Counter
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	refreshSuccess prometheus.Counter
	refreshFail    prometheus.Counter
	logouts        prometheus.Counter
	httpStatus     *prometheus.CounterVec
}

func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	c := &PromCollector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of successful registrations.",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_success_total",
			Help: "Total number of successful logins.",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_fail_total",
			Help: "Total number of failed logins.",
		}),
		refreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_success_total",
			Help: "Total number of successful token refreshes.",
		}),
		refreshFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_fail_total",
			Help: "Total number of rejected token refreshes, reuse included.",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_logout_total",
			Help: "Total number of logouts.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.loginSuccess,
		c.loginFail,
		c.refreshSuccess,
		c.refreshFail,
		c.logouts,
		c.httpStatus,
	)

	return c
}

func (c *PromCollector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *PromCollector) RecordLogin(success bool) {
	if success {
		c.loginSuccess.Inc()
	} else {
		c.loginFail.Inc()
	}
}

func (c *PromCollector) RecordRefresh(success bool) {
	if success {
		c.refreshSuccess.Inc()
	} else {
		c.refreshFail.Inc()
	}
}

func (c *PromCollector) RecordLogout() {
	c.logouts.Inc()
}

func (c *PromCollector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
