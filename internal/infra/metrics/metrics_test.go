package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestPromCollector_LoginCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPromCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(true)
	c.RecordLogin(false)

	if v := counterValue(t, reg, "auth_login_success_total"); v != 2 {
		t.Errorf("login_success_total = %v, want 2", v)
	}
	if v := counterValue(t, reg, "auth_login_fail_total"); v != 1 {
		t.Errorf("login_fail_total = %v, want 1", v)
	}
}

func TestPromCollector_RefreshCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPromCollector(reg)

	c.RecordRefresh(true)
	c.RecordRefresh(false)
	c.RecordRefresh(false)

	if v := counterValue(t, reg, "auth_refresh_fail_total"); v != 2 {
		t.Errorf("refresh_fail_total = %v, want 2", v)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPromCollector(reg)
	c.RecordRegistration()
	c.RecordHTTPStatus(http.StatusOK)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "auth_registrations_total 1") {
		t.Errorf("missing registration counter in scrape output")
	}
	if !strings.Contains(string(body), `auth_http_status_total{status_code="200"} 1`) {
		t.Errorf("missing http status counter in scrape output")
	}
}
