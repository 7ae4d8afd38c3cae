package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Gateway.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected base url %q", c.Gateway.BaseURL)
	}
	if c.Gateway.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", c.Gateway.Timeout)
	}
	if c.Predictions.AnalysisWindow != 30 || c.Predictions.LatestDraws != 10 || c.Predictions.DashboardTopN != 5 {
		t.Fatalf("unexpected prediction defaults %+v", c.Predictions)
	}
	if c.Watchdog.Interval != 30*time.Second {
		t.Fatalf("unexpected watchdog interval %v", c.Watchdog.Interval)
	}
	if c.Ledger.PageSize != 50 {
		t.Fatalf("unexpected page size %d", c.Ledger.PageSize)
	}
	if c.WS.SendBuffer != 64 {
		t.Fatalf("unexpected ws buffer %d", c.WS.SendBuffer)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	yml := `
environment: prod
gateway:
  base_url: http://predict.internal:9000/api
  timeout: 3s
predictions:
  analysis_window: 50
watchdog:
  interval: 1m
`
	c, err := Parse([]byte(yml))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Gateway.BaseURL != "http://predict.internal:9000/api" || c.Gateway.Timeout != 3*time.Second {
		t.Fatalf("gateway not overridden: %+v", c.Gateway)
	}
	if c.Predictions.AnalysisWindow != 50 {
		t.Fatalf("window not overridden: %d", c.Predictions.AnalysisWindow)
	}
	if c.Watchdog.Interval != time.Minute {
		t.Fatalf("interval not overridden: %v", c.Watchdog.Interval)
	}
	// untouched keys keep their defaults
	if c.Predictions.LatestDraws != 10 {
		t.Fatalf("latest draws lost default: %d", c.Predictions.LatestDraws)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"small window":  "predictions:\n  analysis_window: 4\n",
		"bad url":       "gateway:\n  base_url: not a url\n",
		"bad level":     "log:\n  level: loud\n",
		"kafka brokers": "kafka:\n  enabled: true\n  brokers: []\n",
	}
	for name, yml := range cases {
		if _, err := Parse([]byte(yml)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	env := map[string]string{
		"GATEWAY_BASE_URL": "http://10.0.0.2:8000/api/",
		"KAFKA_BROKERS":    "k1:9092,k2:9092",
		"ANALYSIS_WINDOW":  "20",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	if err := c.applyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if c.Gateway.BaseURL != "http://10.0.0.2:8000/api" {
		t.Fatalf("unexpected base url %q", c.Gateway.BaseURL)
	}
	if !c.Kafka.Enabled || strings.Join(c.Kafka.Brokers, ",") != "k1:9092,k2:9092" {
		t.Fatalf("kafka env not applied: %+v", c.Kafka)
	}
	if c.Predictions.AnalysisWindow != 20 {
		t.Fatalf("window env not applied: %d", c.Predictions.AnalysisWindow)
	}

	env = map[string]string{"GATEWAY_TIMEOUT": "soon"}
	if err := c.applyEnv(lookup); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}
