package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if c.Settings.Aggressiveness != 0.7 || c.Settings.CommissionPct != 0.1 || c.Settings.MinProfitPct != 0.2 {
		t.Fatalf("unexpected settings %+v", c.Settings)
	}
	if c.Settings.PredictionLength != 5 || !c.Settings.ShowPredictions || c.Settings.ChartType != "candles" {
		t.Fatalf("unexpected settings %+v", c.Settings)
	}
	if c.Poller.CycleDelay != 5*time.Second || c.Poller.SleepStep != time.Second || c.Poller.LatencyEvery != 10 {
		t.Fatalf("unexpected poller %+v", c.Poller)
	}
	if c.Exchange.FetchTimeout != 10*time.Second || c.Exchange.PingTimeout != 3*time.Second {
		t.Fatalf("unexpected timeouts %+v", c.Exchange)
	}
	if len(c.Session.Symbols) != 15 {
		t.Fatalf("expected 15 popular symbols, got %d", len(c.Session.Symbols))
	}
	if c.Exchange.DefaultEndpoint != "Bybit Main" {
		t.Fatalf("unexpected default endpoint %q", c.Exchange.DefaultEndpoint)
	}
}

func TestParseKeepsExplicitFalse(t *testing.T) {
	c, err := Parse([]byte("settings:\n  show_predictions: false\n  aggressiveness: 0.5\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Settings.ShowPredictions {
		t.Fatalf("explicit false must survive defaults")
	}
	if c.Settings.Aggressiveness != 0.5 || c.Settings.CommissionPct != 0.1 {
		t.Fatalf("unexpected settings %+v", c.Settings)
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	cases := []string{
		"settings:\n  aggressiveness: 1.5\n",
		"settings:\n  commission_pct: 0\n",
		"settings:\n  min_profit_pct: 3\n",
		"settings:\n  prediction_length: 2\n",
		"settings:\n  chart_type: bars\n",
		"exchange:\n  default_endpoint: Nowhere\n",
		"kafka:\n  enabled: true\n",
	}
	for _, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("expected validation error for %q", in)
		}
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"environment: test",
		"exchange:",
		"  endpoints:",
		"    - name: Local",
		"      url: http://127.0.0.1:9000",
		"  default_endpoint: Local",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SYMBOL", "ethusdt")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Session.Symbol != "ETHUSDT" {
		t.Fatalf("symbol override failed: %q", c.Session.Symbol)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka override failed: %+v", c.Kafka)
	}
	ep, ok := c.Endpoint("Local")
	if !ok || ep.URL != "http://127.0.0.1:9000" {
		t.Fatalf("endpoint lookup failed: %+v", ep)
	}
	if c.InitialSettings().ChartType != "candles" {
		t.Fatalf("unexpected chart type")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}
