package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockpick/model"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	p := writeYAML(t, `
llm:
  model: qwen-max
  temperature: 0
  timeout_seconds: 90
data:
  market: GEM
  codes: ["600519", "000001.SZ", "sh600519"]
  history_source: yahoo
scoring:
  value_weight: 0.5
  trend_weight: 0.5
  window: 10
analysis:
  top_n: 5
`)
	cfg, err := LoadFromFile(p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Model != "qwen-max" || cfg.Temperature != 0 || cfg.Timeout != 90*time.Second {
		t.Fatalf("llm section not applied: %+v", cfg)
	}
	if cfg.Market != "gem" || cfg.HistorySource != "yahoo" {
		t.Fatalf("data section not applied: market=%s source=%s", cfg.Market, cfg.HistorySource)
	}
	if len(cfg.Codes) != 2 || cfg.Codes[0] != "sh600519" || cfg.Codes[1] != "sz000001" {
		t.Fatalf("unexpected codes: %v", cfg.Codes)
	}
	if cfg.Scoring.ValueWeight != 0.5 || cfg.Scoring.TrendWeight != 0.5 || cfg.Scoring.Window != 10 {
		t.Fatalf("scoring not applied: %+v", cfg.Scoring)
	}
	if cfg.Scoring.TrendClip != DefaultConfig.Scoring.TrendClip {
		t.Fatalf("unset scoring field should keep default, got %v", cfg.Scoring.TrendClip)
	}
	if cfg.TopN != 5 || cfg.BaseURL != DefaultConfig.BaseURL {
		t.Fatalf("unexpected top_n/base_url: %d %s", cfg.TopN, cfg.BaseURL)
	}
}

func TestGetConfigFileBeatsEnv(t *testing.T) {
	t.Setenv("DASHSCOPE_API_KEY", "env-key")
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("STOCK_TOP_N", "4")
	p := writeYAML(t, "llm:\n  model: file-model\n")

	cfg, err := GetConfig(p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Model != "file-model" {
		t.Fatalf("file should win over env, got %s", cfg.Model)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("env key should survive when file has no token, got %q", cfg.APIKey)
	}
	if cfg.TopN != 4 {
		t.Fatalf("env top_n should apply when file is silent, got %d", cfg.TopN)
	}
}

func TestGetConfigBadFileIsConfigError(t *testing.T) {
	p := writeYAML(t, "llm: [unclosed")
	_, err := GetConfig(p)
	if !errors.Is(err, model.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestValidateMissingCredential(t *testing.T) {
	cfg := DefaultConfig
	err := cfg.Validate()
	if !errors.Is(err, model.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}

	cfg.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	cfg.Market = "nasdaq"
	if err := cfg.Validate(); !errors.Is(err, model.ErrConfig) {
		t.Fatalf("expected ErrConfig for bad market, got %v", err)
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"600519":    "sh600519",
		"000001":    "sz000001",
		"300750":    "sz300750",
		"688981":    "sh688981",
		"830799":    "bj830799",
		"SZ000001":  "sz000001",
		"600519.SH": "sh600519",
		" sh601318": "sh601318",
		"":          "",
	}
	for in, want := range cases {
		if got := NormalizeCode(in); got != want {
			t.Fatalf("NormalizeCode(%q)=%q want %q", in, got, want)
		}
	}
}

func TestLoadFromFileEndpoints(t *testing.T) {
	p := writeYAML(t, `
data:
  sina_url: " http://127.0.0.1:8080 "
  eastmoney_url: http://127.0.0.1:8081
  eastmoney_history_url: http://127.0.0.1:8082
`)
	cfg, err := LoadFromFile(p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.SinaURL != "http://127.0.0.1:8080" || cfg.EastmoneyURL != "http://127.0.0.1:8081" || cfg.EastmoneyHistoryURL != "http://127.0.0.1:8082" {
		t.Fatalf("endpoints not applied: %q %q %q", cfg.SinaURL, cfg.EastmoneyURL, cfg.EastmoneyHistoryURL)
	}

	d, err := LoadFromFile(writeYAML(t, "data:\n  market: sh\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.SinaURL != "" || d.EastmoneyURL != "" {
		t.Fatalf("endpoints should default to empty")
	}
}
