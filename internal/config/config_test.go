package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"solana-sniper/internal/ingestion"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sniper.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "feed:\n  ws_endpoint: wss://example.com\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Feed.Program != ingestion.PumpFun {
		t.Errorf("Program = %s, want pump.fun default", cfg.Feed.Program)
	}
	if cfg.Feed.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Feed.Workers)
	}
	if cfg.Gate.MinLiquiditySOL != 5 {
		t.Errorf("MinLiquiditySOL = %v, want 5", cfg.Gate.MinLiquiditySOL)
	}
	if cfg.Scoring.MinQualifyScore != 50 {
		t.Errorf("MinQualifyScore = %v, want 50", cfg.Scoring.MinQualifyScore)
	}
	if cfg.Decision.FastScore != 75 {
		t.Errorf("FastScore = %v, want 75", cfg.Decision.FastScore)
	}
	if cfg.CacheTTL() != 2*time.Minute {
		t.Errorf("CacheTTL = %v, want 2m", cfg.CacheTTL())
	}
	if cfg.Execution.BucketWidthMs != 30_000 {
		t.Errorf("BucketWidthMs = %d, want 30000", cfg.Execution.BucketWidthMs)
	}
	if cfg.EndpointTimeout() != 5*time.Second || cfg.GlobalTimeout() != 15*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.EndpointTimeout(), cfg.GlobalTimeout())
	}
	if cfg.Metrics.ListenAddr != ":9109" {
		t.Errorf("ListenAddr = %s", cfg.Metrics.ListenAddr)
	}
	if len(cfg.Scoring.Rules) == 0 {
		t.Error("default rule set missing")
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
feed:
  ws_endpoint: wss://example.com
  workers: 8
gate:
  min_liquidity_sol: 12.5
  creator_blacklist: [badactor1, badactor2]
scoring:
  min_qualify_score: 65
  rules:
    - name: min_liquidity
      weight: 70
      hard_stop: true
      threshold: 15
    - name: curve_progress
      weight: 30
      min: 10
      max: 40
decision:
  fast_score: 90
execution:
  user_id: desk-1
  endpoints:
    - name: primary
      url: https://rpc-a.example.com
    - name: backup
      url: https://rpc-b.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Feed.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Feed.Workers)
	}
	if cfg.GateLimits().MinLiquiditySOL != 12.5 {
		t.Errorf("MinLiquiditySOL = %v, want 12.5", cfg.GateLimits().MinLiquiditySOL)
	}
	if len(cfg.Gate.CreatorBlacklist) != 2 {
		t.Errorf("blacklist = %v", cfg.Gate.CreatorBlacklist)
	}
	if cfg.Decision.FastScore != 90 {
		t.Errorf("FastScore = %v, want 90", cfg.Decision.FastScore)
	}
	if cfg.Execution.UserID != "desk-1" {
		t.Errorf("UserID = %s", cfg.Execution.UserID)
	}
	if len(cfg.Execution.Endpoints) != 2 || cfg.Execution.Endpoints[1].Name != "backup" {
		t.Errorf("endpoints = %+v", cfg.Execution.Endpoints)
	}

	rules, err := cfg.BuildRules()
	if err != nil {
		t.Fatalf("BuildRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}
	if rules[0].Name != "min_liquidity" || !rules[0].HardStop || rules[0].Weight != 70 {
		t.Errorf("rule[0] = %+v", rules[0])
	}
	if rules[1].Name != "curve_progress" || rules[1].Weight != 30 {
		t.Errorf("rule[1] = %+v", rules[1])
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SNIPER_WS_ENDPOINT", "wss://override.example.com")
	t.Setenv("SNIPER_POSTGRES_DSN", "postgres://env-host/sniper")
	t.Setenv("SNIPER_USER_ID", "env-user")

	path := writeConfig(t, `
feed:
  ws_endpoint: wss://file.example.com
storage:
  postgres_dsn: postgres://file-host/sniper
execution:
  user_id: file-user
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Feed.WSEndpoint != "wss://override.example.com" {
		t.Errorf("WSEndpoint = %s, want env override", cfg.Feed.WSEndpoint)
	}
	if cfg.Storage.PostgresDSN != "postgres://env-host/sniper" {
		t.Errorf("PostgresDSN = %s, want env override", cfg.Storage.PostgresDSN)
	}
	if cfg.Execution.UserID != "env-user" {
		t.Errorf("UserID = %s, want env override", cfg.Execution.UserID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil, want read failure")
	}
}

func TestBuildRules_UnknownRule(t *testing.T) {
	cfg := &Config{}
	cfg.Scoring.Rules = []RuleConfig{{Name: "moon_phase", Weight: 10}}

	if _, err := cfg.BuildRules(); err == nil {
		t.Error("BuildRules() error = nil, want unknown rule failure")
	}
}

func TestDefaultRules_AllBuildable(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	rules, err := cfg.BuildRules()
	if err != nil {
		t.Fatalf("BuildRules() error = %v", err)
	}
	if len(rules) != len(defaultRules()) {
		t.Errorf("rules = %d, want %d", len(rules), len(defaultRules()))
	}
}
