// Package config loads sniper configuration from a YAML file with .env and
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solana-sniper/internal/gate"
	"solana-sniper/internal/ingestion"
	"solana-sniper/internal/scoring"
)

// Config is the full sniper configuration.
type Config struct {
	Feed      FeedConfig      `yaml:"feed"`
	Gate      GateConfig      `yaml:"gate"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Decision  DecisionConfig  `yaml:"decision"`
	Execution ExecutionConfig `yaml:"execution"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Verbose   bool            `yaml:"verbose"`
}

// FeedConfig controls the launch event subscription.
type FeedConfig struct {
	WSEndpoint  string `yaml:"ws_endpoint"`
	RPCEndpoint string `yaml:"rpc_endpoint"` // market state lookups; empty disables enrichment
	Program     string `yaml:"program"`
	Workers     int    `yaml:"workers"`
}

// GateConfig holds the safety gate limits.
type GateConfig struct {
	MinLiquiditySOL        float64  `yaml:"min_liquidity_sol"`
	MaxTopHolderPct        float64  `yaml:"max_top_holder_pct"`
	MaxDevHoldingPct       float64  `yaml:"max_dev_holding_pct"`
	MaxAgeMs               int64    `yaml:"max_age_ms"`
	RequireVerifiedCreator bool     `yaml:"require_verified_creator"`
	CreatorBlacklist       []string `yaml:"creator_blacklist"`
}

// RuleConfig configures one scoring rule. Threshold carries the rule's single
// numeric parameter; the curve_progress rule uses Min/Max instead.
type RuleConfig struct {
	Name     string  `yaml:"name"`
	Weight   float64 `yaml:"weight"`
	HardStop bool    `yaml:"hard_stop"`

	Threshold float64 `yaml:"threshold"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
}

// ScoringConfig holds the weighted rule set.
type ScoringConfig struct {
	MinQualifyScore float64      `yaml:"min_qualify_score"`
	Rules           []RuleConfig `yaml:"rules"`
}

// DecisionConfig controls tiering and the speed cache.
type DecisionConfig struct {
	FastScore   float64 `yaml:"fast_score"`
	CacheTTLMs  int64   `yaml:"cache_ttl_ms"`
	CacheShards int     `yaml:"cache_shards"`
}

// EndpointConfig names one broadcast RPC endpoint.
type EndpointConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ExecutionConfig controls signing and broadcast.
type ExecutionConfig struct {
	UserID            string           `yaml:"user_id"`
	BucketWidthMs     int64            `yaml:"bucket_width_ms"`
	Endpoints         []EndpointConfig `yaml:"endpoints"`
	EndpointTimeoutMs int64            `yaml:"endpoint_timeout_ms"`
	GlobalTimeoutMs   int64            `yaml:"global_timeout_ms"`
}

// StorageConfig holds backing store DSNs. Empty DSNs select in-memory stores.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads the YAML file at path, then applies .env (if present) and
// environment-variable overrides, then fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// EndpointTimeout returns the per-endpoint broadcast timeout.
func (c *Config) EndpointTimeout() time.Duration {
	return time.Duration(c.Execution.EndpointTimeoutMs) * time.Millisecond
}

// GlobalTimeout returns the whole-race broadcast timeout.
func (c *Config) GlobalTimeout() time.Duration {
	return time.Duration(c.Execution.GlobalTimeoutMs) * time.Millisecond
}

// CacheTTL returns the speed cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Decision.CacheTTLMs) * time.Millisecond
}

// GateLimits converts the gate section into evaluator limits.
func (c *Config) GateLimits() gate.Limits {
	return gate.Limits{
		MinLiquiditySOL:        c.Gate.MinLiquiditySOL,
		MaxTopHolderPct:        c.Gate.MaxTopHolderPct,
		MaxDevHoldingPct:       c.Gate.MaxDevHoldingPct,
		MaxAgeMs:               c.Gate.MaxAgeMs,
		RequireVerifiedCreator: c.Gate.RequireVerifiedCreator,
	}
}

// BuildRules maps the scoring section onto the built-in rule set, preserving
// the configured order.
func (c *Config) BuildRules() ([]scoring.Rule, error) {
	rules := make([]scoring.Rule, 0, len(c.Scoring.Rules))
	for _, rc := range c.Scoring.Rules {
		var eval scoring.RuleFunc
		switch rc.Name {
		case "min_liquidity":
			eval = scoring.MinLiquidity(rc.Threshold)
		case "min_holders":
			eval = scoring.MinHolders(int(rc.Threshold))
		case "max_top_holder":
			eval = scoring.MaxTopHolder(rc.Threshold)
		case "max_dev_holding":
			eval = scoring.MaxDevHolding(rc.Threshold)
		case "curve_progress":
			eval = scoring.CurveProgressWindow(rc.Min, rc.Max)
		case "min_volume":
			eval = scoring.MinVolume(rc.Threshold)
		case "buy_pressure":
			eval = scoring.BuyPressure(rc.Threshold)
		case "creator_verified":
			eval = scoring.CreatorVerified()
		case "max_age":
			eval = scoring.MaxAge(int64(rc.Threshold))
		default:
			return nil, fmt.Errorf("config: unknown scoring rule %q", rc.Name)
		}
		rules = append(rules, scoring.Rule{
			Name:     rc.Name,
			Weight:   rc.Weight,
			HardStop: rc.HardStop,
			Eval:     eval,
		})
	}
	return rules, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SNIPER_WS_ENDPOINT"); v != "" {
		cfg.Feed.WSEndpoint = v
	}
	if v := os.Getenv("SNIPER_RPC_ENDPOINT"); v != "" {
		cfg.Feed.RPCEndpoint = v
	}
	if v := os.Getenv("SNIPER_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("SNIPER_CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickHouseDSN = v
	}
	if v := os.Getenv("SNIPER_USER_ID"); v != "" {
		cfg.Execution.UserID = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Feed.Program == "" {
		cfg.Feed.Program = ingestion.PumpFun
	}
	if cfg.Feed.Workers <= 0 {
		cfg.Feed.Workers = 4
	}
	if cfg.Gate.MinLiquiditySOL <= 0 {
		cfg.Gate.MinLiquiditySOL = 5
	}
	if cfg.Gate.MaxTopHolderPct <= 0 {
		cfg.Gate.MaxTopHolderPct = 25
	}
	if cfg.Gate.MaxDevHoldingPct <= 0 {
		cfg.Gate.MaxDevHoldingPct = 15
	}
	if cfg.Gate.MaxAgeMs <= 0 {
		cfg.Gate.MaxAgeMs = 60_000
	}
	if cfg.Scoring.MinQualifyScore <= 0 {
		cfg.Scoring.MinQualifyScore = 50
	}
	if len(cfg.Scoring.Rules) == 0 {
		cfg.Scoring.Rules = defaultRules()
	}
	if cfg.Decision.FastScore <= 0 {
		cfg.Decision.FastScore = 75
	}
	if cfg.Decision.CacheTTLMs <= 0 {
		cfg.Decision.CacheTTLMs = 120_000
	}
	if cfg.Execution.BucketWidthMs <= 0 {
		cfg.Execution.BucketWidthMs = 30_000
	}
	if cfg.Execution.EndpointTimeoutMs <= 0 {
		cfg.Execution.EndpointTimeoutMs = 5_000
	}
	if cfg.Execution.GlobalTimeoutMs <= 0 {
		cfg.Execution.GlobalTimeoutMs = 15_000
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9109"
	}
}

func defaultRules() []RuleConfig {
	return []RuleConfig{
		{Name: "min_liquidity", Weight: 20, HardStop: true, Threshold: 10},
		{Name: "max_top_holder", Weight: 15, Threshold: 20},
		{Name: "max_dev_holding", Weight: 15, Threshold: 10},
		{Name: "min_holders", Weight: 10, Threshold: 25},
		{Name: "curve_progress", Weight: 10, Min: 5, Max: 60},
		{Name: "min_volume", Weight: 10, Threshold: 2},
		{Name: "buy_pressure", Weight: 10, Threshold: 0.6},
		{Name: "creator_verified", Weight: 5},
		{Name: "max_age", Weight: 5, Threshold: 30_000},
	}
}
