package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds the dashboard process configuration.
type Config struct {
	Port        string `toml:"port"`
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	Offline     bool   `toml:"offline"`

	Periods       []string `toml:"periods"`
	DefaultPeriod string   `toml:"default_period"`

	Data     DataConfig     `toml:"data"`
	LLM      LLMConfig      `toml:"llm"`
	Insights InsightsConfig `toml:"insights"`

	SessionCapacity int `toml:"session_capacity"`
}

type DataConfig struct {
	Source       string `toml:"source"` // workbook | postgres | none
	WorkbookDir  string `toml:"workbook_dir"`
	WarehouseDSN string `toml:"warehouse_dsn"`
	CacheEntries int    `toml:"cache_entries"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"` // gemini | gateway | mock
	Model          string `toml:"model"`
	APIKey         string `toml:"-"`
	GatewayURL     string `toml:"gateway_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetrySecs   int    `toml:"max_retry_seconds"`
}

type InsightsConfig struct {
	ChunkThreshold int  `toml:"chunk_threshold"`
	ChunkSize      int  `toml:"chunk_size"`
	PackMaxRows    int  `toml:"pack_max_rows"`
	ReflowBullets  bool `toml:"reflow_bullets"`
}

// Default returns config with the production defaults.
func Default() Config {
	return Config{
		Port:          "8080",
		Environment:   "local",
		LogLevel:      "info",
		Periods:       []string{"March", "May"},
		DefaultPeriod: "March",
		Data: DataConfig{
			Source:       "workbook",
			WorkbookDir:  "data",
			CacheEntries: 64,
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 60,
			MaxRetrySecs:   90,
		},
		Insights: InsightsConfig{
			ChunkThreshold: 300,
			ChunkSize:      150,
			PackMaxRows:    500,
			ReflowBullets:  true,
		},
		SessionCapacity: 256,
	}
}

// Load resolves defaults, then the optional TOML file named by
// DASHBOARD_CONFIG, then .env, then process environment.
func Load() (Config, error) {
	cfg := Default()

	if p := strings.TrimSpace(os.Getenv("DASHBOARD_CONFIG")); p != "" {
		if _, err := toml.DecodeFile(p, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", p, err)
		}
	}

	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	cfg.Port = strings.TrimPrefix(envOr("PORT", cfg.Port), ":")
	cfg.Environment = envOr("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.Offline, err = envBool("OFFLINE_MODE", cfg.Offline); err != nil {
		return err
	}
	if v := os.Getenv("PERIODS"); strings.TrimSpace(v) != "" {
		cfg.Periods = splitList(v)
	}
	cfg.DefaultPeriod = envOr("DEFAULT_PERIOD", cfg.DefaultPeriod)

	cfg.Data.Source = envOr("DATA_SOURCE", cfg.Data.Source)
	cfg.Data.WorkbookDir = envOr("WORKBOOK_DIR", cfg.Data.WorkbookDir)
	cfg.Data.WarehouseDSN = envOr("WAREHOUSE_DSN", cfg.Data.WarehouseDSN)

	cfg.LLM.Provider = envOr("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = envOr("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.GatewayURL = envOr("LLM_GATEWAY_URL", cfg.LLM.GatewayURL)
	cfg.LLM.APIKey = firstNonEmpty(os.Getenv("LLM_API_KEY"), os.Getenv("GEMINI_API_KEY"), cfg.LLM.APIKey)
	if os.Getenv("USE_MOCK_LLM") == "true" {
		cfg.LLM.Provider = "mock"
	}

	if cfg.Insights.ChunkThreshold, err = envInt("CHUNK_THRESHOLD", cfg.Insights.ChunkThreshold); err != nil {
		return err
	}
	if cfg.Insights.ChunkSize, err = envInt("CHUNK_SIZE", cfg.Insights.ChunkSize); err != nil {
		return err
	}
	if cfg.Insights.PackMaxRows, err = envInt("PACK_MAX_ROWS", cfg.Insights.PackMaxRows); err != nil {
		return err
	}
	if cfg.Insights.ReflowBullets, err = envBool("REFLOW_BULLETS", cfg.Insights.ReflowBullets); err != nil {
		return err
	}
	if cfg.SessionCapacity, err = envInt("SESSION_CAPACITY", cfg.SessionCapacity); err != nil {
		return err
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if len(c.Periods) == 0 {
		return fmt.Errorf("at least one period is required")
	}
	if strings.TrimSpace(c.DefaultPeriod) == "" {
		return fmt.Errorf("default period is required")
	}
	found := false
	for _, p := range c.Periods {
		if p == c.DefaultPeriod {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default period %q is not one of %v", c.DefaultPeriod, c.Periods)
	}
	if c.Insights.ChunkThreshold <= 0 || c.Insights.ChunkSize <= 0 {
		return fmt.Errorf("chunk threshold and size must be positive")
	}
	switch c.Data.Source {
	case "workbook", "postgres", "none":
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}
	switch c.LLM.Provider {
	case "gemini", "gateway", "mock":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func envBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
