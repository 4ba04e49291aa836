package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"business-navigator/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port               string   `mapstructure:"port"`
	Env                string   `mapstructure:"env"`
	CORSAllowOrigin    []string `mapstructure:"-"`
	CORSAllowOriginRaw string   `mapstructure:"cors_allow_origins"`
	DatabaseDriver     string   `mapstructure:"database_driver"`
	DatabaseURL        string   `mapstructure:"database_url"`
	SQLitePath         string   `mapstructure:"sqlite_path"`
	ObjectStoreType    string   `mapstructure:"object_store"`
	LocalStoreDir      string   `mapstructure:"local_store_dir"`
	AWSRegion          string   `mapstructure:"aws_region"`
	S3Bucket           string   `mapstructure:"s3_bucket"`
	S3Prefix           string   `mapstructure:"s3_prefix"`
	S3KMSKeyID         string   `mapstructure:"s3_sse_kms_key_id"`
	LLMProvider        string   `mapstructure:"llm_provider"`
	LLMModel           string   `mapstructure:"llm_model"`
	OpenAIAPIKey       string   `mapstructure:"openai_api_key"`
	GeminiAPIKey       string   `mapstructure:"gemini_api_key"`
	LLMTimeoutSeconds  int      `mapstructure:"llm_timeout_seconds"`
	JWTSecret          string   `mapstructure:"jwt_secret"`
	GoogleClientID     string   `mapstructure:"google_client_id"`
	GoogleClientSecret string   `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string   `mapstructure:"google_redirect_url"`
	UIRedirectURL      string   `mapstructure:"ui_redirect_url"`
	LLMRatePerMinute   float64  `mapstructure:"rate_limit_llm_per_minute"`
	Insights           `mapstructure:",squash"`
	DBPool             `mapstructure:",squash"`
}

// DBPool overrides the connection pool defaults. Zero values keep the default.
type DBPool struct {
	MaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"db_conn_max_idle_time"`
	PingTimeout     time.Duration `mapstructure:"db_ping_timeout"`
}

// Insights holds the tunable thresholds of the business-intelligence rules.
type Insights struct {
	MomentumHigh    float64 `mapstructure:"insights_momentum_high"`
	MomentumMedium  float64 `mapstructure:"insights_momentum_medium"`
	TasksPerPlanMin float64 `mapstructure:"insights_tasks_per_plan_min"`
	CompletionLow   float64 `mapstructure:"insights_completion_low"`
	HighPriorityLow float64 `mapstructure:"insights_high_priority_low"`
	CompletionScale float64 `mapstructure:"insights_completion_scale"`
}

var defaultInsights = Insights{
	MomentumHigh:    70,
	MomentumMedium:  40,
	TasksPerPlanMin: 5,
	CompletionLow:   50,
	HighPriorityLow: 60,
	CompletionScale: 80,
}

// Validate rejects negative thresholds and a momentum band whose high cut-off
// does not exceed the medium one. Zero is a valid cut-off.
func (in Insights) Validate() error {
	fields := []struct {
		key string
		val float64
	}{
		{"insights_momentum_high", in.MomentumHigh},
		{"insights_momentum_medium", in.MomentumMedium},
		{"insights_tasks_per_plan_min", in.TasksPerPlanMin},
		{"insights_completion_low", in.CompletionLow},
		{"insights_high_priority_low", in.HighPriorityLow},
		{"insights_completion_scale", in.CompletionScale},
	}
	for _, f := range fields {
		if f.val < 0 {
			return fmt.Errorf("%s must not be negative, got %v", f.key, f.val)
		}
	}
	if in.MomentumHigh <= in.MomentumMedium {
		return fmt.Errorf("insights_momentum_high (%v) must exceed insights_momentum_medium (%v)", in.MomentumHigh, in.MomentumMedium)
	}
	return nil
}

var defaults = map[string]any{
	"port":                        "8080",
	"env":                         "dev",
	"cors_allow_origins":          "http://localhost:3000",
	"database_driver":             "postgres",
	"database_url":                "",
	"sqlite_path":                 "./data/navigator.db",
	"object_store":                "local",
	"local_store_dir":             "./data",
	"aws_region":                  "",
	"s3_bucket":                   "",
	"s3_prefix":                   "",
	"s3_sse_kms_key_id":           "",
	"llm_provider":                "openai",
	"llm_model":                   "",
	"openai_api_key":              "",
	"gemini_api_key":              "",
	"llm_timeout_seconds":         120,
	"jwt_secret":                  "",
	"google_client_id":            "",
	"google_client_secret":        "",
	"google_redirect_url":         "",
	"ui_redirect_url":             "",
	"rate_limit_llm_per_minute":   10.0,
	"insights_momentum_high":      defaultInsights.MomentumHigh,
	"insights_momentum_medium":    defaultInsights.MomentumMedium,
	"insights_tasks_per_plan_min": defaultInsights.TasksPerPlanMin,
	"insights_completion_low":     defaultInsights.CompletionLow,
	"insights_high_priority_low":  defaultInsights.HighPriorityLow,
	"insights_completion_scale":   defaultInsights.CompletionScale,
	"db_max_open_conns":           0,
	"db_max_idle_conns":           0,
	"db_conn_max_lifetime":        time.Duration(0),
	"db_conn_max_idle_time":       time.Duration(0),
	"db_ping_timeout":             time.Duration(0),
}

// Load reads configuration from .env files, an optional CONFIG_FILE and
// environment variables, in increasing order of precedence.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			telemetry.Warn("config.file_ignored", map[string]any{"path": path, "error": err.Error()})
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		telemetry.Warn("config.unmarshal_failed", map[string]any{"error": err.Error()})
		cfg = Config{}
		cfg.Port = "8080"
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.DatabaseDriver = normalizeDriver(cfg.DatabaseDriver)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.LLMProvider = normalizeProvider(cfg.LLMProvider)
	cfg.CORSAllowOrigin = splitAndTrim(cfg.CORSAllowOriginRaw)
	if err := cfg.Insights.Validate(); err != nil {
		telemetry.Warn("config.insights_invalid", map[string]any{"error": err.Error()})
		cfg.Insights = defaultInsights
	}

	if cfg.Env == "production" && cfg.DatabaseDriver == "postgres" && cfg.DatabaseURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": cfg.Env})
	}
	return cfg
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return "postgres"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "none", "off", "disabled":
		return "none"
	default:
		return "openai"
	}
}

// DatabaseDSN returns DATABASE_URL, or SQLITE_PATH for the sqlite driver when no URL is set.
func (c Config) DatabaseDSN() string {
	dsn := strings.TrimSpace(c.DatabaseURL)
	if dsn == "" && c.DatabaseDriver == "sqlite" {
		dsn = strings.TrimSpace(c.SQLitePath)
	}
	return dsn
}

// IsDevLike reports whether env permits in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}
