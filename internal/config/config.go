package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB     DBConfig
	Log    LogConfig
	Engine EngineConfig
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

// EngineConfig holds the fixed tolerances and thresholds both analysis
// components are constructed with. Loaded once at startup and passed by
// reference; never mutated afterwards.
type EngineConfig struct {
	// Tolerance is the absolute monetary tolerance for arithmetic tests.
	// It absorbs upstream rounding artifacts, it is not a business variance.
	Tolerance float64 `mapstructure:"tolerance"`

	// RetentionThreshold is the strict lower bound a candidate's confidence
	// must exceed to appear in the match list at all.
	RetentionThreshold float64 `mapstructure:"retention_threshold"`

	// DuplicateThreshold is the strict lower bound above which at least one
	// match forces the invoice-level duplicate verdict.
	DuplicateThreshold float64 `mapstructure:"duplicate_threshold"`

	// AmountVariance is the relative window for the similar-amount candidate
	// query and the amount+date rule (0.01 = within 1%).
	AmountVariance float64 `mapstructure:"amount_variance"`

	// CandidateLimit caps the similar-amount and shared-HSN candidate queries.
	CandidateLimit int `mapstructure:"candidate_limit"`

	// DateWindowDays is the maximum day gap for the amount+date rule.
	DateWindowDays int `mapstructure:"date_window_days"`
}

// Load reads configuration from environment variables with the INVAUDIT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invaudit")
	v.SetDefault("db.password", "invaudit_secret")
	v.SetDefault("db.name", "invaudit_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.environment", "development")

	// Engine defaults
	v.SetDefault("engine.tolerance", 0.05)
	v.SetDefault("engine.retention_threshold", 0.5)
	v.SetDefault("engine.duplicate_threshold", 0.7)
	v.SetDefault("engine.amount_variance", 0.01)
	v.SetDefault("engine.candidate_limit", 10)
	v.SetDefault("engine.date_window_days", 7)

	// AutomaticEnv does not cooperate with nested keys; bind each explicitly.
	envBindings := map[string]string{
		"db.host":                    "INVAUDIT_DB_HOST",
		"db.port":                    "INVAUDIT_DB_PORT",
		"db.user":                    "INVAUDIT_DB_USER",
		"db.password":                "INVAUDIT_DB_PASSWORD",
		"db.name":                    "INVAUDIT_DB_NAME",
		"db.sslmode":                 "INVAUDIT_DB_SSLMODE",
		"db.max_open":                "INVAUDIT_DB_MAX_OPEN",
		"db.max_idle":                "INVAUDIT_DB_MAX_IDLE",
		"log.level":                  "INVAUDIT_LOG_LEVEL",
		"log.environment":            "INVAUDIT_LOG_ENVIRONMENT",
		"engine.tolerance":           "INVAUDIT_ENGINE_TOLERANCE",
		"engine.retention_threshold": "INVAUDIT_ENGINE_RETENTION_THRESHOLD",
		"engine.duplicate_threshold": "INVAUDIT_ENGINE_DUPLICATE_THRESHOLD",
		"engine.amount_variance":     "INVAUDIT_ENGINE_AMOUNT_VARIANCE",
		"engine.candidate_limit":     "INVAUDIT_ENGINE_CANDIDATE_LIMIT",
		"engine.date_window_days":    "INVAUDIT_ENGINE_DATE_WINDOW_DAYS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:       v.GetString("log.level"),
		Environment: v.GetString("log.environment"),
	}
	cfg.Engine = EngineConfig{
		Tolerance:          v.GetFloat64("engine.tolerance"),
		RetentionThreshold: v.GetFloat64("engine.retention_threshold"),
		DuplicateThreshold: v.GetFloat64("engine.duplicate_threshold"),
		AmountVariance:     v.GetFloat64("engine.amount_variance"),
		CandidateLimit:     v.GetInt("engine.candidate_limit"),
		DateWindowDays:     v.GetInt("engine.date_window_days"),
	}

	if cfg.Engine.Tolerance < 0 {
		return nil, fmt.Errorf("engine.tolerance must be non-negative, got %f", cfg.Engine.Tolerance)
	}

	return cfg, nil
}
