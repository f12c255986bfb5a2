package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant service
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Resolver     ResolverConfig     `mapstructure:"resolver"`
	Analytics    AnalyticsConfig    `mapstructure:"analytics"`
	Cache        CacheConfig        `mapstructure:"cache"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// PostgresConfig describes the TAS database connection
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds a connection string, preferring the explicit URL.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// ConversationConfig bounds per-session chat memory
type ConversationConfig struct {
	HistorySize    int           `mapstructure:"history_size"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	ContextTurns   int           `mapstructure:"context_turns"`
}

func (c ConversationConfig) Validate() error {
	if c.HistorySize <= 0 {
		return fmt.Errorf("conversation.history_size must be > 0")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("conversation.session_timeout must be > 0")
	}
	return nil
}

// ResolverConfig configures the optional local-model SQL resolver.
// When disabled the interpreter relies on pattern matching alone.
type ResolverConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (r ResolverConfig) Validate() error {
	if r.Enabled && r.BaseURL == "" {
		return fmt.Errorf("resolver.base_url must be set when resolver is enabled")
	}
	return nil
}

// AnalyticsConfig carries the tunable thresholds of the predictive layer.
// The point values and cut-offs are heuristics, kept configurable on purpose.
type AnalyticsConfig struct {
	TrendEpsilon       float64 `mapstructure:"trend_epsilon"`
	StrongTrend        float64 `mapstructure:"strong_trend"`
	HighMean           float64 `mapstructure:"high_mean"`
	ModerateMean       float64 `mapstructure:"moderate_mean"`
	HighVariation      float64 `mapstructure:"high_variation"`
	ModerateVariation  float64 `mapstructure:"moderate_variation"`
	HighRiskScore      int     `mapstructure:"high_risk_score"`
	MediumRiskScore    int     `mapstructure:"medium_risk_score"`
	UnderstaffedBelow  int64   `mapstructure:"understaffed_below"`
	HighVolumeWarnLine float64 `mapstructure:"high_volume_warn_line"`
}

func (a AnalyticsConfig) Validate() error {
	if a.TrendEpsilon <= 0 {
		return fmt.Errorf("analytics.trend_epsilon must be > 0")
	}
	if a.MediumRiskScore > a.HighRiskScore {
		return fmt.Errorf("analytics.medium_risk_score must not exceed high_risk_score")
	}
	return nil
}

// CacheConfig configures the optional Redis query-result cache
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	DB      int           `mapstructure:"db"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func (c CacheConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("cache.addr must be set when cache is enabled")
	}
	return nil
}

// LoadConfig reads configuration from file and environment (TASQ_* overrides).
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	setDefaults()

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("TASQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Conversation.Validate(); err != nil {
		panic(err)
	}
	if err := config.Resolver.Validate(); err != nil {
		panic(err)
	}
	if err := config.Analytics.Validate(); err != nil {
		panic(err)
	}
	if err := config.Cache.Validate(); err != nil {
		panic(err)
	}

	return &config
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("conversation.history_size", 5)
	viper.SetDefault("conversation.session_timeout", 30*time.Minute)
	viper.SetDefault("conversation.context_turns", 5)

	viper.SetDefault("resolver.enabled", false)
	viper.SetDefault("resolver.model", "sqlcoder:7b")
	viper.SetDefault("resolver.temperature", 0.1)
	viper.SetDefault("resolver.timeout", 30*time.Second)

	viper.SetDefault("analytics.trend_epsilon", 0.05)
	viper.SetDefault("analytics.strong_trend", 0.1)
	viper.SetDefault("analytics.high_mean", 10.0)
	viper.SetDefault("analytics.moderate_mean", 5.0)
	viper.SetDefault("analytics.high_variation", 0.5)
	viper.SetDefault("analytics.moderate_variation", 0.3)
	viper.SetDefault("analytics.high_risk_score", 4)
	viper.SetDefault("analytics.medium_risk_score", 2)
	viper.SetDefault("analytics.understaffed_below", 3)
	viper.SetDefault("analytics.high_volume_warn_line", 100.0)

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttl", 5*time.Minute)
}
