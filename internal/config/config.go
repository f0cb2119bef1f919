package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nextstep/nextstep/internal/types"
)

// Configuration is the process-wide configuration, loaded once at startup and
// injected everywhere. No package reads viper directly.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Email      EmailConfig      `mapstructure:"email"`
	WhatsApp   WhatsAppConfig   `mapstructure:"whatsapp"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" default:"local"`
}

type ServerConfig struct {
	Address    string `mapstructure:"address" default:":8080"`
	CronSecret string `mapstructure:"cron_secret"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level" default:"info"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type PostgresConfig struct {
	Host                  string `mapstructure:"host" default:"localhost"`
	Port                  int    `mapstructure:"port" default:"5432"`
	User                  string `mapstructure:"user" default:"postgres"`
	Password              string `mapstructure:"password"`
	DBName                string `mapstructure:"dbname" default:"nextstep"`
	SSLMode               string `mapstructure:"sslmode" default:"disable"`
	MaxOpenConns          int    `mapstructure:"max_open_conns" default:"20"`
	MaxIdleConns          int    `mapstructure:"max_idle_conns" default:"10"`
	ConnMaxLifetimeMinute int    `mapstructure:"conn_max_lifetime_minute" default:"30"`
}

// DSN builds the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address" default:"localhost:6379"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" default:"true"`
	Type    string `mapstructure:"type" default:"inmemory"`
}

type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id" default:"nextstep"`
	ConsumerGroup string   `mapstructure:"consumer_group" default:"nextstep-payments"`
	PaymentTopic  string   `mapstructure:"payment_topic" default:"payment_events"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address" default:"reminders@nextstep.example"`
}

type WhatsAppConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// SweepConfig bounds the reminder sweep's parallel section.
type SweepConfig struct {
	WorkerPoolSize int           `mapstructure:"worker_pool_size" default:"10"`
	SendTimeout    time.Duration `mapstructure:"send_timeout" default:"15s"`
	RatePerSecond  float64       `mapstructure:"rate_per_second" default:"25"`
	LookbackDays   int           `mapstructure:"lookback_days" default:"1"`
	LookaheadDays  int           `mapstructure:"lookahead_days" default:"3"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment" default:"local"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

// NewConfig loads configuration from ./config/config.yaml (optional), a .env
// file (optional) and NEXTSTEP_-prefixed environment variables, in increasing
// precedence.
func NewConfig() (*Configuration, error) {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NEXTSTEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "nextstep")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.conn_max_lifetime_minute", 30)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("kafka.client_id", "nextstep")
	v.SetDefault("kafka.consumer_group", "nextstep-payments")
	v.SetDefault("kafka.payment_topic", "payment_events")
	v.SetDefault("email.from_address", "reminders@nextstep.example")
	v.SetDefault("sweep.worker_pool_size", 10)
	v.SetDefault("sweep.send_timeout", "15s")
	v.SetDefault("sweep.rate_per_second", 25.0)
	v.SetDefault("sweep.lookback_days", 1)
	v.SetDefault("sweep.lookahead_days", 3)
	v.SetDefault("sentry.environment", "local")
	v.SetDefault("sentry.sample_rate", 1.0)
}

// Validate checks the invariants that would otherwise only surface mid-sweep.
func (c *Configuration) Validate() error {
	if c.Sweep.WorkerPoolSize < 1 {
		return fmt.Errorf("sweep.worker_pool_size must be at least 1")
	}
	if c.Sweep.SendTimeout <= 0 {
		return fmt.Errorf("sweep.send_timeout must be positive")
	}
	if c.Sweep.LookbackDays < 0 || c.Sweep.LookaheadDays < 0 {
		return fmt.Errorf("sweep window days must not be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// GetDefaultConfig returns a usable configuration for scripts and tests
// without touching the environment.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Cache:      CacheConfig{Enabled: true, Type: "inmemory"},
		Sweep: SweepConfig{
			WorkerPoolSize: 10,
			SendTimeout:    15 * time.Second,
			RatePerSecond:  25,
			LookbackDays:   1,
			LookaheadDays:  3,
		},
	}
}
