package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Seat store configuration
	StorePath string

	// Booking queue configuration
	QueueDepth int
	OpTimeout  time.Duration

	// Hold configuration
	HoldTTL       time.Duration
	SweepInterval time.Duration

	// Payment configuration
	PaymentTTL time.Duration

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (optional realtime seat-map push)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

// LoadConfig reads configuration from the environment with sane
// defaults. Every key can be set as an env var (BOOKING_HOLD_TTL etc.)
// or through a config file picked up by viper.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("booking")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8090")
	v.SetDefault("environment", "development")
	v.SetDefault("store_path", "data/seats.db")
	v.SetDefault("queue_depth", 64)
	v.SetDefault("op_timeout", "10s")
	v.SetDefault("hold_ttl", "5m")
	v.SetDefault("sweep_interval", "5s")
	v.SetDefault("payment_ttl", "10m")
	v.SetDefault("redis_url", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("pubnub_publish_key", "")
	v.SetDefault("pubnub_subscribe_key", "")
	v.SetDefault("pubnub_secret_key", "")
	v.SetDefault("enable_metrics", true)
	v.SetDefault("metrics_port", "9090")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // config file is optional, env and defaults suffice

	return &Config{
		Port:        v.GetString("port"),
		Environment: v.GetString("environment"),

		StorePath: v.GetString("store_path"),

		QueueDepth: v.GetInt("queue_depth"),
		OpTimeout:  v.GetDuration("op_timeout"),

		HoldTTL:       v.GetDuration("hold_ttl"),
		SweepInterval: v.GetDuration("sweep_interval"),

		PaymentTTL: v.GetDuration("payment_ttl"),

		RedisURL:      v.GetString("redis_url"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		PubNubPublishKey:   v.GetString("pubnub_publish_key"),
		PubNubSubscribeKey: v.GetString("pubnub_subscribe_key"),
		PubNubSecretKey:    v.GetString("pubnub_secret_key"),

		EnableMetrics: v.GetBool("enable_metrics"),
		MetricsPort:   v.GetString("metrics_port"),
	}
}
