package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

// StorageConfig selects where entities live: "memory" (default) or "postgres".
type StorageConfig struct {
	Mode     string `yaml:"mode"`
	SeedDemo bool   `yaml:"seed_demo"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	SlotEventsTopic    string   `yaml:"slot_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	// PlatformFeeRate is the marketplace cut of booking revenue (0..1).
	PlatformFeeRate float64 `yaml:"platform_fee_rate"`
	// OccupyOnBook makes a successful booking occupy the slot immediately.
	// When false the slot is held in reserved until check-in or hold expiry.
	// Defaults to true when omitted; LoadConfig leaves it non-nil.
	OccupyOnBook *bool `yaml:"occupy_on_book"`
	// HoldTTLMinutes bounds how long a pending reservation may sit without
	// progressing to occupied before the worker expires it.
	HoldTTLMinutes int `yaml:"hold_ttl_minutes"`
	// AllowDebtOnCompletion completes the booking and records the wallet
	// shortfall as debt instead of failing completion. Defaults to true when
	// omitted; LoadConfig leaves it non-nil.
	AllowDebtOnCompletion *bool `yaml:"allow_debt_on_completion"`
	// StatsCacheTTLSeconds bounds staleness of cached dashboard numbers.
	StatsCacheTTLSeconds int `yaml:"stats_cache_ttl_seconds"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Storage.Mode == "" {
		cfg.Storage.Mode = "memory"
	}
	if cfg.Booking.PlatformFeeRate == 0 {
		cfg.Booking.PlatformFeeRate = 0.25
	}
	if cfg.Booking.HoldTTLMinutes == 0 {
		cfg.Booking.HoldTTLMinutes = 15
	}
	cfg.Booking.OccupyOnBook = defaultTrue(cfg.Booking.OccupyOnBook)
	cfg.Booking.AllowDebtOnCompletion = defaultTrue(cfg.Booking.AllowDebtOnCompletion)
	if cfg.Worker.ExpirationSweepMinutes == 0 {
		cfg.Worker.ExpirationSweepMinutes = 1
	}

	return &cfg, nil
}

func defaultTrue(v *bool) *bool {
	if v != nil {
		return v
	}
	t := true
	return &t
}
