package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/precifica/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Pricing  PricingConfig
	Worker   WorkerConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds postgres configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the ingestion queue transport configuration
type RedisConfig struct {
	Addr  string `mapstructure:"addr"`
	Queue string `mapstructure:"queue"`
}

// CacheConfig holds the recent-invoice cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// PricingConfig holds the default pricing parameters applied when a request
// carries none of its own
type PricingConfig struct {
	EntryTaxPercent float64 `mapstructure:"entry_tax_percent"`
	MarkupXapuri    float64 `mapstructure:"markup_xapuri"`
	MarkupEpita     float64 `mapstructure:"markup_epita"`
	Rounding        string  `mapstructure:"rounding"`
	FreightShare    float64 `mapstructure:"freight_share"`
}

// WorkerConfig holds ingestion worker throttling configuration
type WorkerConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Port string `mapstructure:"port"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/precifica/")

	// Environment variable settings
	v.SetEnvPrefix("PRECIFICA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.url", "postgres://localhost:5432/precifica?sslmode=disable")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.queue", "nfe:ingest")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Pricing defaults, matching the store's usual parameters
	v.SetDefault("pricing.entry_tax_percent", 12.0)
	v.SetDefault("pricing.markup_xapuri", 160.0)
	v.SetDefault("pricing.markup_epita", 130.0)
	v.SetDefault("pricing.rounding", "90")
	v.SetDefault("pricing.freight_share", 0.0)

	// Worker defaults
	v.SetDefault("worker.rate_per_second", 5.0)
	v.SetDefault("worker.burst", 10)

	// Metrics defaults
	v.SetDefault("metrics.port", "9108")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set PRECIFICA_DATABASE_URL)")
	}

	if config.Redis.Addr == "" {
		return fmt.Errorf("redis address is required (set PRECIFICA_REDIS_ADDR)")
	}

	if config.Worker.RatePerSecond <= 0 {
		return fmt.Errorf("worker rate must be positive, got: %v", config.Worker.RatePerSecond)
	}

	if _, err := config.Pricing.Parameters(); err != nil {
		return err
	}

	return nil
}

// Parameters converts the pricing section into domain pricing parameters.
func (p PricingConfig) Parameters() (domain.PricingParameters, error) {
	rounding, err := domain.ParseRoundingPolicy(p.Rounding)
	if err != nil {
		return domain.PricingParameters{}, err
	}

	params := domain.PricingParameters{
		EntryTaxPercent: decimal.NewFromFloat(p.EntryTaxPercent),
		MarkupXapuri:    decimal.NewFromFloat(p.MarkupXapuri),
		MarkupEpita:     decimal.NewFromFloat(p.MarkupEpita),
		Rounding:        rounding,
		FreightShare:    decimal.NewFromFloat(p.FreightShare),
	}
	if err := params.Validate(); err != nil {
		return domain.PricingParameters{}, err
	}
	return params, nil
}
