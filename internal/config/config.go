package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Search    SearchConfig    `mapstructure:"search"`
	Cart      CartConfig      `mapstructure:"cart"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Client    ClientConfig    `mapstructure:"client"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds database configuration. An empty host selects the
// in-memory catalog.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details. An empty host selects
// in-memory state.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CatalogConfig struct {
	CacheTTL     int    `mapstructure:"cache_ttl"` // Seconds, 0 disables the search cache
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	SeedFile     string `mapstructure:"seed_file"` // HTML parts list loaded into the in-memory catalog
}

func (c CatalogConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

type SearchConfig struct {
	DebounceMs        int `mapstructure:"debounce_ms"`
	MinQueryLength    int `mapstructure:"min_query_length"`
	MaxCategories     int `mapstructure:"max_categories"`
	MaxProducts       int `mapstructure:"max_products"`
	RecentSearchLimit int `mapstructure:"recent_search_limit"`
}

func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

type CartConfig struct {
	TaxRate               string `mapstructure:"tax_rate"` // Decimal string, e.g. "0.18"
	DeliveryFee           int64  `mapstructure:"delivery_fee"`
	FreeDeliveryThreshold int64  `mapstructure:"free_delivery_threshold"`
	FastTrackFee          int64  `mapstructure:"fast_track_fee"`
	MaxLineQuantity       int    `mapstructure:"max_line_quantity"`
	CurrencySymbol        string `mapstructure:"currency_symbol"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ClientConfig configures the HTTP storefront client used by search sessions
type ClientConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	Token                string `mapstructure:"token"`
	StateFile            string `mapstructure:"state_file"` // Local database for recent searches when redis is not configured
}

// Load loads configuration from an optional YAML file with environment variable overrides
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the services cannot run with
func (c *Config) Validate() error {
	if c.Catalog.DefaultLimit < 1 {
		return fmt.Errorf("catalog.default_limit must be positive, got %d", c.Catalog.DefaultLimit)
	}
	if c.Catalog.MaxLimit < c.Catalog.DefaultLimit {
		return fmt.Errorf("catalog.max_limit (%d) must be >= catalog.default_limit (%d)", c.Catalog.MaxLimit, c.Catalog.DefaultLimit)
	}
	if c.Cart.DeliveryFee < 0 || c.Cart.FastTrackFee < 0 || c.Cart.FreeDeliveryThreshold < 0 {
		return fmt.Errorf("cart fees must be non-negative")
	}
	if c.Cart.MaxLineQuantity < 1 {
		return fmt.Errorf("cart.max_line_quantity must be positive, got %d", c.Cart.MaxLineQuantity)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit must allow at least one request")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("catalog.cache_ttl", 60)
	v.SetDefault("catalog.default_limit", 20)
	v.SetDefault("catalog.max_limit", 100)
	v.SetDefault("catalog.seed_file", "")

	v.SetDefault("search.debounce_ms", 300)
	v.SetDefault("search.min_query_length", 2)
	v.SetDefault("search.max_categories", 3)
	v.SetDefault("search.max_products", 8)
	v.SetDefault("search.recent_search_limit", 5)

	v.SetDefault("cart.tax_rate", "0.18")
	v.SetDefault("cart.delivery_fee", 99)
	v.SetDefault("cart.free_delivery_threshold", 5000)
	v.SetDefault("cart.fast_track_fee", 199)
	v.SetDefault("cart.max_line_quantity", 999)
	v.SetDefault("cart.currency_symbol", "₹")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("client.base_url", "http://localhost:8085/api/v1")
	v.SetDefault("client.timeout", 30)
	v.SetDefault("client.max_retries", 2)
	v.SetDefault("client.max_requests_per_second", 20)
	v.SetDefault("client.token", "")
	v.SetDefault("client.state_file", ".storefront/client.db")
}
