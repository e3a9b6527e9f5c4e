package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Broker   BrokerConfig
	Pricing  PricingConfig
	Trading  TradingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	TicksTopic    string
	ConsumerGroup string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BrokerConfig holds the MStocks trading API configuration. DemoMode swaps
// the REST client for the in-memory fake.
type BrokerConfig struct {
	BaseURL      string
	APIKey       string
	AccessToken  string
	DemoMode     bool
	PollInterval time.Duration
	MaxPolls     int
}

// PricingConfig holds the quote endpoint and cache settings.
type PricingConfig struct {
	BaseURL         string
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

// TradingConfig holds the strategy thresholds and the money-management base
// amount.
type TradingConfig struct {
	ProfitTargetPct       decimal.Decimal
	AveragingThresholdPct decimal.Decimal
	MaxETFsPerSector      int
	DailySellLimit        int
	BaseTradingAmount     decimal.Decimal
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8082"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "postgres"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "trader"),
			Password: getEnv("DB_PASSWORD", "trader5"),
			DBName:   getEnv("DB_NAME", "etf_trading"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:       parseBrokers(getEnv("KAFKA_BROKERS", "localhost:19092")),
			OrdersTopic:   getEnv("KAFKA_ORDERS_TOPIC", "trading.orders"),
			TicksTopic:    getEnv("KAFKA_TICKS_TOPIC", "trading.ticks"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "etf-trading-service"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Broker: BrokerConfig{
			BaseURL:      getEnv("MSTOCKS_BASE_URL", "https://api.mstock.trade/openapi/typea"),
			APIKey:       getEnv("MSTOCKS_API_KEY", ""),
			AccessToken:  getEnv("MSTOCKS_ACCESS_TOKEN", ""),
			DemoMode:     getEnvBool("BROKER_DEMO_MODE", true),
			PollInterval: getEnvDuration("ORDER_POLL_INTERVAL", 2*time.Second),
			MaxPolls:     getEnvInt("ORDER_MAX_POLLS", 15),
		},
		Pricing: PricingConfig{
			BaseURL:         getEnv("PRICE_API_URL", "http://localhost:5000"),
			CacheTTL:        getEnvDuration("PRICE_CACHE_TTL", time.Minute),
			RefreshInterval: getEnvDuration("PRICE_REFRESH_INTERVAL", 5*time.Minute),
		},
		Trading: TradingConfig{
			ProfitTargetPct:       getEnvDecimal("PROFIT_TARGET_PCT", "6"),
			AveragingThresholdPct: getEnvDecimal("AVERAGING_THRESHOLD_PCT", "2.5"),
			MaxETFsPerSector:      getEnvInt("MAX_ETFS_PER_SECTOR", 3),
			DailySellLimit:        getEnvInt("DAILY_SELL_LIMIT", 1),
			BaseTradingAmount:     getEnvDecimal("BASE_TRADING_AMOUNT", "10000"),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
