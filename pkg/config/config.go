package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Monitor  MonitorConfig
	Telegram TelegramConfig
	OTEL     OTELConfig
}

// ServerConfig holds the ops HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// UpstreamConfig holds the scheduling API configuration
type UpstreamConfig struct {
	BaseURL        string
	Days           int
	TimeoutSeconds int
	UseMock        bool
	CacheTTL       int
}

// MonitorConfig holds change-detection and scheduling configuration
type MonitorConfig struct {
	DepartmentIDs       []int
	AllowedDoctors      []string
	ExcludedPositions   []string
	MaxConcurrentChecks int
	SuppressionHours    int
}

// TelegramConfig holds the Telegram Bot API configuration
type TelegramConfig struct {
	BotToken string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "slot_monitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("UPSTREAM_BASE_URL", "https://zdrav.mosreg.ru"),
			Days:           getEnvAsInt("UPSTREAM_DAYS", 21),
			TimeoutSeconds: getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 10),
			UseMock:        getEnvAsBool("UPSTREAM_USE_MOCK", false),
			CacheTTL:       getEnvAsInt("UPSTREAM_CACHE_TTL_SECONDS", 60),
		},
		Monitor: MonitorConfig{
			DepartmentIDs:       getEnvAsIntSlice("DEPARTMENT_IDS", []int{52, 53, 54}),
			AllowedDoctors:      getEnvAsSlice("ALLOWED_DOCTORS", nil),
			ExcludedPositions:   getEnvAsSlice("EXCLUDED_POSITIONS", nil),
			MaxConcurrentChecks: getEnvAsInt("MAX_CONCURRENT_CHECKS", 1),
			SuppressionHours:    getEnvAsInt("NOTIFICATION_SUPPRESSION_HOURS", 24),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "slot-monitor"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsIntSlice(key string, defaultValue []int) []int {
	parts := getEnvAsSlice(key, nil)
	if parts == nil {
		return defaultValue
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if intVal, err := strconv.Atoi(p); err == nil {
			out = append(out, intVal)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
