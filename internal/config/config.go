package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names accepted by STORAGE_BACKEND.
const (
	StorageJSONFile = "jsonfile"
	StoragePostgres = "postgres"
)

// Rate-limit backend names accepted by RATELIMIT_BACKEND.
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	RateLimit   RateLimitConfig
	Redis       RedisConfig
	SMTP        SMTPConfig
	Kafka       KafkaConfig
	Admin       AdminConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	EnableTLS   bool
	TLSPort     int
	AutoCert    bool
	Domain      string
	CertFile    string
	KeyFile     string
	AutoCertDir string
	Email       string
}

type StorageConfig struct {
	Backend     string // jsonfile | postgres
	JSONPath    string
	PostgresURL string
}

type RateLimitConfig struct {
	Backend       string // memory | redis
	Window        time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// SMTPConfig holds the outbound mail relay settings. An empty Server
// disables the notifier entirely.
type SMTPConfig struct {
	Server    string
	Port      int
	Username  string
	Password  string
	Recipient string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AdminConfig struct {
	// Token guards GET /admin/messages. Empty leaves the endpoint open,
	// matching the legacy deployment behind a private network.
	Token string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig reads configuration from the environment, loading a .env
// file first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 5500),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			EnableTLS:    getEnvBool("SERVER_ENABLE_TLS", false),
			TLSPort:      getEnvInt("SERVER_TLS_PORT", 8443),
			AutoCert:     getEnvBool("SERVER_AUTO_CERT", false),
			Domain:       getEnv("SERVER_DOMAIN", ""),
			CertFile:     getEnv("SERVER_CERT_FILE", ""),
			KeyFile:      getEnv("SERVER_KEY_FILE", ""),
			AutoCertDir:  getEnv("SERVER_AUTOCERT_DIR", "./certs"),
			Email:        getEnv("SERVER_ACME_EMAIL", ""),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", StorageJSONFile),
			JSONPath:    getEnv("STORAGE_JSON_PATH", "messages.json"),
			PostgresURL: getEnv("STORAGE_POSTGRES_URL", ""),
		},
		RateLimit: RateLimitConfig{
			Backend:       getEnv("RATELIMIT_BACKEND", RateLimitMemory),
			Window:        getEnvDuration("RATELIMIT_WINDOW", 15*time.Second),
			SweepInterval: getEnvDuration("RATELIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		SMTP: SMTPConfig{
			Server:    getEnv("SMTP_SERVER", ""),
			Port:      getEnvInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			Recipient: getEnv("SMTP_RECIPIENT", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "contact.submissions"),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

// Validate rejects configurations the factory cannot wire.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageJSONFile:
		if c.Storage.JSONPath == "" {
			return fmt.Errorf("STORAGE_JSON_PATH is required for the jsonfile backend")
		}
	case StoragePostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("STORAGE_POSTGRES_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}

	switch c.RateLimit.Backend {
	case RateLimitMemory:
	case RateLimitRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis rate-limit backend")
		}
	default:
		return fmt.Errorf("unknown rate-limit backend: %q", c.RateLimit.Backend)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATELIMIT_WINDOW must be positive")
	}
	return nil
}

// GetServerAddress returns the host:port the HTTP server binds to.
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NotifierEnabled reports whether the SMTP relay is configured.
func (c *Config) NotifierEnabled() bool {
	return c.SMTP.Server != "" && c.SMTP.Recipient != ""
}

// EventsEnabled reports whether the Kafka publisher is configured.
func (c *Config) EventsEnabled() bool {
	return len(c.Kafka.Brokers) > 0
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
