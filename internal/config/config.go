package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Logger        LoggerConfig
	Auth          AuthConfig
	Redis         RedisConfig
	RateLimit     RateLimitConfig
	Paystack      PaystackConfig
	SMTP          SMTPConfig
	Kafka         KafkaConfig
	Risk          RiskConfig
	Store         StoreConfig
	S3            S3Config
	Coupons       CouponsConfig
	Notifications NotificationsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigin   string
	TrustedProxies  []string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds admin and customer token settings.
type AuthConfig struct {
	AdminPassword    string
	AdminTokenSecret string
	UserTokenSecret  string
	AdminTokenTTL    time.Duration
	UserTokenTTL     time.Duration
}

// RedisConfig holds the shared rate-limit store settings. Empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig bounds requests per client and route.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// PaystackConfig holds card payment gateway settings.
type PaystackConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// Enabled reports whether card checkout can be offered.
func (c PaystackConfig) Enabled() bool {
	return c.SecretKey != ""
}

// SMTPConfig holds outbound email settings.
type SMTPConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	From            string
	AdminRecipients []string
}

// Enabled reports whether email delivery is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// KafkaConfig holds order event publishing settings.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// RiskConfig holds checkout risk scoring thresholds.
type RiskConfig struct {
	HighAmountThreshold int64
	ReviewThreshold     int
}

// StoreConfig holds storefront identity settings.
type StoreConfig struct {
	Name            string
	BaseURL         string
	WhatsAppNumber  string
	ReferencePrefix string
	Currency        string
}

// S3Config holds AWS S3 configuration for coupon files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "coupons/")
}

// CouponsConfig lists coupon definition files imported by the seeder
// and the directory admin imports are confined to.
type CouponsConfig struct {
	SeedFiles []string
	ImportDir string
}

// NotificationsConfig sizes the asynchronous notification dispatcher.
type NotificationsConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
			TrustedProxies:  getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
			AdminTokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),
			UserTokenSecret:  getEnv("USER_TOKEN_SECRET", ""),
			AdminTokenTTL:    getEnvAsDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
			UserTokenTTL:     getEnvAsDuration("USER_TOKEN_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 30),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Paystack: PaystackConfig{
			SecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
			WebhookSecret: getEnv("PAYSTACK_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			Timeout:       getEnvAsDuration("PAYSTACK_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getEnvAsInt("SMTP_PORT", 587),
			User:            getEnv("SMTP_USER", ""),
			Password:        getEnv("SMTP_PASS", ""),
			From:            getEnv("SMTP_FROM", ""),
			AdminRecipients: getEnvAsList("ADMIN_NOTIFICATION_EMAILS", nil),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "storefront.orders"),
		},
		Risk: RiskConfig{
			HighAmountThreshold: getEnvAsInt64("RISK_HIGH_AMOUNT_THRESHOLD", 1500000),
			ReviewThreshold:     getEnvAsInt("RISK_REVIEW_THRESHOLD", 45),
		},
		Store: StoreConfig{
			Name:            getEnv("STORE_NAME", "Vicbest Store"),
			BaseURL:         strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
			WhatsAppNumber:  getEnv("STORE_WHATSAPP_NUMBER", "2348091747685"),
			ReferencePrefix: getEnv("ORDER_REFERENCE_PREFIX", "VICBEST"),
			Currency:        getEnv("STORE_CURRENCY", "NGN"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "coupons/"),
		},
		Coupons: CouponsConfig{
			SeedFiles: getEnvAsList("COUPON_SEED_FILES", nil),
			ImportDir: getEnv("COUPON_IMPORT_DIR", "data/coupons"),
		},
		Notifications: NotificationsConfig{
			Workers:   getEnvAsInt("NOTIFICATION_WORKERS", 2),
			QueueSize: getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 100),
			Timeout:   getEnvAsDuration("NOTIFICATION_TIMEOUT", 15*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	for _, proxy := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy: %q", proxy)
		}
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.AdminPassword == "" {
		return fmt.Errorf("admin password is required")
	}

	if c.Auth.AdminTokenSecret == "" {
		return fmt.Errorf("admin token secret is required")
	}

	if c.Auth.AdminTokenTTL <= 0 || c.Auth.UserTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests < 1 {
			return fmt.Errorf("rate limit requests must be at least 1")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}

	if c.Risk.HighAmountThreshold <= 0 {
		return fmt.Errorf("risk high amount threshold must be positive")
	}

	if c.Risk.ReviewThreshold <= 0 {
		return fmt.Errorf("risk review threshold must be positive")
	}

	if c.Store.ReferencePrefix == "" {
		return fmt.Errorf("order reference prefix is required")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	if c.Notifications.Workers < 1 {
		return fmt.Errorf("notification workers must be at least 1")
	}

	if c.Notifications.QueueSize < 1 {
		return fmt.Errorf("notification queue size must be at least 1")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the SMTP server address.
func (c *SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings such as "30s" or "12h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
