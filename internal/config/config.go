package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	CORS     CORSConfig
	Security SecurityConfig
	Storage  StorageConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	QueryTimeout       time.Duration
	AutoMigrate        bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// OTPConfig holds password-reset code configuration
type OTPConfig struct {
	Mode          string // "dev" echoes the code in the response, "production" hands it to the sender
	ExpiryMinutes int
	CleanupCron   string

	// Request throttling per username/email and per client IP
	MaxRequests   int
	RequestWindow time.Duration
	MaxIPRequests int
	IPWindow      time.Duration

	// Wrong or expired codes tolerated before reset is refused
	MaxFailedResets   int
	FailedResetWindow time.Duration
	MaxFailedResetsIP int
	FailedResetIPWin  time.Duration
}

// RedisConfig holds the booking lock backend. An empty Addr disables locking.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	BookingLockTTL time.Duration
}

// KafkaConfig holds the lifecycle event publisher. No brokers means events are not published.
type KafkaConfig struct {
	Brokers      []string
	BookingTopic string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost           int
	AdminCredentialsFile string
	EnableRequestLog     bool
	EnableAuditLog       bool
}

// StorageConfig holds local file storage settings
type StorageConfig struct {
	UploadDir     string
	MaxUploadSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			QueryTimeout:       time.Duration(getEnvAsInt("DATABASE_QUERY_TIMEOUT", 10)) * time.Second,
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		OTP: OTPConfig{
			Mode:          getEnv("OTP_MODE", "dev"),
			ExpiryMinutes: getEnvAsInt("OTP_EXPIRY_MINUTES", 5),
			CleanupCron:   getEnv("OTP_CLEANUP_CRON", "0 */10 * * * *"),
			MaxRequests:   getEnvAsInt("OTP_RATE_LIMIT_MAX", 3),
			RequestWindow: time.Duration(getEnvAsInt("OTP_RATE_LIMIT_WINDOW_MINUTES", 10)) * time.Minute,
			MaxIPRequests: getEnvAsInt("OTP_RATE_LIMIT_IP_MAX", 10),
			IPWindow:      time.Duration(getEnvAsInt("OTP_RATE_LIMIT_IP_WINDOW_MINUTES", 60)) * time.Minute,

			MaxFailedResets:   getEnvAsInt("OTP_RESET_ATTEMPTS_MAX", 5),
			FailedResetWindow: time.Duration(getEnvAsInt("OTP_RESET_WINDOW_MINUTES", 15)) * time.Minute,
			MaxFailedResetsIP: getEnvAsInt("OTP_RESET_IP_ATTEMPTS_MAX", 20),
			FailedResetIPWin:  time.Duration(getEnvAsInt("OTP_RESET_IP_WINDOW_MINUTES", 60)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			BookingLockTTL: time.Duration(getEnvAsInt("BOOKING_LOCK_TTL_SECONDS", 30)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvAsSlice("KAFKA_BROKERS", nil),
			BookingTopic: getEnv("KAFKA_BOOKING_TOPIC", "booking-events"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:           getEnvAsInt("BCRYPT_COST", 10),
			AdminCredentialsFile: getEnv("ADMIN_CREDENTIALS_FILE", "config/admins.yaml"),
			EnableRequestLog:     getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:       getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		Storage: StorageConfig{
			UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 5)) << 20,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.OTP.Mode != "dev" && c.OTP.Mode != "production" {
		return fmt.Errorf("invalid OTP mode: %s (must be 'dev' or 'production')", c.OTP.Mode)
	}

	if c.OTP.ExpiryMinutes <= 0 {
		return fmt.Errorf("OTP_EXPIRY_MINUTES must be positive")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.BookingTopic == "" {
		return fmt.Errorf("KAFKA_BOOKING_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
