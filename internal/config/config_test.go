package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eventzone?sslmode=disable")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.OTP.Mode)
	assert.Equal(t, 5, cfg.OTP.ExpiryMinutes)
	assert.Equal(t, 3, cfg.OTP.MaxRequests)
	assert.Equal(t, 10*time.Minute, cfg.OTP.RequestWindow)
	assert.Equal(t, time.Hour, cfg.OTP.IPWindow)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 30*time.Second, cfg.Redis.BookingLockTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxUploadSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OTP_MODE", "production")
	t.Setenv("OTP_EXPIRY_MINUTES", "10")
	t.Setenv("OTP_RESET_ATTEMPTS_MAX", "3")
	t.Setenv("OTP_RESET_WINDOW_MINUTES", "30")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DATABASE_MAX_CONNECTIONS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.OTP.ExpiryMinutes)
	assert.Equal(t, 3, cfg.OTP.MaxFailedResets)
	assert.Equal(t, 30*time.Minute, cfg.OTP.FailedResetWindow)
	assert.Equal(t, 20, cfg.OTP.MaxFailedResetsIP)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{URL: "postgres://db"},
			JWT:      JWTConfig{Secret: "a", RefreshSecret: "b"},
			OTP:      OTPConfig{Mode: "dev", ExpiryMinutes: 5},
			Kafka:    KafkaConfig{BookingTopic: "booking-events"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"missing refresh secret", func(c *Config) { c.JWT.RefreshSecret = "" }, "JWT_REFRESH_SECRET"},
		{"bad otp mode", func(c *Config) { c.OTP.Mode = "sms" }, "invalid OTP mode"},
		{"zero otp expiry", func(c *Config) { c.OTP.ExpiryMinutes = 0 }, "OTP_EXPIRY_MINUTES"},
		{"brokers without topic", func(c *Config) {
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.BookingTopic = ""
		}, "KAFKA_BOOKING_TOPIC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
