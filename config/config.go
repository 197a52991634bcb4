package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort         int
	LogLevel           string
	DatabaseURL        string
	MongoURI           string
	MongoDatabase      string
	RedisAddr          string
	RedisPassword      string
	JWTSecretKey       string
	SessionTTL         time.Duration
	AuthProviderSecret string
	SuperAdminIDs      []string
	CORSAllowedOrigins []string
	StatusSweepSpec    string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// BannersEnabled reports whether every R2 setting needed for banner uploads is present.
func (c *Config) BannersEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_DATABASE", "tournament_hub")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("STATUS_SWEEP_SPEC", "@every 30s")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:         v.GetInt("SERVER_PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDatabase:      v.GetString("MONGO_DATABASE"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		JWTSecretKey:       v.GetString("JWT_SECRET_KEY"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		AuthProviderSecret: v.GetString("AUTH_PROVIDER_SECRET"),
		SuperAdminIDs:      splitList(v.GetString("SUPER_ADMIN_EXTERNAL_IDS")),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		StatusSweepSpec:    v.GetString("STATUS_SWEEP_SPEC"),
		R2AccountID:        v.GetString("R2_ACCOUNT_ID"),
		R2AccessKeyID:      v.GetString("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  v.GetString("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       v.GetString("R2_BUCKET_NAME"),
		R2PublicBaseURL:    v.GetString("R2_PUBLIC_BASE_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	if len(c.JWTSecretKey) < 32 {
		return errors.New("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be a positive duration, got %s", c.SessionTTL)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
