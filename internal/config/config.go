package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the portal API.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	TokenTTL               time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	NATSURL                string
	EventChannelBase       string
	SendgridAPIKey         string
	MailFromName           string
	MailFromAddress        string
	OverviewCacheTTL       time.Duration
	MaxUploadBytes         int64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("APMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "APMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "12h")
	v.SetDefault("cloudinary.folder", "apms/submissions")
	v.SetDefault("event.channel_base", "apms")
	v.SetDefault("mail.from_name", "Project Management")
	v.SetDefault("overview.cache_ttl", "5m")
	v.SetDefault("max_upload_mb", 10)

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	overviewTTL, err := time.ParseDuration(v.GetString("overview.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid overview cache ttl: %w", err)
	}

	maxUploadMB := v.GetInt64("max_upload_mb")
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTL:               tokenTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		NATSURL:                v.GetString("nats.url"),
		EventChannelBase:       v.GetString("event.channel_base"),
		SendgridAPIKey:         v.GetString("sendgrid.api_key"),
		MailFromName:           v.GetString("mail.from_name"),
		MailFromAddress:        v.GetString("mail.from_address"),
		OverviewCacheTTL:       overviewTTL,
		MaxUploadBytes:         maxUploadMB << 20,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
