package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventSubjectBase       string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	RosterCacheTTL         time.Duration
	GradingAPIKey          string
	GradingBaseURL         string
	GradingModel           string
	GradingTimeout         time.Duration
	MaxUploadMB            int
	SubmitRateLimit        int
	SubmitRateWindow       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RUBRIC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Rubric Grading API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "rubric/submissions")
	v.SetDefault("roster.cache_ttl", "2m")
	v.SetDefault("event.subject_base", "rubric")
	v.SetDefault("grading.model", "gpt-4o-mini")
	v.SetDefault("grading.timeout", "45s")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("submit.rate_limit", 5)
	v.SetDefault("submit.rate_window", "1m")

	rosterTTL, err := time.ParseDuration(v.GetString("roster.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid roster cache ttl: %w", err)
	}

	gradingTimeout, err := time.ParseDuration(v.GetString("grading.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("submit.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submit rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventSubjectBase:       v.GetString("event.subject_base"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		RosterCacheTTL:         rosterTTL,
		GradingAPIKey:          v.GetString("grading.api_key"),
		GradingBaseURL:         v.GetString("grading.base_url"),
		GradingModel:           v.GetString("grading.model"),
		GradingTimeout:         gradingTimeout,
		MaxUploadMB:            v.GetInt("max_upload_mb"),
		SubmitRateLimit:        v.GetInt("submit.rate_limit"),
		SubmitRateWindow:       rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradingTimeout <= 0 {
		cfg.GradingTimeout = 45 * time.Second
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}

	return cfg, nil
}
