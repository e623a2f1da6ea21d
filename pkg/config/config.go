package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	NodeId int `env:"NODE_ID" envDefault:"0"`

	SentryDsn string `env:"SENTRY_DSN"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	MongoUri string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDb  string `env:"MONGO_DB" envDefault:"socialfeed"`
	RedisUri string `env:"REDIS_URI" envDefault:"redis://localhost:6379/0"`

	HttpPort     string `env:"HTTP_PORT" envDefault:"3000"`
	EventsAddr   string `env:"EVENTS_ADDRESS" envDefault:":3001"`
	RealIPHeader string `env:"REAL_IP_HEADER"`

	ImageUploadUrl string `env:"IMAGE_UPLOAD_URL" envDefault:"https://api.imgbb.com/1/upload"`
	ImageApiKey    string `env:"IMAGE_API_KEY"`

	// Cron spec for the post counter reconciliation pass, empty disables it.
	ReconcileSchedule string `env:"RECONCILE_SCHEDULE" envDefault:"@every 15m"`

	ProfileCacheTTL  time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
	ProfileCacheSize int           `env:"PROFILE_CACHE_SIZE" envDefault:"10000"`

	Email EmailConfig
}

type EmailConfig struct {
	SmtpHost     string `env:"EMAIL_SMTP_HOST"`
	SmtpPort     int    `env:"EMAIL_SMTP_PORT" envDefault:"587"`
	SmtpUsername string `env:"EMAIL_SMTP_USERNAME"`
	SmtpPassword string `env:"EMAIL_SMTP_PASSWORD"`

	FromName    string `env:"EMAIL_FROM_NAME" envDefault:"Social Feed"`
	FromAddress string `env:"EMAIL_FROM_ADDRESS"`

	PlatformName     string `env:"EMAIL_PLATFORM_NAME" envDefault:"Social Feed"`
	PlatformFrontend string `env:"EMAIL_PLATFORM_FRONTEND"`
	PlatformSupport  string `env:"EMAIL_PLATFORM_SUPPORT"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
