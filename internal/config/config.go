package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Site     SiteConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Agent    AgentConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// SiteConfig holds the fixed project-site coordinate and the default
// geofence radius. The radius can be overridden at runtime through the
// admin settings.
type SiteConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AgentConfig holds device-agent settings: where the offline queue file
// lives, which API the agent writes into, and the one-shot location timeout.
type AgentConfig struct {
	QueuePath       string
	APIBaseURL      string
	LocationTimeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "sitepulse-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Project-site geofence configuration
	siteLat, err := strconv.ParseFloat(getEnv("SITE_LATITUDE", "26.6814"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_LATITUDE: %w", err)
	}
	siteLng, err := strconv.ParseFloat(getEnv("SITE_LONGITUDE", "68.0169"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_LONGITUDE: %w", err)
	}
	siteRadius, err := strconv.ParseFloat(getEnv("SITE_RADIUS_METERS", "200"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_RADIUS_METERS: %w", err)
	}
	config.Site = SiteConfig{
		Latitude:     siteLat,
		Longitude:    siteLng,
		RadiusMeters: siteRadius,
	}

	// Storage configuration (selfie payloads)
	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	// SMTP configuration (leave decision notifications)
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@sitepulse.local"),
	}

	// Device agent configuration
	locationTimeout, err := time.ParseDuration(getEnv("AGENT_LOCATION_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_LOCATION_TIMEOUT: %w", err)
	}
	config.Agent = AgentConfig{
		QueuePath:       getEnv("AGENT_QUEUE_PATH", "attendance-offline-queue.json"),
		APIBaseURL:      getEnv("AGENT_API_BASE_URL", "http://localhost:8080"),
		LocationTimeout: locationTimeout,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Site.RadiusMeters <= 0 {
		return fmt.Errorf("SITE_RADIUS_METERS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
