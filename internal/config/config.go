package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the console application configuration
type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Console ConsoleConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	TenantID string
	// RefreshMargin is the lead time before access-token expiry at which
	// a proactive refresh is triggered. The backend issues short-lived
	// tokens, so the default mirrors the 30s margin the console has always
	// used; deployments that prefer the documented 5 minute lead set
	// AUTH_REFRESH_MARGIN=5m.
	RefreshMargin time.Duration
}

type ConsoleConfig struct {
	PageSize     int
	PollInterval time.Duration
	LogLevel     string
}

const defaultTenantID = "techcorp"

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("API_BASE_URL", "http://localhost:8080")
	viper.SetDefault("API_TIMEOUT", "15s")
	viper.SetDefault("AUTH_TENANT_ID", defaultTenantID)
	viper.SetDefault("AUTH_REFRESH_MARGIN", "30s")
	viper.SetDefault("CONSOLE_PAGE_SIZE", 20)
	viper.SetDefault("CONSOLE_POLL_INTERVAL", "30s")
	viper.SetDefault("CONSOLE_LOG_LEVEL", "info")

	cfg := &Config{
		API: APIConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: viper.GetDuration("API_TIMEOUT"),
		},
		Auth: AuthConfig{
			TenantID:      viper.GetString("AUTH_TENANT_ID"),
			RefreshMargin: viper.GetDuration("AUTH_REFRESH_MARGIN"),
		},
		Console: ConsoleConfig{
			PageSize:     viper.GetInt("CONSOLE_PAGE_SIZE"),
			PollInterval: viper.GetDuration("CONSOLE_POLL_INTERVAL"),
			LogLevel:     viper.GetString("CONSOLE_LOG_LEVEL"),
		},
	}

	return cfg, nil
}
