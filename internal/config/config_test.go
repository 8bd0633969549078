package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	require.Equal(t, "techcorp", cfg.Auth.TenantID)
	require.Equal(t, 30*time.Second, cfg.Auth.RefreshMargin)
	require.Equal(t, 20, cfg.Console.PageSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://quotes.example.com")
	t.Setenv("AUTH_REFRESH_MARGIN", "5m")
	t.Setenv("AUTH_TENANT_ID", "oficina-rapida")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://quotes.example.com", cfg.API.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.Auth.RefreshMargin)
	require.Equal(t, "oficina-rapida", cfg.Auth.TenantID)
}
