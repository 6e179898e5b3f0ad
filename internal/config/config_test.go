package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "xfinance", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "xfinance/inspections", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, 5*time.Minute, cfg.KPI.CacheTTL)
	assert.Equal(t, "http://localhost:8080", cfg.Gateway.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 50, cfg.Grid.PageSize)
	assert.Equal(t, 150*time.Millisecond, cfg.Editor.BlurDebounce)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("GATEWAY_BASE_URL", "http://api.local/")
	t.Setenv("SESSION_USER_ID", "7")
	t.Setenv("SESSION_ROLE", "BackOffice")
	t.Setenv("GRID_PAGE_SIZE", "25")
	t.Setenv("EDITOR_BLUR_DEBOUNCE", "300ms")
	t.Setenv("KPI_CACHE_TTL", "bogus")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "http://api.local", cfg.Gateway.BaseURL)
	assert.Equal(t, int64(7), cfg.Session.UserID)
	assert.Equal(t, "BackOffice", cfg.Session.Role)
	assert.Equal(t, 25, cfg.Grid.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Editor.BlurDebounce)
	// invalid durations fall back to the default
	assert.Equal(t, 5*time.Minute, cfg.KPI.CacheTTL)
}

func TestLoad_InvalidPageSize(t *testing.T) {
	os.Clearenv()
	t.Setenv("GRID_PAGE_SIZE", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", c.GetDSN())
}
