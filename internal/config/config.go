package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig Postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN lib/pq connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis settings (KPI aggregate cache)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig record-change event broker
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// Config xfinance-dashboard configuration (server and alerts client share it)
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Log       struct {
		Level  string
		Format string
	}
	KPI struct {
		CacheTTL time.Duration
	}
	// Gateway is the remote API the alerts client talks to.
	Gateway struct {
		BaseURL    string
		Timeout    time.Duration
		RetryCount int
	}
	// Session identity of the headless client. Role is resolved once into a capability set.
	Session struct {
		UserID int64
		Role   string
		Email  string
	}
	Grid struct {
		PageSize int
	}
	Editor struct {
		BlurDebounce time.Duration
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "xfinance")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "xfinance-dashboard")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "xfinance/inspections")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.KPI.CacheTTL = parseDuration(getEnv("KPI_CACHE_TTL", "5m"), 5*time.Minute)

	cfg.Gateway.BaseURL = strings.TrimRight(getEnv("GATEWAY_BASE_URL", "http://localhost:8080"), "/")
	cfg.Gateway.Timeout = parseDuration(getEnv("GATEWAY_TIMEOUT", "15s"), 15*time.Second)
	cfg.Gateway.RetryCount = parseInt(getEnv("GATEWAY_RETRY_COUNT", "2"), 2)

	cfg.Session.UserID = int64(parseInt(getEnv("SESSION_USER_ID", "0"), 0))
	cfg.Session.Role = getEnv("SESSION_ROLE", "")
	cfg.Session.Email = getEnv("SESSION_EMAIL", "")

	cfg.Grid.PageSize = parseInt(getEnv("GRID_PAGE_SIZE", "50"), 50)
	cfg.Editor.BlurDebounce = parseDuration(getEnv("EDITOR_BLUR_DEBOUNCE", "150ms"), 150*time.Millisecond)

	if cfg.Grid.PageSize <= 0 {
		return nil, fmt.Errorf("GRID_PAGE_SIZE must be positive, got %d", cfg.Grid.PageSize)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return d
}
