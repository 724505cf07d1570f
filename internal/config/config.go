package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds stream-server configuration.
type Config struct {
	AppEnv   string // APP_ENV
	AppHost  string // APP_HOST
	HTTPPort string // APP_PORT or HTTP_PORT
	LogLevel string // LOG_LEVEL

	// Allowed browser origin for WebSocket upgrades ("" allows any).
	AllowedOrigin string

	// PostgreSQL identity store (users/events). Optional: the relay runs
	// without it when DB_DISABLE is set.
	DBDisable bool
	DB        struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	// WebSocket
	WSReadBufferSize  int
	WSWriteBufferSize int
	WSMaxMessageSize  int64
	WSPingInterval    time.Duration
	WSPongWait        time.Duration
	WSWriteWait       time.Duration

	// How long ended streams stay listed before the registry evicts them,
	// and how often the sweeper runs.
	SessionRetention     time.Duration
	SessionSweepInterval time.Duration
}

// Load loads config from environment (.env if present). A value that fails
// to parse is an error, not a silent zero.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readBuf, err := getEnvInt("WS_READ_BUFFER_SIZE", 4096)
	if err != nil {
		return nil, err
	}
	writeBuf, err := getEnvInt("WS_WRITE_BUFFER_SIZE", 4096)
	if err != nil {
		return nil, err
	}
	maxMsg, err := getEnvInt64("WS_MAX_MESSAGE_SIZE", 524288)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		AppHost:           getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:          firstEnv("APP_PORT", "HTTP_PORT", "3001"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", ""),
		DBDisable:         getEnv("DB_DISABLE", "") == "true",
		WSReadBufferSize:  readBuf,
		WSWriteBufferSize: writeBuf,
		WSMaxMessageSize:  maxMsg,
	}
	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"WS_PING_INTERVAL", 30 * time.Second, &cfg.WSPingInterval},
		{"WS_PONG_WAIT", 60 * time.Second, &cfg.WSPongWait},
		{"WS_WRITE_WAIT", 10 * time.Second, &cfg.WSWriteWait},
		{"SESSION_RETENTION", time.Hour, &cfg.SessionRetention},
		{"SESSION_SWEEP_INTERVAL", 5 * time.Minute, &cfg.SessionSweepInterval},
	}
	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "stream_app")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

// Validate checks required fields and production safety.
func (c *Config) Validate() error {
	if c.WSPongWait <= c.WSPingInterval {
		return errors.New("config: WS_PONG_WAIT must be longer than WS_PING_INTERVAL")
	}
	if c.DBDisable {
		return nil
	}
	if c.DB.Host == "" {
		return errors.New("config: DB_HOST is required")
	}
	if c.DB.User == "" {
		return errors.New("config: DB_USER is required")
	}
	if c.DB.Database == "" {
		return errors.New("config: DB_DATABASE is required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

// DatabaseURL returns a postgres URL for golang-migrate.
func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	keys := keysAndDef[:len(keysAndDef)-1]
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
