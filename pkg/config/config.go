package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Gateway  GatewayConfig
	Sheets   SheetsConfig
	Sync     SyncConfig
	Notify   NotifyConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GatewayConfig holds the shared credential the chat gateway presents when
// exchanging an employee identity for an access token.
type GatewayConfig struct {
	Key string
}

// SheetsConfig points at the spreadsheet bridge service.
type SheetsConfig struct {
	BaseURL       string
	Token         string
	SpreadsheetID string
	Timeout       time.Duration
}

// SyncConfig tunes the audit-queue push loop and its retry policy.
type SyncConfig struct {
	Enabled      bool
	PushInterval time.Duration
	MaxAttempts  int
	BackoffBase  time.Duration
	BatchSize    int
}

// NotifyConfig configures outbound chat notifications and manager alerts.
type NotifyConfig struct {
	GatewayURL    string
	Timeout       time.Duration
	ManagerIDs    []int64
	AlertThrottle time.Duration
	Workers       int
	MaxRetries    int
}

// ExportsConfig gates the table export endpoints.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Gateway = GatewayConfig{Key: v.GetString("GATEWAY_KEY")}

	cfg.Sheets = SheetsConfig{
		BaseURL:       v.GetString("SHEETS_BASE_URL"),
		Token:         v.GetString("SHEETS_TOKEN"),
		SpreadsheetID: v.GetString("SHEETS_SPREADSHEET_ID"),
		Timeout:       parseDuration(v.GetString("SHEETS_TIMEOUT"), 15*time.Second),
	}

	cfg.Sync = SyncConfig{
		Enabled:      v.GetBool("SYNC_ENABLED"),
		PushInterval: parseDuration(v.GetString("SYNC_PUSH_INTERVAL"), time.Second),
		MaxAttempts:  v.GetInt("SYNC_MAX_ATTEMPTS"),
		BackoffBase:  parseDuration(v.GetString("SYNC_BACKOFF_BASE"), 500*time.Millisecond),
		BatchSize:    v.GetInt("SYNC_BATCH_SIZE"),
	}

	cfg.Notify = NotifyConfig{
		GatewayURL:    v.GetString("NOTIFY_GATEWAY_URL"),
		Timeout:       parseDuration(v.GetString("NOTIFY_TIMEOUT"), 10*time.Second),
		ManagerIDs:    parseInt64List(splitAndTrim(v.GetString("NOTIFY_MANAGER_IDS"))),
		AlertThrottle: parseDuration(v.GetString("NOTIFY_ALERT_THROTTLE"), 10*time.Minute),
		Workers:       v.GetInt("NOTIFY_WORKERS"),
		MaxRetries:    v.GetInt("NOTIFY_MAX_RETRIES"),
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "workshop")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "workshop-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GATEWAY_KEY", "dev_gateway_key")

	v.SetDefault("SHEETS_BASE_URL", "http://localhost:8090")
	v.SetDefault("SHEETS_TOKEN", "")
	v.SetDefault("SHEETS_SPREADSHEET_ID", "")
	v.SetDefault("SHEETS_TIMEOUT", "15s")

	v.SetDefault("SYNC_ENABLED", true)
	v.SetDefault("SYNC_PUSH_INTERVAL", "1s")
	v.SetDefault("SYNC_MAX_ATTEMPTS", 3)
	v.SetDefault("SYNC_BACKOFF_BASE", "500ms")
	v.SetDefault("SYNC_BATCH_SIZE", 50)

	v.SetDefault("NOTIFY_GATEWAY_URL", "http://localhost:8085")
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("NOTIFY_MANAGER_IDS", "")
	v.SetDefault("NOTIFY_ALERT_THROTTLE", "10m")
	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_MAX_RETRIES", 3)

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseInt64List(raw []string) []int64 {
	if len(raw) == 0 {
		return nil
	}
	result := make([]int64, 0, len(raw))
	for _, part := range raw {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id > 0 {
			result = append(result, id)
		}
	}
	return result
}
