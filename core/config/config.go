package config

import (
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Webhook  WebhookConfig
	Workers  WorkersConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// GatewayConfig configures the outbound WhatsApp messaging gateway.
type GatewayConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// WebhookConfig carries the defaults for webhook admission. Instances may
// override MaxRequests per-instance via their api settings.
type WebhookConfig struct {
	MaxRequests   int
	WindowSeconds int
}

type WorkersConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := getEnvBool("APP_DEBUG", false)

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.4.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "zapedidos.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "zaped:"),
	}

	gatewayCfg := GatewayConfig{
		BaseURL:        getEnv("WHATSAPP_GATEWAY_URL", "https://api.whatsapp.com"),
		APIKey:         getEnv("WHATSAPP_GATEWAY_API_KEY", ""),
		TimeoutSeconds: getEnvInt("WHATSAPP_GATEWAY_TIMEOUT", 30),
	}

	webhookCfg := WebhookConfig{
		MaxRequests:   getEnvInt("WEBHOOK_RATE_LIMIT", 100),
		WindowSeconds: getEnvInt("WEBHOOK_RATE_WINDOW_SECONDS", 60),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Database: dbCfg,
		Gateway:  gatewayCfg,
		Webhook:  webhookCfg,
		Workers: WorkersConfig{
			Size:      getEnvInt("RESPONSE_WORKER_POOL_SIZE", 10),
			QueueSize: getEnvInt("RESPONSE_WORKER_QUEUE_SIZE", 500),
		},
	}

	Global = cfg
	return cfg, nil
}
