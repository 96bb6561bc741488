package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	// CronSecret is the shared bearer credential the external scheduler
	// presents when triggering jobs. Empty means triggers are disabled.
	CronSecret string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string

	DestatisBaseURL string
	BaumarktBaseURL string
	LMEBaseURL      string
	LMEAPIKey       string
	AdapterTimeout  time.Duration

	CollectInterval   time.Duration
	IndexInterval     time.Duration
	DowngradeInterval time.Duration

	SlackWebhookURL string
	FreshnessMaxAge time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "baupreis"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		CronSecret: strings.TrimSpace(getenv("CRON_SECRET", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "baupreis"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		DestatisBaseURL: getenv("DESTATIS_BASE_URL", "https://www-genesis.destatis.de/genesisWS/rest/2020"),
		BaumarktBaseURL: getenv("BAUMARKT_BASE_URL", "https://api.baumarkt-preise.de/v1"),
		LMEBaseURL:      getenv("LME_BASE_URL", "https://api.metals.dev/v1"),
		LMEAPIKey:       strings.TrimSpace(getenv("LME_API_KEY", "")),
		AdapterTimeout:  getenvDuration("ADAPTER_TIMEOUT", 8*time.Second),

		CollectInterval:   getenvDuration("COLLECT_INTERVAL", 4*time.Hour),
		IndexInterval:     getenvDuration("INDEX_INTERVAL", 6*time.Hour),
		DowngradeInterval: getenvDuration("DOWNGRADE_INTERVAL", 24*time.Hour),

		SlackWebhookURL: strings.TrimSpace(getenv("SLACK_WEBHOOK_URL", "")),
		FreshnessMaxAge: getenvDuration("FRESHNESS_MAX_AGE", 12*time.Hour),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
