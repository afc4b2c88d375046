package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile  string // Optional: path to SQLite database file (default: ./sync.db)
	SecretKeyFile string // Optional: path to the sealing key file (default: ./sync.key)

	AllegroBaseURL string        // Optional: Allegro REST API base URL (default: production)
	AllegroAuthURL string        // Optional: Allegro OAuth token endpoint (default: production)
	RefreshMargin  time.Duration // Optional: how long before expiry tokens are renewed (default: 5m)
	IdleInterval   time.Duration // Optional: refresher re-check period while unmanaged (default: 1m)

	BaselinkerToken   string        // Optional: BaseLinker API token; empty disables the print agent
	PrintPollInterval time.Duration // Optional: print agent poll period (default: 30s)
	PrintStatusID     int64         // Optional: BaseLinker status id to watch for new shipments
	PrintNextStatusID int64         // Optional: status id orders move to after their label prints
	PrintSpoolDir     string        // Optional: directory printed labels are spooled into (default: ./spool)

	SyncInterval time.Duration // Optional: background listing sync period (default: 15m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:  getEnvOrDefault("SYNC_DATABASE_FILE", "sync.db"),
		SecretKeyFile: getEnvOrDefault("SYNC_SECRET_KEY_FILE", "sync.key"),

		AllegroBaseURL: os.Getenv("ALLEGRO_BASE_URL"), // Optional: empty keeps the production URL
		AllegroAuthURL: os.Getenv("ALLEGRO_AUTH_URL"), // Optional: empty keeps the production URL
		RefreshMargin:  getEnvDurationOrDefault("SYNC_REFRESH_MARGIN", 5*time.Minute),
		IdleInterval:   getEnvDurationOrDefault("SYNC_IDLE_INTERVAL", time.Minute),

		BaselinkerToken:   os.Getenv("BASELINKER_TOKEN"),
		PrintPollInterval: getEnvDurationOrDefault("PRINT_POLL_INTERVAL", 30*time.Second),
		PrintStatusID:     getEnvInt64OrDefault("PRINT_STATUS_ID", 0),
		PrintNextStatusID: getEnvInt64OrDefault("PRINT_NEXT_STATUS_ID", 0),
		PrintSpoolDir:     getEnvOrDefault("PRINT_SPOOL_DIR", "spool"),

		SyncInterval: getEnvDurationOrDefault("SYNC_INTERVAL", 15*time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
