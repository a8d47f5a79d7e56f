package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the teams agent. CLI flags take
// precedence; every field here carries the env-var fallback used when the
// corresponding flag is absent.
type Config struct {
	// Target application
	TeamsURL string

	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// Session persistence
	ProfileDir string

	// Auto-login credentials (optional)
	Email    string
	Password string

	// Team selection
	TeamName string

	// Join watching
	WatchJoin        bool
	WatchIntervalSec int
	WatchMinutes     int
	WatchReload      bool

	// Pre-join (join-now) watching
	WatchPrejoin      bool
	PrejoinTimeoutSec int

	// Optional local status API; disabled when empty
	APIAddr string

	// Optional join notification endpoint; disabled when empty
	NotifyEndpoint string

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		TeamsURL:          getEnvOrDefault("TEAMS_URL", "https://teams.microsoft.com/v2/"),
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		ProfileDir:        getEnvOrDefault("TEAMS_PROFILE_DIR", "./teams-profile"),
		Email:             os.Getenv("MS_EMAIL"),
		Password:          os.Getenv("MS_PASSWORD"),
		TeamName:          os.Getenv("TEAM_NAME"),
		WatchJoin:         getEnvBoolOrDefault("WATCH_JOIN", false),
		WatchIntervalSec:  getEnvIntOrDefault("WATCH_INTERVAL_SEC", 30),
		WatchMinutes:      getEnvIntOrDefault("WATCH_MINUTES", 10),
		WatchReload:       getEnvBoolOrDefault("WATCH_RELOAD", false),
		WatchPrejoin:      getEnvBoolOrDefault("WATCH_PREJOIN", false),
		PrejoinTimeoutSec: getEnvIntOrDefault("PREJOIN_TIMEOUT_SEC", 120),
		APIAddr:           os.Getenv("TEAMS_API_ADDR"),
		NotifyEndpoint:    os.Getenv("TEAMS_NOTIFY_ENDPOINT"),
		LogLevel:          strings.ToLower(getEnvOrDefault("TEAMS_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("TEAMS_LOG_FILE", "logs/teams_agent.log"),
	}

	if cfg.WatchIntervalSec < 1 {
		cfg.WatchIntervalSec = 1
	}
	if cfg.WatchMinutes < 0 {
		cfg.WatchMinutes = 0
	}
	if cfg.PrejoinTimeoutSec < 0 {
		cfg.PrejoinTimeoutSec = 0
	}

	return cfg, nil
}

// CDPURL returns the full CDP HTTP endpoint used by the chromedp remote allocator.
func (c *Config) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
