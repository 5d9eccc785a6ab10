package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	SpreadsheetID     string
	GoogleCredentials string

	SyncIntervalSec int
	SyncFanOut      int
	CacheTTLSec     int

	PollerAutoExport bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "registry.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		SpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCredentials: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		SyncIntervalSec: getEnvInt("SYNC_INTERVAL_SEC", 300),
		SyncFanOut:      getEnvInt("SYNC_FAN_OUT", 8),
		CacheTTLSec:     getEnvInt("CACHE_TTL_SEC", 300),

		PollerAutoExport: getEnvBool("POLLER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
