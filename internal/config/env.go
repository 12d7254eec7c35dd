package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Runtime holds the settings read from the environment at startup.
// Empty FeedPort and Language mean "use the stored preference".
type Runtime struct {
	DataDir           string
	ReconcileInterval time.Duration
	FeedPort          string
	Language          string
}

// Load reads an optional .env file (or the given files) and then the process
// environment. Invalid values fall back to defaults with a warning.
func Load(files ...string) (Runtime, error) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug(MsgEnvMissing, LogKeyComponent, CompConfig, LogKeyError, err)
	}

	dataDir, err := dataDir()
	if err != nil {
		return Runtime{}, err
	}

	return Runtime{
		DataDir:           dataDir,
		ReconcileInterval: time.Duration(getEnvIntOrDefault(EnvReconcileMinutes, int(DefaultReconcileInterval/time.Minute))) * time.Minute,
		FeedPort:          getEnvPort(EnvFeedPort),
		Language:          getEnvLanguage(EnvLanguage),
	}, nil
}

func dataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("%s: %w", ErrDataDir, err)
		}
		return abs, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrDataDir, err)
	}
	return filepath.Join(base, AppID), nil
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		warnInvalid(key, raw)
		return defaultVal
	}
	return val
}

func getEnvPort(key string) string {
	raw := os.Getenv(key)
	if raw == "" {
		return ""
	}
	if port, err := strconv.Atoi(raw); err != nil || port < MinPort || port > MaxPort {
		warnInvalid(key, raw)
		return ""
	}
	return raw
}

func getEnvLanguage(key string) string {
	raw := os.Getenv(key)
	if raw == "" {
		return ""
	}
	if !slices.Contains(SupportedLanguages, raw) {
		warnInvalid(key, raw)
		return ""
	}
	return raw
}

func warnInvalid(key, raw string) {
	slog.Warn(MsgEnvInvalid,
		LogKeyComponent, CompConfig,
		LogKeyEnv, key,
		LogKeyValue, raw)
}
