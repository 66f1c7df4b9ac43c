package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar   = "APP_NAME"
	appEnvVar    = "APP_ENV"
	logLevelVar  = "LOG_LEVEL"
	folderEnvVar = "FOLDER"

	// ConfigFileVar names the optional YAML overlay file.
	ConfigFileVar = "CONSOLE_CONFIG"
)

// Deployment environments understood by the API base URL selector.
const (
	EnvLocal = "local"
	EnvLive  = "live"
)

type EnvVars struct {
	file *FileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return lookup(appNameVar, e.file.AppName, "Bountip Console")
}

// GetEnv returns "local" or "live". Anything unrecognised is treated as local.
func (e EnvVars) GetEnv() string {
	env := strings.ToLower(lookup(appEnvVar, e.file.Env, EnvLocal))
	if env != EnvLive {
		return EnvLocal
	}
	return env
}

func (e EnvVars) GetLogLevel() string {
	return lookup(logLevelVar, e.file.LogLevel, "info")
}

func (e EnvVars) GetDataFolder() string {
	return lookup(folderEnvVar, e.file.DataFolder, "./data")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// lookup resolves a setting as env var, then file value, then default.
func lookup(envVar, fileValue, defaultValue string) string {
	if fileValue != "" {
		defaultValue = fileValue
	}
	return GetEnv(envVar, defaultValue)
}

func lookupDuration(envVar string, fileValue, defaultValue time.Duration) time.Duration {
	if fileValue > 0 {
		defaultValue = fileValue
	}
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func lookupInt(envVar string, fileValue, defaultValue int) int {
	if fileValue > 0 {
		defaultValue = fileValue
	}
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func lookupBool(envVar string, fileValue *bool, defaultValue bool) bool {
	if fileValue != nil {
		defaultValue = *fileValue
	}
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}
