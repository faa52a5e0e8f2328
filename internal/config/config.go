// Package config is the viper-backed configuration singleton. Values
// resolve env var > config file > default; cobra flags override on top of
// that inside the commands themselves.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// DefaultStateDir is the state directory used when nothing else is
// configured, resolved relative to the working directory.
const DefaultStateDir = ".task-sync"

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Explicitly locate config.yaml with SetConfigFile.
	// Precedence: project .task-sync/config.yaml > ~/.config/task-sync/config.yaml
	configFileSet := false

	// 1. Walk up from CWD to find a project .task-sync/config.yaml, so
	//    commands work from subdirectories.
	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, DefaultStateDir, "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/task-sync/config.yaml).
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "task-sync", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file.
	// E.g. TASKSYNC_STATE_DIR, TASKSYNC_MODE, TASKSYNC_DRY_RUN.
	v.SetEnvPrefix("TASKSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("state-dir", DefaultStateDir)
	v.SetDefault("mode", "bidirectional")
	v.SetDefault("providers", []string{"google", "microsoft"})
	v.SetDefault("tombstone-ttl-days", 30)
	v.SetDefault("dry-run", false)
	v.SetDefault("json", false)
	v.SetDefault("verbose", false)
	v.SetDefault("poll-interval", time.Duration(0))
	v.SetDefault("requests-per-second", 4.0)
	v.SetDefault("log-file", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.keep", 500)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// StateDir resolves the effective state directory to an absolute path.
func StateDir() string {
	dir := GetString("state-dir")
	if dir == "" {
		dir = DefaultStateDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetFloat64 retrieves a float configuration value.
func GetFloat64(key string) float64 {
	if v == nil {
		return 0
	}
	return v.GetFloat64(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice retrieves a string slice configuration value.
func GetStringSlice(key string) []string {
	if v == nil {
		return []string{}
	}
	return v.GetStringSlice(key)
}

// Set sets a configuration value, overriding every other source. Used by
// commands to push explicit flag values down.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}
