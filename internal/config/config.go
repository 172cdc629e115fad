package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/lengau/craft-application/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Known configuration keys.
const (
	KeyManifestFile = "manifest-file"
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
)

var defaults = map[string]string{
	KeyManifestFile: branding.ManifestFile(),
	KeyLogLevel:     "warn",
	KeyLogFormat:    "pretty",
}

// Where a value comes from, highest precedence first.
const (
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

var (
	logLevels  = []string{"trace", "debug", "info", "warn", "warning", "error", "disabled", "off"}
	logFormats = []string{"pretty", "json"}
)

// checkValue rejects values the commands could not act on.
func checkValue(key, value string) error {
	switch key {
	case KeyLogLevel:
		if !slices.Contains(logLevels, value) {
			return fmt.Errorf("invalid %s %q (want one of: %s)", key, value, strings.Join(logLevels, ", "))
		}
	case KeyLogFormat:
		if !slices.Contains(logFormats, value) {
			return fmt.Errorf("invalid %s %q (want one of: %s)", key, value, strings.Join(logFormats, ", "))
		}
	case KeyManifestFile:
		ext := filepath.Ext(value)
		if value != filepath.Base(value) || (ext != ".yaml" && ext != ".yml") {
			return fmt.Errorf("invalid %s %q: want a bare file name ending in .yaml or .yml", key, value)
		}
	}
	return nil
}

// Dir returns the path to the config directory (~/.craftapp/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.craftapp/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Keys returns the known configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKnown reports whether key is a known configuration key.
func IsKnown(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// ManifestFile returns the configured manifest file name, falling back to
// the built-in default when the setting is empty.
func ManifestFile() string {
	if name := Get(KeyManifestFile); name != "" {
		return name
	}
	return branding.ManifestFile()
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return branding.EnvVar(key)
}

// Source reports which layer supplies the current value of key: SourceEnv,
// SourceFile or SourceDefault.
func Source(key string) string {
	if _, ok := os.LookupEnv(EnvVar(key)); ok {
		return SourceEnv
	}
	if viper.InConfig(key) {
		return SourceFile
	}
	return SourceDefault
}

// Set checks and writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := checkValue(key, value); err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
