// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults apply to any key the file omits.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	ManifestFile string `yaml:"manifest_file"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:      "craftapp",
			DisplayName:  "Craft Application",
			Description:  "Validate and inspect craft project manifests",
			HomeDir:      ".craftapp",
			EnvPrefix:    "CRAFTAPP",
			ManifestFile: "craft.yaml",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "craftapp").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".craftapp").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CRAFTAPP").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ManifestFile returns the default manifest file name (e.g., "craft.yaml").
func ManifestFile() string { load(); return defaults.ManifestFile }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("log-level") → "CRAFTAPP_LOG_LEVEL".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(suffix, "-", "_"))
}
