// Package branding provides compile-time identity values for the CLI and the
// site it builds.
//
// branding.yaml is embedded with //go:embed and overlays the hard defaults, so
// a fork can rename the product or retune the device patterns without touching
// code.
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
	CLIName          string `yaml:"cli_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	EnvPrefix        string `yaml:"env_prefix"`
	GoModule         string `yaml:"go_module"`
	MobileUserAgent  string `yaml:"mobile_user_agent"`
	DesktopUserAgent string `yaml:"desktop_user_agent"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:          "splitbuild",
			DisplayName:      "Shirt Tracker",
			Description:      "Builds the desktop and mobile single-file web artifacts",
			EnvPrefix:        "SPLITBUILD",
			GoModule:         "github.com/shirt-tracker/splitbuild",
			MobileUserAgent:  "Android|iPhone|iPad|iPod|Mobile",
			DesktopUserAgent: "Win64|Win32|Macintosh|X11|CrOS",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "splitbuild").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name shown in the about
// dialog (e.g., "Shirt Tracker").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "SPLITBUILD").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// MobileUserAgent returns the alternation of user-agent fragments that route
// a visitor to the mobile variant.
func MobileUserAgent() string { load(); return defaults.MobileUserAgent }

// DesktopUserAgent returns the alternation of user-agent fragments that route
// a visitor away from the mobile variant.
func DesktopUserAgent() string { load(); return defaults.DesktopUserAgent }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("LOG_LEVEL") → "SPLITBUILD_LOG_LEVEL".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
