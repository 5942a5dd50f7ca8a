package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shirt-tracker/splitbuild/internal/branding"
)

const (
	fileName = ".splitbuild"
	fileType = "yaml"
)

// Recognized keys.
const (
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyDeployDate    = "deploy_date"
	KeyWatchDebounce = "watch_debounce"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// hostDeployDateEnv is set by the static host during deploys.
const hostDeployDateEnv = "NETLIFY_DEPLOY_DATE"

var defaults = map[string]string{
	KeyLogLevel:      "info",
	KeyLogFormat:     FormatConsole,
	KeyDeployDate:    "",
	KeyWatchDebounce: "300ms",
}

// Keys returns the recognized keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilePath returns the project config file path for root.
func FilePath(root string) string {
	return filepath.Join(root, fileName+"."+fileType)
}

// Load initializes Viper to read the project config file under root and the
// environment. A missing file is not an error; a malformed one is.
func Load(root string) error {
	viper.Reset()
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetConfigFile(FilePath(root))
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	if err := viper.BindEnv(KeyDeployDate, branding.EnvVar(strings.ToUpper(KeyDeployDate)), hostDeployDateEnv); err != nil {
		return fmt.Errorf("binding %s: %w", KeyDeployDate, err)
	}

	if _, err := os.Stat(FilePath(root)); os.IsNotExist(err) {
		return nil
	}
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", FilePath(root), err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set validates and writes a config key-value pair to the project file
// under root.
func Set(root, key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}

	viper.Set(key, value)

	if err := viper.WriteConfigAs(FilePath(root)); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func validate(key, value string) error {
	switch key {
	case KeyLogLevel:
		switch value {
		case "debug", "info", "warn", "error":
			return nil
		}
		return fmt.Errorf("invalid %s %q (want debug, info, warn or error)", key, value)
	case KeyLogFormat:
		if value == FormatConsole || value == FormatJSON {
			return nil
		}
		return fmt.Errorf("invalid %s %q (want %s or %s)", key, value, FormatConsole, FormatJSON)
	case KeyWatchDebounce:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q (want a positive duration such as 300ms)", key, value)
		}
		return nil
	case KeyDeployDate:
		return nil
	}
	return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
}

// LogLevel returns the configured log level.
func LogLevel() string { return Get(KeyLogLevel) }

// LogFormat returns the configured log format.
func LogFormat() string { return Get(KeyLogFormat) }

// DeployDate returns the deploy date to stamp, or "" to use the build time.
func DeployDate() string { return Get(KeyDeployDate) }

// WatchDebounce returns the quiet period before a watch-mode rebuild.
func WatchDebounce() (time.Duration, error) {
	raw := Get(KeyWatchDebounce)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", KeyWatchDebounce, raw)
	}
	return d, nil
}
