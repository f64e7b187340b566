// Package config loads go_arv settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	configData Config
	v          = viper.New()
)

// Config holds all configuration settings.
type Config struct {
	// Server configuration
	Server struct {
		Host string
		Port int
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
	// Write-protect policy file used by provision and register checks.
	Policy struct {
		Path string
	}
	// Verification settings shared with the firmware build.
	Verify struct {
		RootKeyHashes int `mapstructure:"root_key_hashes"`
	}
}

// Initialize sets up the configuration system. An explicit cfgFile overrides
// the search path.
func Initialize(cfgFile string) error {
	v = viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Set config name and paths
		v.SetConfigName("config")        // name of config file (without extension)
		v.SetConfigType("yaml")          // config file type
		v.AddConfigPath(".")             // optionally look for config in working directory
		v.AddConfigPath("$HOME/.go_arv") // look for config in .go_arv directory in home
		v.AddConfigPath("/etc/go_arv/")  // path to look for the config file in

		// Create config file if it doesn't exist
		if err := ensureConfig(); err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
	}

	// Set default values
	setDefaults()

	// Environment variables
	v.SetEnvPrefix("GOARV") // prefix for env vars
	v.AutomaticEnv()        // read in environment variables that match
	v.SetEnvKeyReplacer(    // replace dots with underscores in env vars
		strings.NewReplacer(".", "_"),
	)

	// Read in config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if we can't find a config file, we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal config into struct
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 1600)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")

	// Policy defaults
	v.SetDefault("policy.path", "")

	// Verification defaults
	v.SetDefault("verify.root_key_hashes", 2)
}

const defaultConfig = `# GO ARV Configuration File
server:
  host: localhost
  port: 1600

log:
  level: info
  format: human

policy:
  path: ""

verify:
  root_key_hashes: 2
`

// ensureConfig creates a default config file if none exists.
func ensureConfig() error {
	home := os.Getenv("HOME")
	if home == "" {
		return nil
	}
	dir := filepath.Join(home, ".go_arv")
	// Check if config dir exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Create directory
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance.
func GetViper() *viper.Viper {
	return v
}

// Refresh re-reads the merged settings into the Config struct, picking up
// flags bound to the viper instance after Initialize.
func Refresh() error {
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return nil
}
