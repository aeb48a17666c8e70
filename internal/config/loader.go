package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"grocer/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/grocer"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the per-user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory.
//
// Resolution order, later entries win:
//  1. built-in defaults
//  2. config.yaml in configPath
//  3. environment variables (a .env file in the working directory is
//     loaded first, if present)
func LoadConfig(configPath string) (GrocerConfig, error) {
	config := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return GrocerConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	default:
		return GrocerConfig{}, err
	}

	applyEnvOverrides(&config)
	return config, nil
}

// applyEnvOverrides applies environment variables on top of the loaded
// configuration. A .env file in the working directory is honored so that
// deployments can keep secrets out of config.yaml.
func applyEnvOverrides(config *GrocerConfig) {
	if err := godotenv.Load(); err == nil {
		logging.Debug("ConfigLoader", "Loaded environment from .env file")
	}

	if v := envValue("GROCY_API_URL"); v != "" {
		config.Grocy.APIURL = v
	}
	if v := envValue("GROCY_API_KEY"); v != "" {
		config.Grocy.APIKey = v
	}
	if v := envValue("HA_TOKEN"); v != "" {
		config.HomeAssistant.Token = v
	}
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
