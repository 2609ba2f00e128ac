package config

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AccessToken   string `yaml:"access_token"`
	Port          string `yaml:"port"`
	ImageLocation string `yaml:"image_location"`
	WimBinary     string `yaml:"wim_binary"`
	LogLevel      string `yaml:"log_level"`
}

// NewConfig builds the agent configuration from defaults, an optional YAML
// file named by CONFIG_FILE, and finally the environment. Later sources win.
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          "8080",
		ImageLocation: "/var/lib/wim-agent/images",
		WimBinary:     "wimlib-imagex",
		LogLevel:      "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg.AccessToken, "ACCESS_TOKEN")
	applyEnv(&cfg.Port, "PORT")
	applyEnv(&cfg.ImageLocation, "IMAGE_LOCATION")
	applyEnv(&cfg.WimBinary, "WIM_BINARY")
	applyEnv(&cfg.LogLevel, "LOG_LEVEL")

	return cfg, nil
}

func applyEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

var Module = fx.Options(
	fx.Provide(NewConfig),
)
