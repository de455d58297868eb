// Package config loads service configuration from a YAML file with
// environment overrides. Twilio credentials come from the environment only.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"remy/internal/notify"
)

// Config is the full service configuration.
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Menu struct {
		Path string `yaml:"path"`
	} `yaml:"menu"`

	Cart struct {
		Path string `yaml:"path"`
		// MemoryOnly keeps the cart in process memory instead of a file,
		// for read-only deployment targets. State does not survive restarts.
		MemoryOnly bool `yaml:"memory_only"`
	} `yaml:"cart"`

	Restaurant struct {
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
	} `yaml:"restaurant"`

	Twilio notify.Config `yaml:"-"`
}

// Load reads configuration from the YAML file at path (if it exists), then
// applies environment overrides. A missing file is not an error; the
// defaults cover local development.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Menu.Path = "data/menu.json"
	cfg.Cart.Path = "data/cart.json"

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Server.Port = port
	}
	if os.Getenv("CART_MEMORY_ONLY") == "1" {
		cfg.Cart.MemoryOnly = true
	}

	cfg.Twilio = notify.Config{
		AccountSID:          os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:           os.Getenv("TWILIO_AUTH_TOKEN"),
		MessagingServiceSID: os.Getenv("TWILIO_MESSAGING_SERVICE_SID"),
		ToNumber:            os.Getenv("DEMO_TO_NUMBER"),
	}

	return cfg, nil
}
