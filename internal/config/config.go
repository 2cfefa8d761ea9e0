package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"speedmatch-client/internal/util"
)

// Config provides configuration for the SpeedMatch client
type Config struct {
	loaded bool
	API    struct {
		BaseURL        string `yaml:"baseUrl" envconfig:"base_url"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" envconfig:"timeout_seconds"`
	}
	Poll struct {
		GameIntervalSeconds int `yaml:"gameIntervalSeconds" envconfig:"game_interval_seconds"`
		RoomIntervalSeconds int `yaml:"roomIntervalSeconds" envconfig:"room_interval_seconds"`
	}
	Log struct {
		Level string `yaml:"level"`
	}
	Storage struct {
		Path string `yaml:"path"`
	}
}

// Timeout returns the per-request timeout
func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// GamePollInterval returns how often to poll game state while PLAYING
func (c Config) GamePollInterval() time.Duration {
	return time.Duration(c.Poll.GameIntervalSeconds) * time.Second
}

// RoomPollInterval returns how often to poll the waiting room
func (c Config) RoomPollInterval() time.Duration {
	return time.Duration(c.Poll.RoomIntervalSeconds) * time.Second
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration. A missing config file is not an error;
// the defaults and environment overrides still apply
func Load() error {
	config = Config{}
	config.API.BaseURL = "http://localhost:5000"
	config.API.TimeoutSeconds = 10
	config.Poll.GameIntervalSeconds = 5
	config.Poll.RoomIntervalSeconds = 3

	configFile := util.Getenv("SPEEDMATCH_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		err = yaml.NewDecoder(file).Decode(&config)
		_ = file.Close()
		if err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("sm", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
