package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Config is the configuration file of the fat12 tool.
// Flags given on the command line override it.
type Config struct {
	LogLevel   string      `yaml:"log-level"`
	LogFormat  string      `yaml:"log-format"`
	SkipChecks bool        `yaml:"skip-checks"`
	Mount      MountConfig `yaml:"mount"`
}

// MountConfig is the config specific to the `mount` subcommand.
type MountConfig struct {
	AllowOther bool          `yaml:"allow-other"`
	Debug      bool          `yaml:"debug"`
	Timeout    time.Duration `yaml:"timeout"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Mount: MountConfig{
			Timeout: time.Minute,
		},
	}
}

func defaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "fat12", "config.yml")
}

// readConfig reads the config at path. If the file does not exist the default
// config is returned, unless required is set.
func readConfig(fs afero.Fs, path string, required bool) (Config, error) {
	config := defaultConfig()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return config, nil
		}
		return config, fmt.Errorf("failed to read %q: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	return config, nil
}

// setupLogging applies the log settings to log.
func (c Config) setupLogging(log *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	switch c.LogFormat {
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}
