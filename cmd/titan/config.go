package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/titan"
	"github.com/spf13/viper"
)

const (
	configDir  = ".titan"
	configName = "config"
	logName    = "titan.log"
	envPrefix  = "TITAN"
)

// config is the resolved configuration. Sources, in precedence order:
// flags, TITAN_* environment variables, the config file, defaults.
type config struct {
	BaseURL   string
	Reasoning bool
	Markers   titan.Markers
	LogLevel  log.Level
	LogFile   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:5000")
	v.SetDefault("reasoning", false)
	v.SetDefault("markers.open", titan.DefaultMarkers.Open)
	v.SetDefault("markers.close", titan.DefaultMarkers.Close)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// readConfig loads the config file into v. An explicit path must exist; the
// default ~/.titan/config.yaml is optional.
func readConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, configDir))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (config, error) {
	level, err := log.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return config{}, fmt.Errorf("log.level: %w", err)
	}
	cfg := config{
		BaseURL:   strings.TrimRight(v.GetString("base_url"), "/"),
		Reasoning: v.GetBool("reasoning"),
		Markers: titan.Markers{
			Open:  v.GetString("markers.open"),
			Close: v.GetString("markers.close"),
		},
		LogLevel: level,
		LogFile:  v.GetString("log.file"),
	}
	if cfg.BaseURL == "" {
		return config{}, errors.New("base_url must not be empty")
	}
	if cfg.Markers.Open == "" || cfg.Markers.Close == "" {
		return config{}, errors.New("markers.open and markers.close must not be empty")
	}
	return cfg, nil
}

// logPath returns where the TUI writes its log.
func (c config) logPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir, logName), nil
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
