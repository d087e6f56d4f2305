package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
	// RestoreOnStart merges the snapshot file into the store at boot.
	// Disable when the backing store is durable on its own.
	RestoreOnStart bool `yaml:"restore_on_start"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "data/songwork.db",
		},
		Snapshot: SnapshotConfig{
			Path:           "data/backup.json",
			RestoreOnStart: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SONGWORK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("SONGWORK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SONGWORK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SONGWORK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("SONGWORK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if snapPath := os.Getenv("SONGWORK_SNAPSHOT_PATH"); snapPath != "" {
		cfg.Snapshot.Path = snapPath
	}
	if restoreStr := os.Getenv("SONGWORK_RESTORE_ON_START"); restoreStr != "" {
		restore, err := strconv.ParseBool(restoreStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SONGWORK_RESTORE_ON_START: %w", err)
		}
		cfg.Snapshot.RestoreOnStart = restore
	}
	if level := os.Getenv("SONGWORK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
