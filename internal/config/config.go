package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Ingest IngestConfig `yaml:"ingest"`
	Search SearchConfig `yaml:"search"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// IngestConfig bounds per-transaction batch size during bulk uploads.
type IngestConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// SearchConfig caps result sizes per category.
type SearchConfig struct {
	ContactLimit int `yaml:"contact_limit"`
	SlotLimit    int `yaml:"slot_limit"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "slotpool.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Ingest: IngestConfig{
			BatchSize: 10000,
		},
		Search: SearchConfig{
			ContactLimit: 50,
			SlotLimit:    20,
		},
	}

	if path := os.Getenv("SLOTPOOL_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("SLOTPOOL_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SLOTPOOL_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SLOTPOOL_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("SLOTPOOL_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("SLOTPOOL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if sizeStr := os.Getenv("SLOTPOOL_INGEST_BATCH_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SLOTPOOL_INGEST_BATCH_SIZE: %w", err)
		}
		cfg.Ingest.BatchSize = size
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
