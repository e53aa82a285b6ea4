package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup. Values come from an
// optional YAML file, overridden by environment variables.
type Config struct {
	Port      string `yaml:"port"`
	RedisAddr string `yaml:"redisAddr"` // empty means in-memory session storage
	JWTSecret string `yaml:"jwtSecret"`

	// SimulateLatency reproduces the mock-backend round-trip delays.
	// Disabled in tests.
	SimulateLatency bool `yaml:"simulateLatency"`

	// ExecWallTime bounds a single JavaScript evaluation.
	ExecWallTime time.Duration `yaml:"execWallTime"`

	// StatsSchedule is the cron expression for the room stats snapshot.
	StatsSchedule string `yaml:"statsSchedule"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            "8080",
		JWTSecret:       "dev",
		SimulateLatency: true,
		ExecWallTime:    5 * time.Second,
		StatsSchedule:   "@every 1m",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.StatsSchedule = getEnvOrDefault("STATS_SCHEDULE", cfg.StatsSchedule)
	if v := os.Getenv("SIMULATE_LATENCY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SIMULATE_LATENCY: %w", err)
		}
		cfg.SimulateLatency = b
	}
	if v := os.Getenv("EXEC_WALL_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXEC_WALL_TIME: %w", err)
		}
		cfg.ExecWallTime = d
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("port must not be empty")
	}
	if cfg.ExecWallTime <= 0 {
		return errors.New("execWallTime must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
