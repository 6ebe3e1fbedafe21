package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mcdev12/draftroom/go/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	rosterBackendMemory   = "memory"
	rosterBackendPostgres = "postgres"
)

type SeedMember struct {
	Name  string `yaml:"name"`
	Score int    `yaml:"score"`
	Rank  int    `yaml:"rank"`
}

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Draft struct {
		DefaultDurationSec int          `yaml:"default_duration_sec"`
		RosterBackend      string       `yaml:"roster_backend"`
		SeedMembers        []SeedMember `yaml:"seed_members"`
	} `yaml:"draft"`

	Events struct {
		NATSURL       string `yaml:"nats_url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"events"`

	Archive struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"archive"`
}

func defaultConfig() *Config {
	cfg := &Config{Port: "8080", LogLevel: "info"}
	cfg.Draft.DefaultDurationSec = 60
	cfg.Draft.RosterBackend = rosterBackendMemory
	cfg.Draft.SeedMembers = []SeedMember{
		{Name: "John Doe", Score: 10, Rank: 5},
		{Name: "Jane Smith", Score: 15, Rank: 3},
		{Name: "Tommy Lee", Score: 8, Rank: 7},
	}
	cfg.Events.SubjectPrefix = "draft.events"
	return cfg
}

// loadConfig layers the YAML file at CONFIG_PATH (if any) and then environment overrides on the defaults.
func loadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := getEnv("CONFIG_PATH", ""); path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Draft.DefaultDurationSec = getEnvAsInt("DEFAULT_DURATION_SEC", cfg.Draft.DefaultDurationSec)
	cfg.Draft.RosterBackend = getEnv("ROSTER_BACKEND", cfg.Draft.RosterBackend)
	cfg.Events.NATSURL = getEnv("NATS_URL", cfg.Events.NATSURL)
	cfg.Events.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", cfg.Events.SubjectPrefix)
	cfg.Archive.Enabled = getEnvAsBool("ARCHIVE_ENABLED", cfg.Archive.Enabled)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Draft.DefaultDurationSec <= 0 {
		errs = append(errs, fmt.Errorf("draft.default_duration_sec must be positive, got %d", c.Draft.DefaultDurationSec))
	}
	switch c.Draft.RosterBackend {
	case rosterBackendMemory, rosterBackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("draft.roster_backend must be %q or %q, got %q",
			rosterBackendMemory, rosterBackendPostgres, c.Draft.RosterBackend))
	}
	if c.Events.SubjectPrefix == "" {
		errs = append(errs, errors.New("events.subject_prefix must not be empty"))
	}
	return errors.Join(errs...)
}

// needsDatabase reports whether any component is backed by Postgres.
func (c *Config) needsDatabase() bool {
	return c.Draft.RosterBackend == rosterBackendPostgres || c.Archive.Enabled
}

func (c *Config) seedMembers() []models.Member {
	members := make([]models.Member, 0, len(c.Draft.SeedMembers))
	for _, m := range c.Draft.SeedMembers {
		members = append(members, models.Member{Name: m.Name, Score: m.Score, Rank: m.Rank})
	}
	return members
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
