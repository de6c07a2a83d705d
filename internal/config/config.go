package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Dataset sources.
const (
	SourceSheets   = "sheets"
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Dataset struct {
		Source      string `yaml:"source"`
		SheetID     string `yaml:"sheet_id"`
		URLTemplate string `yaml:"url_template"`
		Dir         string `yaml:"dir"`
		TTL         string `yaml:"ttl"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"dataset"`
	Quiz struct {
		Users []string `yaml:"users"`
		// SessionTTL is how long a session may stay idle before it is evicted.
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"quiz"`
}

// DefaultSessionTTL bounds how long an untouched session is kept.
const DefaultSessionTTL = "30m"

// DefaultUsers is the roster offered when none is configured.
var DefaultUsers = []string{"Alex", "Eveline"}

// Load reads YAML config from path and fills defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Dataset.Source == "" {
		c.Dataset.Source = SourceSheets
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Quiz.SessionTTL == "" {
		c.Quiz.SessionTTL = DefaultSessionTTL
	}
	if c.Quiz.Users == nil {
		c.Quiz.Users = append([]string(nil), DefaultUsers...)
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
