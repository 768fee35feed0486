package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Settings holds the tunables of the optimizer service.
type Settings struct {
	Port               string        `yaml:"port"`
	DatabaseURL        string        `yaml:"database_url"`
	RedisAddr          string        `yaml:"redis_addr"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	TimeLimit          time.Duration `yaml:"time_limit"`
	MIPGap             float64       `yaml:"mip_gap"`
	LanguageServiceURL string        `yaml:"language_service_url"`
	LanguageTimeout    time.Duration `yaml:"language_timeout"`
	SeedPath           string        `yaml:"seed_path"`
	// Embedded store for run history and the solution cache when
	// DatabaseURL is unset. Empty or "off" disables it.
	SQLitePath string `yaml:"sqlite_path"`
}

func Defaults() Settings {
	return Settings{
		Port:            "8080",
		CacheTTL:        24 * time.Hour,
		TimeLimit:       300 * time.Second,
		MIPGap:          0.01,
		LanguageTimeout: 60 * time.Second,
		SeedPath:        "data/seeds/dataset.json",
		SQLitePath:      "data/optimizer.db",
	}
}

// Load reads the optional YAML settings file at path, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("load settings: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &s); err != nil {
				return Settings{}, fmt.Errorf("load settings: parse %q: %w", path, err)
			}
		}
	}

	if err := s.applyEnv(); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	s.Port = Get("PORT", s.Port)
	s.DatabaseURL = Get("DATABASE_URL", s.DatabaseURL)
	s.RedisAddr = Get("REDIS_ADDR", s.RedisAddr)
	s.LanguageServiceURL = Get("LANGUAGE_SERVICE_URL", s.LanguageServiceURL)
	s.SeedPath = Get("SEED_PATH", s.SeedPath)
	s.SQLitePath = Get("SQLITE_PATH", s.SQLitePath)
	if strings.EqualFold(s.SQLitePath, "off") {
		s.SQLitePath = ""
	}

	var err error
	if s.CacheTTL, err = durationEnv("CACHE_TTL", s.CacheTTL); err != nil {
		return err
	}
	if s.TimeLimit, err = durationEnv("SOLVER_TIME_LIMIT", s.TimeLimit); err != nil {
		return err
	}
	if s.LanguageTimeout, err = durationEnv("LANGUAGE_TIMEOUT", s.LanguageTimeout); err != nil {
		return err
	}
	if v := Get("SOLVER_MIP_GAP", ""); v != "" {
		gap, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SOLVER_MIP_GAP=%q: %w", v, err)
		}
		s.MIPGap = gap
	}
	return nil
}

// Validate rejects settings the solver cannot run with.
func (s Settings) Validate() error {
	if s.TimeLimit <= 0 {
		return fmt.Errorf("time limit must be positive, got %s", s.TimeLimit)
	}
	if s.MIPGap < 0 || s.MIPGap >= 1 {
		return fmt.Errorf("mip gap must be in [0,1), got %g", s.MIPGap)
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", s.CacheTTL)
	}
	return nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, err)
	}
	return d, nil
}
