package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultTargetEnv = ".env"
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

type Config struct {
	TargetEnv string `yaml:"target_env,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
}

// LoadConfig reads the config at path. With an empty path the config is
// searched for upwards from the working directory, and finding none yields
// the defaults. A relative target_env is resolved against the directory
// holding the config file.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		cwd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("get working directory: %w", err)
		}
		found, err := FindConfig(cwd)
		if err != nil {
			return Config{}, err
		}
		if found == "" {
			return Config{}.withDefaults(), nil
		}
		path = found
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no config found at %s. Run: envdb init", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.TargetEnv != "" && !filepath.IsAbs(cfg.TargetEnv) {
		cfg.TargetEnv = filepath.Join(filepath.Dir(path), cfg.TargetEnv)
	}
	return cfg.withDefaults(), nil
}

func (c Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (use text or json)", c.LogFormat)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.TargetEnv == "" {
		c.TargetEnv = defaultTargetEnv
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	return c
}

// FindConfig walks up from start looking for .envdb.yaml. It returns "" when
// no directory up to the filesystem root has one.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, DefaultConfigPath())
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func DefaultConfigPath() string {
	return ".envdb.yaml"
}
