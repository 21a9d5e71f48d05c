// Package config loads service configuration from YAML or BCL files, a .env
// file and WORDSPLIT_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/oarkflow/bcl"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Name         string        `yaml:"name" bcl:"name,optional"`
	Addr         string        `yaml:"addr" bcl:"addr,optional"`
	BodyLimit    int           `yaml:"body_limit" bcl:"body_limit,optional"`
	MaxTextRunes int           `yaml:"max_text_runes" bcl:"max_text_runes,optional"`
	MaxBatch     int           `yaml:"max_batch" bcl:"max_batch,optional"`
	ReadTimeout  time.Duration `yaml:"read_timeout" bcl:"read_timeout,optional"`
	WriteTimeout time.Duration `yaml:"write_timeout" bcl:"write_timeout,optional"`
}

type Corpus struct {
	Source    string `yaml:"source" bcl:"source,optional"`
	Watch     bool   `yaml:"watch" bcl:"watch,optional"`
	CacheSize int    `yaml:"cache_size" bcl:"cache_size,optional"`
}

type Log struct {
	Level      string `yaml:"level" bcl:"level,optional"`
	Format     string `yaml:"format" bcl:"format,optional"`
	File       string `yaml:"file" bcl:"file,optional"`
	MaxSizeMB  int    `yaml:"max_size_mb" bcl:"max_size_mb,optional"`
	MaxBackups int    `yaml:"max_backups" bcl:"max_backups,optional"`
	MaxAgeDays int    `yaml:"max_age_days" bcl:"max_age_days,optional"`
	Compress   bool   `yaml:"compress" bcl:"compress,optional"`
}

type Batch struct {
	Workers int `yaml:"workers" bcl:"workers,optional"`
}

type Config struct {
	Server Server `yaml:"server" bcl:"server,optional"`
	Corpus Corpus `yaml:"corpus" bcl:"corpus,optional"`
	Log    Log    `yaml:"log" bcl:"log,optional"`
	Batch  Batch  `yaml:"batch" bcl:"batch,optional"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORDSPLIT_"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Name:         "wordsplit",
			Addr:         ":8080",
			BodyLimit:    1 << 20,
			MaxTextRunes: 10000,
			MaxBatch:     256,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Corpus: Corpus{CacheSize: 16},
		Log: Log{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load reads path over the defaults. An empty path skips the file. envFile is
// loaded into the process environment first; a missing envFile is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".bcl":
			if _, err := bcl.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case ".yaml", ".yml", "":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("config %s: unsupported format", path)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("ADDR", &c.Server.Addr)
	str("CORPUS", &c.Corpus.Source)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	return errors.Join(
		num("MAX_TEXT_RUNES", &c.Server.MaxTextRunes),
		num("BODY_LIMIT", &c.Server.BodyLimit),
		num("MAX_BATCH", &c.Server.MaxBatch),
		num("BATCH_WORKERS", &c.Batch.Workers),
		num("CACHE_SIZE", &c.Corpus.CacheSize),
		flag("WATCH", &c.Corpus.Watch),
	)
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BodyLimit < 0 || c.Server.MaxTextRunes < 0 || c.Server.MaxBatch < 0 {
		errs = append(errs, errors.New("server limits must not be negative"))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, errors.New("batch.workers must not be negative"))
	}
	if c.Corpus.CacheSize < 0 {
		errs = append(errs, errors.New("corpus.cache_size must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
