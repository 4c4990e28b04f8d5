package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CSE_STORE_PAGESIZE.
const EnvPrefix = "CSE"

// Entity selects the vendor and namespace of the cluster entity type.
type Entity struct {
	Vendor string `yaml:"vendor" mapstructure:"vendor"`
	Nss    string `yaml:"nss" mapstructure:"nss"`
}

// Store configures the entity store.
type Store struct {
	// Backend is "badger" or "memory"
	Backend  string `yaml:"backend" mapstructure:"backend"`
	PageSize int    `yaml:"pageSize" mapstructure:"pageSize"`
}

// Retry bounds retries of transient lookup failures.
type Retry struct {
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// SizingPolicy configures the default compute policy lookup. Overrides are keyed by
// "org/vdc".
type SizingPolicy struct {
	Default   string            `yaml:"default" mapstructure:"default"`
	Overrides map[string]string `yaml:"overrides" mapstructure:"overrides"`
	Retry     Retry             `yaml:"retry" mapstructure:"retry"`
}

// Migration configures the scheduled schema migration sweep.
type Migration struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
	Source   string `yaml:"source" mapstructure:"source"`
	Target   string `yaml:"target" mapstructure:"target"`
	DryRun   bool   `yaml:"dryRun" mapstructure:"dryRun"`
}

// Config is the daemon and CLI configuration.
type Config struct {
	DataDir      string       `yaml:"dataDir" mapstructure:"dataDir"`
	Log          log.Config   `yaml:"log" mapstructure:"log"`
	Entity       Entity       `yaml:"entity" mapstructure:"entity"`
	Store        Store        `yaml:"store" mapstructure:"store"`
	SizingPolicy SizingPolicy `yaml:"sizingPolicy" mapstructure:"sizingPolicy"`
	Migration    Migration    `yaml:"migration" mapstructure:"migration"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Log:     log.DefaultConfig(),
		Entity:  Entity{Vendor: types.DefaultVendor, Nss: types.DefaultNss},
		Store:   Store{Backend: store.BackendBadger, PageSize: 25},
		SizingPolicy: SizingPolicy{
			Overrides: map[string]string{},
			Retry:     Retry{Timeout: 10 * time.Second, Interval: 200 * time.Millisecond},
		},
		Migration: Migration{
			Schedule: "@every 1h",
			Source:   string(types.Generation1),
			Target:   string(types.Generation2),
		},
	}
}

func defaultDataDir() string {
	if st, err := os.Stat("/var/lib/cse"); err == nil && st.IsDir() {
		return "/var/lib/cse"
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return "./data"
	}
	return filepath.Join(home, ".cse")
}

// StorePath is the badger directory under DataDir.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "entities")
}

// SourceType returns the entity type the migration sweep reads.
func (c *Config) SourceType() (types.EntityTypeRef, error) {
	gen, err := types.ParseGeneration(c.Migration.Source)
	if err != nil {
		return types.EntityTypeRef{}, err
	}
	return types.EntityTypeRef{Vendor: c.Entity.Vendor, Nss: c.Entity.Nss, Version: string(gen)}, nil
}

// Validate checks values viper cannot type check.
func (c *Config) Validate() error {
	if c.Store.PageSize <= 0 {
		return fmt.Errorf("store.pageSize must be positive, got %d", c.Store.PageSize)
	}
	switch c.Store.Backend {
	case store.BackendBadger, store.BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Entity.Vendor == "" || c.Entity.Nss == "" {
		return errors.New("entity.vendor and entity.nss are required")
	}
	if _, err := types.ParseGeneration(c.Migration.Source); err != nil {
		return fmt.Errorf("migration.source: %w", err)
	}
	if _, err := types.ParseGeneration(c.Migration.Target); err != nil {
		return fmt.Errorf("migration.target: %w", err)
	}
	if c.SizingPolicy.Retry.Interval <= 0 || c.SizingPolicy.Retry.Timeout < c.SizingPolicy.Retry.Interval {
		return errors.New("sizingPolicy.retry needs 0 < interval <= timeout")
	}
	return nil
}

// Load reads path, or cse.yaml from the working directory and /etc/cse when path is
// empty, on top of the defaults. Environment variables prefixed with CSE override
// file values. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cse")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cse/")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys that are not
// present in the file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("dataDir", cfg.DataDir)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("log.maxSizeMB", cfg.Log.MaxSizeMB)
	v.SetDefault("log.maxBackups", cfg.Log.MaxBackups)
	v.SetDefault("log.noColor", cfg.Log.NoColor)
	v.SetDefault("log.enableCaller", cfg.Log.EnableCaller)
	v.SetDefault("log.redactedFields", cfg.Log.RedactedFields)
	v.SetDefault("entity.vendor", cfg.Entity.Vendor)
	v.SetDefault("entity.nss", cfg.Entity.Nss)
	v.SetDefault("store.backend", cfg.Store.Backend)
	v.SetDefault("store.pageSize", cfg.Store.PageSize)
	v.SetDefault("sizingPolicy.default", cfg.SizingPolicy.Default)
	v.SetDefault("sizingPolicy.retry.timeout", cfg.SizingPolicy.Retry.Timeout)
	v.SetDefault("sizingPolicy.retry.interval", cfg.SizingPolicy.Retry.Interval)
	v.SetDefault("migration.enabled", cfg.Migration.Enabled)
	v.SetDefault("migration.schedule", cfg.Migration.Schedule)
	v.SetDefault("migration.source", cfg.Migration.Source)
	v.SetDefault("migration.target", cfg.Migration.Target)
	v.SetDefault("migration.dryRun", cfg.Migration.DryRun)
}
