package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Vault    VaultConfig    `mapstructure:"vault"`
	Database DatabaseConfig `mapstructure:"database"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Log      LogConfig      `mapstructure:"log"`
}

// VaultConfig locates the device-local encrypted object store.
type VaultConfig struct {
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig locates the local SQLite bookkeeping database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// BackupConfig controls export destinations and the unattended scheduler.
type BackupConfig struct {
	Dir          string        `mapstructure:"dir"`           // operator-designated export directory
	AutoEnabled  bool          `mapstructure:"auto_enabled"`  // unattended rolling backup
	AutoInterval time.Duration `mapstructure:"auto_interval"` // eligibility window, default 24h
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: BBK_ (BullionBook).
// Nested keys use underscore: BBK_VAULT_DIR, BBK_BACKUP_DIR, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("vault.dir", "./vault")
	v.SetDefault("database.path", "./bullionbook.db")
	v.SetDefault("backup.dir", "")
	v.SetDefault("backup.auto_enabled", false)
	v.SetDefault("backup.auto_interval", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: BBK_BACKUP_DIR -> backup.dir
	v.SetEnvPrefix("BBK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
