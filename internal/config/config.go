// Package config loads and validates the gateway's configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (GATESFTP_*)
//  2. An optional YAML/TOML config file
//  3. Defaults applied in ApplyDefaults
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete, validated gateway configuration. Field names and
// defaults follow below.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	S3     S3Config     `mapstructure:"s3"`
	Logging LoggingConfig `mapstructure:"logging"`

	UserBasePath          string   `mapstructure:"userBasePath" validate:"required"`
	DefaultSubdirectories []string `mapstructure:"defaultSubdirectories" validate:"dive,required"`
	CreateDefaultSubdirs  bool     `mapstructure:"createDefaultSubdirs"`
	MaxFileSize           int64    `mapstructure:"maxFileSize" validate:"gt=0"`
	AllowedExtensions     []string `mapstructure:"allowedExtensions"`
	BlockedExtensions     []string `mapstructure:"blockedExtensions"`
	MaxDirectoryDepth     int      `mapstructure:"maxDirectoryDepth" validate:"gt=0"`
}

// ServerConfig is the SSH/SFTP listener configuration.
type ServerConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	MaxConnections int    `mapstructure:"maxConnections" validate:"gt=0"`
	SSHPath        string `mapstructure:"sshPath" validate:"required"`
	PrivateKeyName string `mapstructure:"privateKeyName" validate:"required"`
}

// S3Config describes the backing object-store bucket.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
}

// LoggingConfig controls log verbosity and destination.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	File    string `mapstructure:"file"`
}

// Load reads configuration from the environment (prefix GATESFTP_) and, if
// configPath is non-empty, from a config file, applies defaults, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("GATESFTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans can't be zero-value-defaulted after Unmarshal (false is
	// indistinguishable from unset), so their defaults are set here instead
	// of in ApplyDefaults.
	v.SetDefault("createDefaultSubdirs", true)
	v.SetDefault("logging.enabled", true)

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if configPath == "" {
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
