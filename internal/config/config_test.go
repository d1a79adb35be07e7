package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Config{
		S3: S3Config{Bucket: "test-bucket"},
	}
	ApplyDefaults(&cfg)
	return cfg
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 2222, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.MaxConnections)
	assert.Equal(t, ".ssh", cfg.Server.SSHPath)
	assert.Equal(t, "id_rsa", cfg.Server.PrivateKeyName)
	assert.Equal(t, "users", cfg.UserBasePath)
	assert.Equal(t, []string{"invoices", "ledgers"}, cfg.DefaultSubdirectories)
	assert.Equal(t, int64(100*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, []string{".exe", ".bat", ".sh"}, cfg.BlockedExtensions)
	assert.Equal(t, 10, cfg.MaxDirectoryDepth)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Server:      ServerConfig{Host: "10.0.0.1", Port: 9999},
		MaxFileSize: 42,
	}
	ApplyDefaults(&cfg)

	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, int64(42), cfg.MaxFileSize)
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, Validate(&cfg))
}

func TestValidate_RequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.S3.Bucket = ""
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3.bucket")
}

func TestValidate_RejectsDuplicateDefaultSubdirectories(t *testing.T) {
	cfg := validConfig()
	cfg.DefaultSubdirectories = []string{"ledgers", "ledgers"}
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
}

func TestValidate_RejectsPortOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	assert.Error(t, Validate(&cfg))
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, Validate(&cfg))
}

func TestValidate_RejectsMissingUserBasePath(t *testing.T) {
	cfg := validConfig()
	cfg.UserBasePath = ""
	assert.Error(t, Validate(&cfg))
}
