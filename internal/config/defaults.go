package config

// ApplyDefaults fills in any zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 2222
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 100
	}
	if cfg.Server.SSHPath == "" {
		cfg.Server.SSHPath = ".ssh"
	}
	if cfg.Server.PrivateKeyName == "" {
		cfg.Server.PrivateKeyName = "id_rsa"
	}
	if cfg.UserBasePath == "" {
		cfg.UserBasePath = "users"
	}
	if len(cfg.DefaultSubdirectories) == 0 {
		cfg.DefaultSubdirectories = []string{"invoices", "ledgers"}
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 100 * 1024 * 1024
	}
	if len(cfg.BlockedExtensions) == 0 {
		cfg.BlockedExtensions = []string{".exe", ".bat", ".sh"}
	}
	if cfg.MaxDirectoryDepth == 0 {
		cfg.MaxDirectoryDepth = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
}
