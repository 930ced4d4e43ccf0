package config

import (
	"fmt"
	"strings"
	"time"
)

// validate collects all problems at once so the operator fixes the config in
// one pass instead of replaying the daemon per mistake.
func validate(c *Config, mode string) error {
	var msgs []string

	switch mode {
	case ModeDaemon, ModeBuild, ModeValidate:
	default:
		msgs = append(msgs, fmt.Sprintf("invalid mode: %s", mode))
	}

	if strings.TrimSpace(c.Main.DocsDir) == "" {
		msgs = append(msgs, "main.docs_dir is required")
	}
	if mode == ModeDaemon {
		if c.Main.ListenPort <= 0 {
			msgs = append(msgs, "main.listen_port is required")
		}
		if c.Collector.Debounce != "" {
			if _, err := time.ParseDuration(c.Collector.Debounce); err != nil {
				msgs = append(msgs, fmt.Sprintf("collector.debounce cannot parse: %q", c.Collector.Debounce))
			}
		}
		if c.Auth.User != "" && c.Auth.PasswordHash == "" {
			msgs = append(msgs, "auth.password_hash is required when auth.user is set")
		}
	}

	if len(c.Peers.URLs) > 0 {
		if _, err := time.ParseDuration(c.Peers.Timeout); err != nil {
			msgs = append(msgs, fmt.Sprintf("peers.timeout cannot parse: %q", c.Peers.Timeout))
		}
		if c.Peers.RetryCount < 0 {
			msgs = append(msgs, "peers.retry_count must be >= 0")
		}
	}

	if c.HasStorageConfigured() {
		msgs = append(msgs, validateStorage(&c.Storage)...)
	}

	if len(msgs) > 0 {
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func validateStorage(s *StorageConfig) []string {
	var msgs []string

	switch strings.ToLower(s.Name) {
	case StorageNameLocal:
		if strings.TrimSpace(s.Local.Dir) == "" {
			msgs = append(msgs, "storage.local.dir is required")
		}
	case StorageNameS3:
		if s.S3.URL == "" || s.S3.AccessKeyID == "" || s.S3.SecretAccessKey == "" ||
			s.S3.Bucket == "" || s.S3.Region == "" {
			msgs = append(msgs, "storage.s3 requires url, access_key_id, secret_access_key, bucket, region")
		}
	case StorageNameSFTP:
		if s.SFTP.Host == "" || s.SFTP.User == "" {
			msgs = append(msgs, "storage.sftp requires host and user")
		}
		if s.SFTP.PKeyPath == "" {
			msgs = append(msgs, "storage.sftp.pkey_path must be provided")
		}
	default:
		msgs = append(msgs, fmt.Sprintf("unknown storage name: %s", s.Name))
	}

	if s.Compression.Algo != "" &&
		s.Compression.Algo != RepoCompressorGzip &&
		s.Compression.Algo != RepoCompressorZstd {
		msgs = append(msgs, fmt.Sprintf("unknown compression algo: %s", s.Compression.Algo))
	}
	if s.Encryption.Algo != "" {
		if s.Encryption.Algo != RepoEncryptorAes256Gcm {
			msgs = append(msgs, fmt.Sprintf("unknown encryption algo: %s", s.Encryption.Algo))
		}
		if s.Encryption.Pass == "" {
			msgs = append(msgs, "storage.encryption.pass is required when encryption is enabled")
		}
	}

	// Retention limits are checked whenever storage is configured: manual
	// retention over the HTTP API works without the enable flag.
	if s.Retention.KeepPeriod != "" {
		if _, err := time.ParseDuration(s.Retention.KeepPeriod); err != nil {
			msgs = append(msgs, fmt.Sprintf("retention.keep_period cannot parse: %q", s.Retention.KeepPeriod))
		}
	}
	if s.Retention.KeepLast < 0 {
		msgs = append(msgs, "retention.keep_last must be >= 0")
	}
	if s.Retention.Enable && s.Retention.KeepPeriod == "" && s.Retention.KeepLast <= 0 {
		msgs = append(msgs, "storage.retention requires keep_period or keep_last")
	}

	return msgs
}
