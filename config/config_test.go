package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvsWithPrefix(t *testing.T) {
	t.Setenv("TRAITDEX_DOCS_DIR", "/srv/docs")
	t.Setenv("TRAITDEX_AUTH_USER", "ops")
	t.Setenv("HOME_DIR_UNRELATED", "/home/ops")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expands prefixed placeholder",
			input:    "docs_dir: ${TRAITDEX_DOCS_DIR}",
			expected: "docs_dir: /srv/docs",
		},
		{
			name:     "expands multiple placeholders",
			input:    "${TRAITDEX_DOCS_DIR}/${TRAITDEX_AUTH_USER}",
			expected: "/srv/docs/ops",
		},
		{
			name:     "leaves foreign placeholders alone",
			input:    "path: ${HOME_DIR_UNRELATED}",
			expected: "path: ${HOME_DIR_UNRELATED}",
		},
		{
			name:     "unset prefixed var becomes empty",
			input:    "x: ${TRAITDEX_NOT_SET}",
			expected: "x: ",
		},
		{
			name:     "no placeholders",
			input:    "plain text $TRAITDEX_DOCS_DIR without braces",
			expected: "plain text $TRAITDEX_DOCS_DIR without braces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvsWithPrefix(tt.input, "TRAITDEX_"))
		})
	}
}

func validDaemonConfig() *Config {
	return &Config{
		Main: MainConfig{
			DocsDir:    "/srv/docs",
			ListenPort: 7070,
		},
		Collector: CollectorConfig{
			Watch:    true,
			Debounce: "2s",
		},
		Peers: PeersConfig{
			Timeout:    "5s",
			RetryCount: 2,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid daemon config",
			mode:   ModeDaemon,
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown mode",
			mode:    "serve",
			mutate:  func(c *Config) {},
			wantErr: "invalid mode",
		},
		{
			name:    "missing docs dir",
			mode:    ModeDaemon,
			mutate:  func(c *Config) { c.Main.DocsDir = " " },
			wantErr: "main.docs_dir is required",
		},
		{
			name:    "missing listen port",
			mode:    ModeDaemon,
			mutate:  func(c *Config) { c.Main.ListenPort = 0 },
			wantErr: "main.listen_port is required",
		},
		{
			name:    "bad debounce",
			mode:    ModeDaemon,
			mutate:  func(c *Config) { c.Collector.Debounce = "2 seconds" },
			wantErr: "collector.debounce cannot parse",
		},
		{
			name:    "auth user without password hash",
			mode:    ModeDaemon,
			mutate:  func(c *Config) { c.Auth.User = "ops" },
			wantErr: "auth.password_hash is required",
		},
		{
			name: "peers need a parseable timeout",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Peers.URLs = []string{"https://docs.example.org"}
				c.Peers.Timeout = "fast"
			},
			wantErr: "peers.timeout cannot parse",
		},
		{
			name: "negative retry count",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Peers.URLs = []string{"https://docs.example.org"}
				c.Peers.RetryCount = -1
			},
			wantErr: "peers.retry_count must be >= 0",
		},
		{
			name:    "local storage without dir",
			mode:    ModeDaemon,
			mutate:  func(c *Config) { c.Storage.Name = StorageNameLocal },
			wantErr: "storage.local.dir is required",
		},
		{
			name: "incomplete s3 storage",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameS3
				c.Storage.S3.Bucket = "snapshots"
			},
			wantErr: "storage.s3 requires",
		},
		{
			name:    "unknown storage backend",
			mode:    ModeDaemon,
			mutate:  func(c *Config) { c.Storage.Name = "gcs" },
			wantErr: "unknown storage name",
		},
		{
			name: "unknown compression algo",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameLocal
				c.Storage.Local.Dir = "/var/lib/traitdex"
				c.Storage.Compression.Algo = "lz4"
			},
			wantErr: "unknown compression algo",
		},
		{
			name: "encryption without passphrase",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameLocal
				c.Storage.Local.Dir = "/var/lib/traitdex"
				c.Storage.Encryption.Algo = RepoEncryptorAes256Gcm
			},
			wantErr: "storage.encryption.pass is required",
		},
		{
			name: "retention without limits",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameLocal
				c.Storage.Local.Dir = "/var/lib/traitdex"
				c.Storage.Retention.Enable = true
			},
			wantErr: "storage.retention requires keep_period or keep_last",
		},
		{
			// manual retention over the HTTP API runs without the enable
			// flag, so the limits must hold up on their own
			name: "malformed keep_period with retention disabled",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameLocal
				c.Storage.Local.Dir = "/var/lib/traitdex"
				c.Storage.Retention.Enable = false
				c.Storage.Retention.KeepPeriod = "tenminutes"
			},
			wantErr: "retention.keep_period cannot parse",
		},
		{
			name: "negative keep_last",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameLocal
				c.Storage.Local.Dir = "/var/lib/traitdex"
				c.Storage.Retention.KeepLast = -1
			},
			wantErr: "retention.keep_last must be >= 0",
		},
		{
			name: "valid storage with retention",
			mode: ModeDaemon,
			mutate: func(c *Config) {
				c.Storage.Name = StorageNameLocal
				c.Storage.Local.Dir = "/var/lib/traitdex"
				c.Storage.Compression.Algo = RepoCompressorZstd
				c.Storage.Retention.Enable = true
				c.Storage.Retention.KeepLast = 5
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validDaemonConfig()
			tt.mutate(c)

			err := validate(c, tt.mode)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := &Config{}
	err := validate(c, ModeDaemon)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "main.docs_dir is required")
	assert.Contains(t, err.Error(), "main.listen_port is required")
	assert.Equal(t, 2, strings.Count(err.Error(), ";")+1)
}

func TestConfigString_MasksSecrets(t *testing.T) {
	c := validDaemonConfig()
	c.Auth.User = "ops"
	c.Auth.PasswordHash = "10$saltsaltsalt$digestdigest"
	c.Storage.Name = StorageNameS3
	c.Storage.S3.AccessKeyID = "AKIAEXAMPLE"
	c.Storage.S3.SecretAccessKey = "verysecret"
	c.Storage.Encryption.Algo = RepoEncryptorAes256Gcm
	c.Storage.Encryption.Pass = "hunter2"
	c.Storage.SFTP.PKeyPass = "keypass"

	out := c.String()

	assert.NotContains(t, out, "verysecret")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "keypass")
	assert.NotContains(t, out, "digestdigest")
	assert.Contains(t, out, "*****")
	assert.Contains(t, out, "AKIAEXAMPLE", "key id stays readable")
	assert.Contains(t, out, "ops")
}

func TestParsedDurations(t *testing.T) {
	c := validDaemonConfig()
	c.Storage.Retention.KeepPeriod = "72h"

	assert.Equal(t, "5s", c.PeerTimeout().String())
	assert.Equal(t, "2s", c.ScanDebounce().String())
	assert.Equal(t, 72*time.Hour, c.RetentionKeepPeriod())

	c.Storage.Retention.KeepPeriod = ""
	assert.Equal(t, time.Duration(0), c.RetentionKeepPeriod())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traitdex.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_KeepsDefaultsForUnsetFields(t *testing.T) {
	path := writeConfigFile(t, `
main:
  docs_dir: /srv/docs
`)

	c, err := loadFile(path, ModeDaemon)
	require.NoError(t, err)

	// a minimal file still gets every documented default
	assert.Equal(t, "/srv/docs", c.Main.DocsDir)
	assert.Equal(t, 7070, c.Main.ListenPort)
	assert.True(t, c.Collector.Watch)
	assert.Equal(t, "2s", c.Collector.Debounce)
	assert.Equal(t, "5s", c.Peers.Timeout)
	assert.Equal(t, 2, c.Peers.RetryCount)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
}

func TestLoadFile_FileOverridesDefaultsAndEnv(t *testing.T) {
	t.Setenv("TRAITDEX_LOG_LEVEL", "debug")
	t.Setenv("TRAITDEX_LISTEN_PORT", "9090")

	path := writeConfigFile(t, `
main:
  docs_dir: /srv/docs
  listen_port: 8080
collector:
  watch: false
  debounce: 10s
`)

	c, err := loadFile(path, ModeDaemon)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Main.ListenPort, "file wins over env")
	assert.False(t, c.Collector.Watch)
	assert.Equal(t, "10s", c.Collector.Debounce)
	assert.Equal(t, "debug", c.Log.Level, "env fills fields the file leaves out")
}

func TestLoadFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TRAITDEX_DOCS_ROOT", "/srv/docs")

	path := writeConfigFile(t, `
main:
  docs_dir: ${TRAITDEX_DOCS_ROOT}/build
`)

	c, err := loadFile(path, ModeBuild)
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs/build", c.Main.DocsDir)
}

func TestLoadFile_InvalidConfigFails(t *testing.T) {
	path := writeConfigFile(t, `
main:
  listen_port: 8080
`)

	_, err := loadFile(path, ModeDaemon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.docs_dir is required")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := loadFile(filepath.Join(t.TempDir(), "no-such.yml"), ModeDaemon)
	require.Error(t, err)
}

func TestHasStorageConfigured(t *testing.T) {
	c := validDaemonConfig()
	assert.False(t, c.HasStorageConfigured())

	c.Storage.Name = StorageNameLocal
	assert.True(t, c.HasStorageConfigured())
	assert.True(t, c.IsLocalStor())

	c.Storage.Name = StorageNameS3
	assert.False(t, c.IsLocalStor())
}
