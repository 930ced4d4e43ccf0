package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	"sigs.k8s.io/yaml"
)

// Running modes (CLI subcommands that need a validated config).
const (
	ModeDaemon   = "daemon"
	ModeBuild    = "build"
	ModeValidate = "validate"
)

const (
	StorageNameLocal = "local"
	StorageNameS3    = "s3"
	StorageNameSFTP  = "sftp"

	RepoCompressorGzip = "gzip"
	RepoCompressorZstd = "zstd"

	RepoEncryptorAes256Gcm = "aes-256-gcm"
)

type Config struct {
	Main      MainConfig      `json:"main"`
	Log       LogConfig       `json:"log"`
	Auth      AuthConfig      `json:"auth"`
	Collector CollectorConfig `json:"collector"`
	Peers     PeersConfig     `json:"peers"`
	Storage   StorageConfig   `json:"storage"`
}

type MainConfig struct {
	// DocsDir is the documentation build output scanned for
	// *.implementors.json fragments.
	DocsDir    string `json:"docs_dir" env:"TRAITDEX_DOCS_DIR"`
	ListenPort int    `json:"listen_port" env:"TRAITDEX_LISTEN_PORT, default=7070"`
}

type LogConfig struct {
	Level     string `json:"level" env:"TRAITDEX_LOG_LEVEL, default=info"`
	Format    string `json:"format" env:"TRAITDEX_LOG_FORMAT, default=text"`
	AddSource bool   `json:"add_source" env:"TRAITDEX_LOG_ADD_SOURCE"`
}

type AuthConfig struct {
	User string `json:"user" env:"TRAITDEX_AUTH_USER"`
	// PasswordHash is produced by `traitdex hash-password`.
	PasswordHash string `json:"password_hash" env:"TRAITDEX_AUTH_PASSWORD_HASH"`
}

type CollectorConfig struct {
	// Cron drives the scheduled full rescan (POSIX syntax, no seconds).
	Cron     string `json:"cron" env:"TRAITDEX_COLLECTOR_CRON"`
	Watch    bool   `json:"watch" env:"TRAITDEX_COLLECTOR_WATCH, default=true"`
	Debounce string `json:"debounce" env:"TRAITDEX_COLLECTOR_DEBOUNCE, default=2s"`
}

type PeersConfig struct {
	// URLs of peer documentation sites whose implementors.js artifacts are
	// merged under the local fragments.
	URLs       []string `json:"urls" env:"TRAITDEX_PEER_URLS"`
	Timeout    string   `json:"timeout" env:"TRAITDEX_PEER_TIMEOUT, default=5s"`
	RetryCount int      `json:"retry_count" env:"TRAITDEX_PEER_RETRY_COUNT, default=2"`
}

type StorageConfig struct {
	Name        string            `json:"name" env:"TRAITDEX_STORAGE_NAME"`
	Compression CompressionConfig `json:"compression"`
	Encryption  EncryptionConfig  `json:"encryption"`
	Retention   RetentionConfig   `json:"retention"`
	Local       LocalConfig       `json:"local"`
	S3          S3Config          `json:"s3"`
	SFTP        SFTPConfig        `json:"sftp"`
}

type CompressionConfig struct {
	Algo string `json:"algo" env:"TRAITDEX_STORAGE_COMPRESSION_ALGO"`
}

type EncryptionConfig struct {
	Algo string `json:"algo" env:"TRAITDEX_STORAGE_ENCRYPTION_ALGO"`
	Pass string `json:"pass" env:"TRAITDEX_STORAGE_ENCRYPTION_PASS"`
}

type RetentionConfig struct {
	Enable     bool   `json:"enable" env:"TRAITDEX_STORAGE_RETENTION_ENABLE"`
	KeepPeriod string `json:"keep_period" env:"TRAITDEX_STORAGE_RETENTION_KEEP_PERIOD"`
	KeepLast   int    `json:"keep_last" env:"TRAITDEX_STORAGE_RETENTION_KEEP_LAST"`
}

type LocalConfig struct {
	Dir string `json:"dir" env:"TRAITDEX_STORAGE_LOCAL_DIR"`
}

type S3Config struct {
	URL             string `json:"url" env:"TRAITDEX_STORAGE_S3_URL"`
	AccessKeyID     string `json:"access_key_id" env:"TRAITDEX_STORAGE_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"TRAITDEX_STORAGE_S3_SECRET_ACCESS_KEY"`
	Bucket          string `json:"bucket" env:"TRAITDEX_STORAGE_S3_BUCKET"`
	Region          string `json:"region" env:"TRAITDEX_STORAGE_S3_REGION"`
	UsePathStyle    bool   `json:"use_path_style" env:"TRAITDEX_STORAGE_S3_USE_PATH_STYLE"`
	DisableSSL      bool   `json:"disable_ssl" env:"TRAITDEX_STORAGE_S3_DISABLE_SSL"`
}

type SFTPConfig struct {
	Host     string `json:"host" env:"TRAITDEX_STORAGE_SFTP_HOST"`
	Port     int    `json:"port" env:"TRAITDEX_STORAGE_SFTP_PORT"`
	User     string `json:"user" env:"TRAITDEX_STORAGE_SFTP_USER"`
	BaseDir  string `json:"base_dir" env:"TRAITDEX_STORAGE_SFTP_BASE_DIR"`
	PKeyPath string `json:"pkey_path" env:"TRAITDEX_STORAGE_SFTP_PKEY_PATH"`
	PKeyPass string `json:"pkey_pass" env:"TRAITDEX_STORAGE_SFTP_PKEY_PASS"`
}

var (
	once   sync.Once
	config *Config
)

// Cfg returns the process-wide config. It must be loaded in main first.
func Cfg() *Config {
	if config == nil {
		log.Fatal("config was not loaded in main")
	}
	return config
}

// MustLoad reads the config from a YAML or JSON file, expands ${TRAITDEX_*}
// placeholders inside values, and validates it for the given mode.
func MustLoad(path, mode string) *Config {
	once.Do(func() {
		c, err := loadFile(path, mode)
		if err != nil {
			log.Fatal(err)
		}
		config = c
	})
	return config
}

// MustEnvconfig assembles the config from TRAITDEX_* environment variables.
func MustEnvconfig(mode string) *Config {
	once.Do(func() {
		c, err := loadEnv(mode)
		if err != nil {
			log.Fatal(err)
		}
		config = c
	})
	return config
}

// loadFile overlays the file on top of the env-assembled base, so fields the
// file leaves out keep their documented defaults (and any TRAITDEX_* values).
func loadFile(path, mode string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	expanded := expandEnvsWithPrefix(string(data), "TRAITDEX_")

	var c Config
	if err := envconfig.Process(context.Background(), &c); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validate(&c, mode); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &c, nil
}

func loadEnv(mode string) (*Config, error) {
	var c Config
	if err := envconfig.Process(context.Background(), &c); err != nil {
		return nil, err
	}
	if err := validate(&c, mode); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// HasStorageConfigured reports whether a snapshot-archive backend is set up.
func (c *Config) HasStorageConfigured() bool {
	return strings.TrimSpace(c.Storage.Name) != ""
}

func (c *Config) IsLocalStor() bool {
	return strings.EqualFold(c.Storage.Name, StorageNameLocal)
}

// PeerTimeout returns the parsed peer request timeout.
// Validation guarantees the value parses.
func (c *Config) PeerTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Peers.Timeout)
	return d
}

// ScanDebounce returns the parsed watcher debounce window.
func (c *Config) ScanDebounce() time.Duration {
	d, _ := time.ParseDuration(c.Collector.Debounce)
	return d
}

// RetentionKeepPeriod returns the parsed snapshot retention window, zero when
// unset. Validation guarantees a set value parses.
func (c *Config) RetentionKeepPeriod() time.Duration {
	d, _ := time.ParseDuration(c.Storage.Retention.KeepPeriod)
	return d
}

// String renders the effective config as JSON with secrets masked.
func (c *Config) String() string {
	masked := *c
	if masked.Auth.PasswordHash != "" {
		masked.Auth.PasswordHash = "*****"
	}
	if masked.Storage.Encryption.Pass != "" {
		masked.Storage.Encryption.Pass = "*****"
	}
	if masked.Storage.S3.SecretAccessKey != "" {
		masked.Storage.S3.SecretAccessKey = "*****"
	}
	if masked.Storage.SFTP.PKeyPass != "" {
		masked.Storage.SFTP.PKeyPass = "*****"
	}
	data, err := json.MarshalIndent(&masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshal config: %v", err)
	}
	return string(data)
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvsWithPrefix substitutes ${VAR} placeholders whose names carry the
// given prefix. Placeholders with other prefixes are left untouched, so
// foreign templating inside markup samples survives.
func expandEnvsWithPrefix(s, prefix string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		name := envPlaceholder.FindStringSubmatch(match)[1]
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			return match
		}
		return os.Getenv(name)
	})
}
