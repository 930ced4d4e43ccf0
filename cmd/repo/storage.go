package repo

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashmap-kz/storecrypt/pkg/clients"
	st "github.com/hashmap-kz/storecrypt/pkg/storage"
	"github.com/hashmap-kz/streamcrypt/pkg/codec"
	"github.com/hashmap-kz/streamcrypt/pkg/crypt"
	"github.com/hashmap-kz/streamcrypt/pkg/crypt/aesgcm"

	"github.com/traitdex/traitdex/config"
)

// SetupStorage builds the snapshot-archive backend from the config:
// local fs, S3 or SFTP, with optional compression and encryption applied
// transparently on the way in and out.
func SetupStorage() (*st.TransformingStorage, error) {
	cfg := config.Cfg()

	compressor, decompressor, crypter, err := decideCompressorEncryptor(cfg)
	if err != nil {
		return nil, err
	}

	// local fs
	if cfg.IsLocalStor() {
		backend, err := st.NewLocal(&st.LocalStorageOpts{
			BaseDir:      cfg.Storage.Local.Dir,
			FsyncOnWrite: true,
		})
		if err != nil {
			return nil, err
		}
		return &st.TransformingStorage{
			Backend:      backend,
			Crypter:      crypter,
			Compressor:   compressor,
			Decompressor: decompressor,
		}, nil
	}

	// sftp
	if strings.EqualFold(cfg.Storage.Name, config.StorageNameSFTP) {
		client, err := clients.NewSFTPClient(&clients.SFTPConfig{
			Host:       cfg.Storage.SFTP.Host,
			Port:       fmt.Sprintf("%d", cfg.Storage.SFTP.Port),
			User:       cfg.Storage.SFTP.User,
			PkeyPath:   cfg.Storage.SFTP.PKeyPath,
			Passphrase: cfg.Storage.SFTP.PKeyPass,
		})
		if err != nil {
			return nil, err
		}
		return &st.TransformingStorage{
			Backend:      st.NewSFTPStorage(client.SFTPClient(), cfg.Storage.SFTP.BaseDir),
			Crypter:      crypter,
			Compressor:   compressor,
			Decompressor: decompressor,
		}, nil
	}

	// s3
	if strings.EqualFold(cfg.Storage.Name, config.StorageNameS3) {
		client, err := clients.NewS3Client(&clients.S3Config{
			EndpointURL:     cfg.Storage.S3.URL,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
			DisableSSL:      cfg.Storage.S3.DisableSSL,
		})
		if err != nil {
			return nil, err
		}
		return &st.TransformingStorage{
			Backend:      st.NewS3Storage(client.Client(), cfg.Storage.S3.Bucket, "snapshots"),
			Crypter:      crypter,
			Compressor:   compressor,
			Decompressor: decompressor,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage name: %s", cfg.Storage.Name)
}

func decideCompressorEncryptor(cfg *config.Config) (codec.Compressor, codec.Decompressor, crypt.Crypter, error) {
	var compressor codec.Compressor
	var decompressor codec.Decompressor
	var crypter crypt.Crypter

	if cfg.Storage.Compression.Algo != "" {
		slog.Info("init compressor",
			slog.String("module", "boot"),
			slog.String("compressor", cfg.Storage.Compression.Algo),
		)

		switch cfg.Storage.Compression.Algo {
		case config.RepoCompressorGzip:
			compressor = &codec.GzipCompressor{}
			decompressor = &codec.GzipDecompressor{}
		case config.RepoCompressorZstd:
			compressor = &codec.ZstdCompressor{}
			decompressor = codec.ZstdDecompressor{}
		default:
			return nil, nil, nil,
				fmt.Errorf("unknown compression algo: %s", cfg.Storage.Compression.Algo)
		}
	}
	if cfg.Storage.Encryption.Algo != "" {
		slog.Info("init crypter",
			slog.String("module", "boot"),
			slog.String("crypter", cfg.Storage.Encryption.Algo),
		)

		if cfg.Storage.Encryption.Algo == config.RepoEncryptorAes256Gcm {
			crypter = aesgcm.NewChunkedGCMCrypter(cfg.Storage.Encryption.Pass)
		} else {
			return nil, nil, nil,
				fmt.Errorf("unknown encryption algo: %s", cfg.Storage.Encryption.Algo)
		}
	}

	return compressor, decompressor, crypter, nil
}
