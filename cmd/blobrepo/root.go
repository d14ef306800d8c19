package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
	"github.com/carlfranklin/BlobRepositoryDemo/blob/memory"
	"github.com/carlfranklin/BlobRepositoryDemo/blob/minio"
	"github.com/carlfranklin/BlobRepositoryDemo/blob/s3"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

var (
	cfgFile       string
	backendFlag   string
	containerFlag string
	objectFlag    string
	keyFieldFlag  string
	formatFlag    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "blobrepo",
	Short: "Record collections mirrored to object storage",
	Long: "Blobrepo keeps collections of JSON records, each mirrored to object\n" +
		"storage as a single JSON array document. Records are plain JSON\n" +
		"objects keyed by a configurable identity field.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default blobrepo.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: minio, s3 or memory")
	rootCmd.PersistentFlags().StringVarP(&containerFlag, "container", "c", "", "container holding the mirror document")
	rootCmd.PersistentFlags().StringVar(&objectFlag, "object", "", "mirror document name (default records.json)")
	rootCmd.PersistentFlags().StringVar(&keyFieldFlag, "key-field", "", "record field holding the identity (default id)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup loads the configuration, folds in flag overrides and prepares
// the logger. Every data command starts here.
func setup() (*Config, *slog.Logger, error) {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if containerFlag != "" {
		cfg.Container = containerFlag
	}
	if objectFlag != "" {
		cfg.Object = objectFlag
	}
	if keyFieldFlag != "" {
		cfg.KeyField = keyFieldFlag
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cfg.Logging), nil
}

// newStore creates the configured storage backend.
func newStore(ctx context.Context, cfg *Config) (blob.Store, error) {
	switch cfg.Backend {
	case "minio":
		return minio.New(minio.Config{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKeyID,
			SecretAccessKey: cfg.Minio.SecretAccessKey,
			Region:          cfg.Minio.Region,
			UseSSL:          cfg.Minio.UseSSL,
		})
	case "s3":
		return s3.New(ctx, s3.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
		})
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newBlobClient(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...blob.ClientOption) (*blob.Client, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", cfg.Backend, err)
	}
	return blob.NewClient(store, append([]blob.ClientOption{blob.WithLogger(logger)}, opts...)...)
}

// newRepository opens the configured collection. Construction performs
// the initial load, so the returned repository is already populated.
func newRepository(ctx context.Context, cfg *Config, logger *slog.Logger) (repository.Repository[string, map[string]any], error) {
	client, err := newBlobClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []repository.Option{
		repository.WithTTL(cfg.TTL),
		repository.WithLogger(logger),
	}
	if cfg.Object != "" {
		opts = append(opts, repository.WithObjectName(cfg.Object))
	}
	if cfg.StagingDir != "" {
		opts = append(opts, repository.WithStagingDir(cfg.StagingDir))
	}

	repo, err := repository.NewBlobRepository[string, map[string]any](ctx, client, cfg.Container, recordKey(cfg.KeyField), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	return repo, nil
}

// recordKey extracts the configured identity field as a string key. A
// missing field yields the empty key.
func recordKey(field string) repository.KeyFunc[string, map[string]any] {
	return func(rec map[string]any) string {
		v, ok := rec[field]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
}
