package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/carlfranklin/BlobRepositoryDemo/internal/validation"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

// Config holds every setting the CLI accepts.
//
// Sources, highest precedence first: flags, environment variables
// (BLOBREPO_*, dots replaced by underscores), config file, defaults.
type Config struct {
	// Backend selects the storage implementation.
	Backend string `mapstructure:"backend" yaml:"backend" validate:"required,oneof=minio s3 memory"`

	// Container holds the mirror document.
	Container string `mapstructure:"container" yaml:"container" validate:"required"`

	// Object is the mirror document name. Empty derives records.json.
	Object string `mapstructure:"object" yaml:"object,omitempty"`

	// KeyField is the record field holding the identity.
	KeyField string `mapstructure:"key_field" yaml:"key_field" validate:"required"`

	// TTL is how long a loaded snapshot is served without a refresh.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"`

	// StagingDir overrides where snapshots are staged before upload.
	StagingDir string `mapstructure:"staging_dir" yaml:"staging_dir,omitempty"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Minio   MinioConfig   `mapstructure:"minio" yaml:"minio"`
	S3      S3Config      `mapstructure:"s3" yaml:"s3,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// MinioConfig carries connection settings for the minio backend.
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
	Region          string `mapstructure:"region" yaml:"region,omitempty"`
	UseSSL          bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// S3Config carries connection settings for the s3 backend.
type S3Config struct {
	// Endpoint overrides the AWS endpoint, for S3-compatible services.
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region          string `mapstructure:"region" yaml:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// objectName resolves the mirror document name, matching what the
// repository derives for map records when none is configured.
func (c *Config) objectName() string {
	if c.Object != "" {
		return c.Object
	}
	return "records.json"
}

// LoadConfig loads configuration from file, environment and defaults.
// A missing config file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BLOBREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blobrepo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "blobrepo"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key, which also makes the matching
// environment variables visible to Unmarshal. The minio defaults match
// a stock local server.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "minio")
	v.SetDefault("container", "records")
	v.SetDefault("object", "")
	v.SetDefault("key_field", "id")
	v.SetDefault("ttl", repository.DefaultTTL)
	v.SetDefault("staging_dir", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "minioadmin")
	v.SetDefault("minio.secret_access_key", "minioadmin")
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.force_path_style", false)
}

// ValidateConfig checks struct constraints, the storage naming rules
// and backend-specific requirements.
func ValidateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			msgs := make([]string, 0, len(fields))
			for _, fe := range fields {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := validation.ValidateContainerName(cfg.Container); err != nil {
		return fmt.Errorf("invalid container: %w", err)
	}
	if cfg.Object != "" {
		if err := validation.ValidateObjectName(cfg.Object); err != nil {
			return fmt.Errorf("invalid object name: %w", err)
		}
	}
	if err := validation.ValidateKeyField(cfg.KeyField); err != nil {
		return fmt.Errorf("invalid key field: %w", err)
	}

	switch cfg.Backend {
	case "minio":
		if cfg.Minio.Endpoint == "" {
			return fmt.Errorf("minio backend requires an endpoint")
		}
	case "s3":
		if cfg.S3.Region == "" {
			return fmt.Errorf("s3 backend requires a region")
		}
	}
	return nil
}

// SaveConfig writes the configuration as YAML. Mode 0600 because the
// file carries credentials.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
