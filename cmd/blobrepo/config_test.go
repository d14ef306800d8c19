package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

// missingPath points LoadConfig at a file that does not exist, so the
// search path never picks up a stray config from the test environment.
func missingPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "blobrepo.yaml")
}

func validConfig() *Config {
	return &Config{
		Backend:   "memory",
		Container: "records",
		KeyField:  "id",
		TTL:       time.Minute,
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(missingPath(t))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backend != "minio" {
		t.Errorf("expected default backend minio, got %q", cfg.Backend)
	}
	if cfg.Container != "records" {
		t.Errorf("expected default container records, got %q", cfg.Container)
	}
	if cfg.KeyField != "id" {
		t.Errorf("expected default key field id, got %q", cfg.KeyField)
	}
	if cfg.TTL != repository.DefaultTTL {
		t.Errorf("expected default TTL %v, got %v", repository.DefaultTTL, cfg.TTL)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Minio.Endpoint != "localhost:9000" {
		t.Errorf("expected default minio endpoint, got %q", cfg.Minio.Endpoint)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobrepo.yaml")
	content := `backend: memory
container: team-data
key_field: email
ttl: 30s
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backend != "memory" {
		t.Errorf("expected backend memory, got %q", cfg.Backend)
	}
	if cfg.Container != "team-data" {
		t.Errorf("expected container team-data, got %q", cfg.Container)
	}
	if cfg.KeyField != "email" {
		t.Errorf("expected key field email, got %q", cfg.KeyField)
	}
	if cfg.TTL != 30*time.Second {
		t.Errorf("expected TTL 30s, got %v", cfg.TTL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	// Settings absent from the file keep their defaults.
	if cfg.Minio.Endpoint != "localhost:9000" {
		t.Errorf("expected default minio endpoint, got %q", cfg.Minio.Endpoint)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BLOBREPO_CONTAINER", "env-bucket")
	t.Setenv("BLOBREPO_MINIO_ENDPOINT", "storage:9000")
	t.Setenv("BLOBREPO_TTL", "90s")

	cfg, err := LoadConfig(missingPath(t))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Container != "env-bucket" {
		t.Errorf("expected container env-bucket, got %q", cfg.Container)
	}
	if cfg.Minio.Endpoint != "storage:9000" {
		t.Errorf("expected minio endpoint storage:9000, got %q", cfg.Minio.Endpoint)
	}
	if cfg.TTL != 90*time.Second {
		t.Errorf("expected TTL 90s, got %v", cfg.TTL)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid memory config",
			mutate: func(c *Config) {},
		},
		{
			name: "unknown backend",
			mutate: func(c *Config) {
				c.Backend = "azure"
			},
			wantErr: "invalid configuration",
		},
		{
			name: "container with uppercase",
			mutate: func(c *Config) {
				c.Container = "Records"
			},
			wantErr: "invalid container",
		},
		{
			name: "container too short",
			mutate: func(c *Config) {
				c.Container = "ab"
			},
			wantErr: "invalid container",
		},
		{
			name: "object with path separator",
			mutate: func(c *Config) {
				c.Object = "nested/records.json"
			},
			wantErr: "invalid object name",
		},
		{
			name: "key field with whitespace",
			mutate: func(c *Config) {
				c.KeyField = "member id"
			},
			wantErr: "invalid key field",
		},
		{
			name: "unknown log level",
			mutate: func(c *Config) {
				c.Logging.Level = "chatty"
			},
			wantErr: "invalid configuration",
		},
		{
			name: "minio without endpoint",
			mutate: func(c *Config) {
				c.Backend = "minio"
			},
			wantErr: "minio backend requires an endpoint",
		},
		{
			name: "s3 without region",
			mutate: func(c *Config) {
				c.Backend = "s3"
			},
			wantErr: "s3 backend requires a region",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = "minio"
	cfg.TTL = 5 * time.Minute
	cfg.Minio = MinioConfig{
		Endpoint:        "storage:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}

	path := filepath.Join(t.TempDir(), "conf", "blobrepo.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat config file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Backend != cfg.Backend {
		t.Errorf("backend changed across save/load: %q != %q", loaded.Backend, cfg.Backend)
	}
	if loaded.TTL != cfg.TTL {
		t.Errorf("TTL changed across save/load: %v != %v", loaded.TTL, cfg.TTL)
	}
	if loaded.Minio != cfg.Minio {
		t.Errorf("minio config changed across save/load: %+v != %+v", loaded.Minio, cfg.Minio)
	}
}
