package repository

import (
	"log/slog"
	"time"

	"github.com/carlfranklin/BlobRepositoryDemo/metrics"
)

// Defaults applied by NewBlobRepository when no option overrides them.
const (
	// DefaultTTL is how long a loaded snapshot is served without
	// consulting the mirror again.
	DefaultTTL = 5 * time.Minute

	// DefaultStagingDir is where snapshots are staged before upload,
	// relative to the working directory.
	DefaultStagingDir = "Json"

	// DefaultSaveQueueDepth bounds how many saves may be pending at
	// once, the in-flight save included. Further writers are turned
	// away with ErrStoreBusy.
	DefaultSaveQueueDepth = 8

	// DefaultSaveTimeout bounds one stage-and-upload cycle.
	DefaultSaveTimeout = 30 * time.Second
)

// Option is a function that modifies blob repository configuration.
type Option func(*config)

type config struct {
	ttl            time.Duration
	objectName     string
	stagingDir     string
	logger         *slog.Logger
	timeFunc       func() time.Time
	metrics        metrics.Metrics
	saveQueueDepth int
	saveTimeout    time.Duration
	fs             FileSystem
	lockFactory    FileLockFactory
}

func defaultConfig() config {
	return config{
		ttl:            DefaultTTL,
		stagingDir:     DefaultStagingDir,
		logger:         slog.Default(),
		timeFunc:       time.Now,
		metrics:        metrics.Nop{},
		saveQueueDepth: DefaultSaveQueueDepth,
		saveTimeout:    DefaultSaveTimeout,
		fs:             OSFileSystem{},
		lockFactory:    FlockFactory{},
	}
}

// WithTTL sets how long a snapshot stays fresh. A non-positive value
// forces a mirror refresh on every read.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		c.ttl = d
	}
}

// WithObjectName overrides the mirror object name derived from the
// record type.
func WithObjectName(name string) Option {
	return func(c *config) {
		c.objectName = name
	}
}

// WithStagingDir sets the directory snapshots are staged in before
// upload.
func WithStagingDir(dir string) Option {
	return func(c *config) {
		c.stagingDir = dir
	}
}

// WithLogger sets the logger used for repository diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTimeFunc sets a custom time function for testing.
func WithTimeFunc(fn func() time.Time) Option {
	return func(c *config) {
		c.timeFunc = fn
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithSaveQueueDepth sets how many saves may be pending at once
// before writers fail fast with ErrStoreBusy.
func WithSaveQueueDepth(n int) Option {
	return func(c *config) {
		c.saveQueueDepth = n
	}
}

// WithSaveTimeout bounds one stage-and-upload cycle.
func WithSaveTimeout(d time.Duration) Option {
	return func(c *config) {
		c.saveTimeout = d
	}
}

// WithFileSystem sets a custom FileSystem implementation.
func WithFileSystem(fs FileSystem) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithFileLockFactory sets a custom FileLockFactory implementation.
func WithFileLockFactory(factory FileLockFactory) Option {
	return func(c *config) {
		c.lockFactory = factory
	}
}
