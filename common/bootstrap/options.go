package bootstrap

import (
	"github.com/pagehub/contentd/common/config"
	"github.com/pagehub/contentd/common/db"
	"github.com/pagehub/contentd/common/logger"
)

// Option configures Setup behaviour
type Option func(*options)

type options struct {
	customConfig  *config.Config
	customLogger  *logger.Logger
	skipDB        bool
	skipQueue     bool
	skipCache     bool
	skipTelemetry bool
	dbInitHook    func(*db.DB) error
}

func defaultOptions() *options {
	return &options{}
}

// WithConfig overrides environment-based config loading
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

// WithLogger overrides the default logger
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithoutDB skips database initialization
func WithoutDB() Option {
	return func(o *options) {
		o.skipDB = true
	}
}

// WithoutQueue skips queue initialization
func WithoutQueue() Option {
	return func(o *options) {
		o.skipQueue = true
	}
}

// WithoutCache skips cache initialization
func WithoutCache() Option {
	return func(o *options) {
		o.skipCache = true
	}
}

// WithoutTelemetry skips telemetry initialization
func WithoutTelemetry() Option {
	return func(o *options) {
		o.skipTelemetry = true
	}
}

// WithDBInitHook runs a function against the database after connecting
func WithDBInitHook(hook func(*db.DB) error) Option {
	return func(o *options) {
		o.dbInitHook = hook
	}
}
