package bootstrap

import (
	"time"

	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	rootName        string
	registryOpts    []di.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{rootName: "root"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithRootName names the scene root node. The default is "root", so
// configured paths start with /root.
func WithRootName(name string) Option {
	return func(o *appOptions) {
		if name != "" {
			o.rootName = name
		}
	}
}

// WithRegistryOptions passes extra options to di.NewRegistry. They are
// applied after the App's logger and observer, so they may replace them.
func WithRegistryOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}
