package generator

import (
	"go.uber.org/zap"

	"mrgen/internal/config"
)

type options struct {
	logger   *zap.Logger
	settings *config.Settings
}

// Option configures a Wrangler or a Generator.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSettings sets the SAF file name of referenced scopes, the concurrency
// bound, and the curated-file exclude rules.
func WithSettings(s *config.Settings) Option {
	return func(o *options) {
		if s != nil {
			o.settings = s
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), settings: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) concurrency() int {
	if o.settings.Concurrency < 1 {
		return 1
	}
	return o.settings.Concurrency
}

func (o options) safName() string {
	if o.settings.SAF == "" {
		return config.DefaultSAF
	}
	return o.settings.SAF
}
