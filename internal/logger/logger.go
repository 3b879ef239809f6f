package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	service string
	level   string
	outputs []string
}

// Option customizes the logger built by New
type Option func(*options)

// WithService tags every entry with the emitting binary
func WithService(name string) Option {
	return func(o *options) { o.service = name }
}

// WithLevel overrides the environment's default level, e.g. "warn"
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithOutputs replaces the default output paths. Tools that print results
// on stdout log to "stderr" instead.
func WithOutputs(paths ...string) Option {
	return func(o *options) { o.outputs = paths }
}

// New creates a new logger instance
func New(environment string, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if o.level != "" {
		level, err := zap.ParseAtomicLevel(o.level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", o.level, err)
		}
		config.Level = level
	}
	if len(o.outputs) > 0 {
		config.OutputPaths = o.outputs
	}
	if o.service != "" {
		config.InitialFields = map[string]interface{}{"service": o.service}
	}

	return config.Build(zap.AddCaller())
}
