package threadpool

import "log/slog"

// Option configures a ThreadPool.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	name         string
	logAllErrors bool
	metrics      *Metrics
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger. nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName names the pool in logs and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogAllErrors logs every error returned by a task, not only panics.
func WithLogAllErrors(enabled bool) Option {
	return func(o *options) {
		o.logAllErrors = enabled
	}
}

// WithMetrics reports pool activity to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
