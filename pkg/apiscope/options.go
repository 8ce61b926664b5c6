package apiscope

import (
	"time"

	"github.com/apiscope/apiscope/internal/config"
	"github.com/apiscope/apiscope/internal/fetch"
	"github.com/apiscope/apiscope/internal/logger"
)

// Option is a functional option for configuring the Engine.
type Option func(*Engine) error

// WithConfig replaces the entire configuration.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) error {
		e.config = cfg
		return nil
	}
}

// WithTarget sets the target URL or source name.
func WithTarget(target string) Option {
	return func(e *Engine) error {
		e.config.Target = target
		return nil
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		e.config.Timeout = timeout
		return nil
	}
}

// WithUserAgent sets the user agent for fetches and captures.
func WithUserAgent(ua string) Option {
	return func(e *Engine) error {
		e.config.UserAgent = ua
		return nil
	}
}

// WithHeaders sets custom headers for all requests.
func WithHeaders(headers map[string]string) Option {
	return func(e *Engine) error {
		e.config.CustomHeaders = headers
		return nil
	}
}

// WithRateLimit sets the fetch pacing.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(e *Engine) error {
		e.config.RateLimit.RequestsPerSecond = requestsPerSecond
		e.config.RateLimit.Burst = burst
		return nil
	}
}

// WithLogin sets the gated-site login configuration.
func WithLogin(login config.LoginConfig) Option {
	return func(e *Engine) error {
		e.config.Login = login
		return nil
	}
}

// WithStore enables report persistence at the given path.
func WithStore(path string) Option {
	return func(e *Engine) error {
		e.config.Store.Enabled = true
		e.config.Store.Path = path
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) error {
		e.logger = l
		return nil
	}
}

// WithClient sets a custom fetch client.
func WithClient(c *fetch.Client) Option {
	return func(e *Engine) error {
		e.client = c
		return nil
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) error {
		e.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(e *Engine) error {
		e.config.Debug = debug
		return nil
	}
}
