package fetch

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Options describes a single request.
type Options struct {
	URL     string
	Method  string
	Headers map[string]string
	// Body is JSON-encoded when non-nil.
	Body any
	// Params are appended to the URL query string.
	Params map[string]string
}

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function into a Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option configures a Request.
type Option func(*config)

type config struct {
	client  Doer
	logger  zerolog.Logger
	baseURL string
}

// WithClient sets the transport. Nil is ignored.
func WithClient(client Doer) Option {
	return func(c *config) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithBaseURL resolves relative request URLs against base.
func WithBaseURL(base string) Option {
	return func(c *config) {
		c.baseURL = base
	}
}
