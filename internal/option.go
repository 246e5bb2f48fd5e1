package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	mcp     bool
	version string
	input   io.ReadCloser
	output  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCP serves the MCP tools on stdio instead of running the command loop.
func WithMCP() Option {
	return func(a *application) {
		a.mcp = true
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithInput replaces the configured input stream.
func WithInput(r io.ReadCloser) Option {
	return func(a *application) {
		a.input = r
	}
}

// WithOutput sets where results are written. Defaults to standard output.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.output = w
	}
}
