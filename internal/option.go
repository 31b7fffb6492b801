package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	mcpStdio bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCPStdio switches the application into MCP stdio-server mode instead
// of starting the preview HTTP stack.
func WithMCPStdio(enabled bool) Option {
	return func(a *application) {
		a.mcpStdio = enabled
	}
}
