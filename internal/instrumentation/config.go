package instrumentation

// Config controls the metrics provider.
type Config struct {
	// Enabled turns metrics collection on. When false the provider is a
	// no-op and no exporter is created.
	Enabled bool

	// ServiceName identifies the service in the OTel resource.
	ServiceName string

	// ServiceVersion is reported alongside the service name.
	ServiceVersion string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		ServiceName: "workspace-mcp",
	}
}
