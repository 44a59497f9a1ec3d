package config

// Config holds colacheck configuration.
// Stored at: ~/.colacheck/config.yaml
type Config struct {
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction"`
	Dispatcher DispatcherCfg `mapstructure:"dispatcher" yaml:"dispatcher"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
}

// ExtractionCfg configures the extraction-service client.
type ExtractionCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "openai", "mock"
	Model          string `mapstructure:"model" yaml:"model"`                     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`               // Optional API base URL override
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-request timeout
}

// DispatcherCfg configures the extraction worker pool.
type DispatcherCfg struct {
	Workers        int `mapstructure:"workers" yaml:"workers"`                 // Concurrent extraction slots
	QueueSize      int `mapstructure:"queue_size" yaml:"queue_size"`           // Submission queue capacity
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-job timeout
}

// ServerCfg holds HTTP server configuration.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionCfg{
			Type:           "openai",
			Model:          "gpt-4o",
			APIKey:         "${OPENAI_API_KEY}",
			TimeoutSeconds: 120,
		},
		Dispatcher: DispatcherCfg{
			Workers:        5,
			QueueSize:      256,
			TimeoutSeconds: 60,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8273,
		},
	}
}
