package config

import "time"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 5173,
			Host: "localhost",
		},
		API: APIConfig{
			BaseURL:    "",
			BackendURL: "http://localhost:20000",
		},
		Client: ClientConfig{},
		Session: SessionConfig{
			TTL: Duration{30 * time.Minute},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/krx-alert-portal.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}
