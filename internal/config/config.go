package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	API         APIConfig     `toml:"api"`
	Client      ClientConfig  `toml:"client"`
	Session     SessionConfig `toml:"session"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// APIConfig describes where the analysis backend lives.
//
// BaseURL is the prefix the portal puts in front of /api/stock/{code}. Empty
// means same-origin. In dev mode that is the portal's own listen address,
// which the dev proxy forwards to BackendURL. Otherwise queries go straight
// to BackendURL, since the portal itself answers /api with 404.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	BackendURL string `toml:"backend_url"`
}

// ClientConfig contains settings for the backend query client.
type ClientConfig struct {
	// Timeout of zero means no timeout.
	Timeout Duration `toml:"timeout"`
}

// SessionConfig controls per-browser view state retention.
type SessionConfig struct {
	TTL Duration `toml:"ttl"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Duration is a time.Duration that reads from TOML strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsDevMode reports whether the portal runs with development conveniences
// (the /api and /health reverse proxy).
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the portal's own address.
func (c *Config) BaseURL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}

// APIBase returns the prefix used for backend queries. An empty base URL
// resolves to the portal's own origin in dev mode and to the backend URL
// otherwise.
func (c *Config) APIBase() string {
	base := strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if base != "" {
		return base
	}
	if c.IsDevMode() {
		return c.BaseURL()
	}
	return strings.TrimRight(strings.TrimSpace(c.API.BackendURL), "/")
}

// Validate returns a list of configuration problems. Empty means valid.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.API.BaseURL != "" {
		if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, fmt.Sprintf("api.base_url must be an absolute URL (got %q)", c.API.BaseURL))
		}
	}
	if c.IsDevMode() || strings.TrimSpace(c.API.BaseURL) == "" {
		if u, err := url.Parse(c.API.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, fmt.Sprintf("api.backend_url must be an absolute URL in dev mode or when api.base_url is empty (got %q)", c.API.BackendURL))
		}
	}
	if c.Client.Timeout.Duration < 0 {
		issues = append(issues, "client.timeout must not be negative")
	}
	if c.Session.TTL.Duration <= 0 {
		issues = append(issues, "session.ttl must be positive")
	}

	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies KRXALERT_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KRXALERT_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("KRXALERT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("KRXALERT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	// An explicitly empty override is meaningful (same-origin), so presence
	// is checked rather than value.
	if base, ok := os.LookupEnv("KRXALERT_API_BASE_URL"); ok {
		config.API.BaseURL = strings.TrimSpace(base)
	}
	if backend := os.Getenv("KRXALERT_BACKEND_URL"); backend != "" {
		config.API.BackendURL = backend
	}
	if timeout := os.Getenv("KRXALERT_CLIENT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Client.Timeout.Duration = d
		}
	}
	if ttl := os.Getenv("KRXALERT_SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Session.TTL.Duration = d
		}
	}
	if level := os.Getenv("KRXALERT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if outputs := os.Getenv("KRXALERT_LOG_OUTPUTS"); outputs != "" {
		var list []string
		for _, o := range strings.Split(outputs, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		config.Logging.Outputs = list
	}
	if path := os.Getenv("KRXALERT_LOG_FILE"); path != "" {
		config.Logging.FilePath = path
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
