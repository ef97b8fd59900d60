// Package config provides configuration management for the leadline server.
// It covers the HTTP server, the completion-API client, circuit breaking,
// logging preferences, and the location of the business profile document.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration.
// It combines server settings, completion-API configuration, circuit breaker
// settings, logging preferences, and the business profile source into a
// single structure.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	LLM            LLMConfig            `yaml:"llm"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Logging        LoggingConfig        `yaml:"logging"`

	// ProfilesPath is the path to the YAML document mapping industry keys
	// to business profiles. The document is loaded once at startup and the
	// process refuses to start if it is missing or malformed.
	ProfilesPath string `yaml:"profiles_path"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
// It defines timeouts, limits, and operational parameters.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 3001)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response (default: 45s). It must leave headroom above the completion
	// call timeout or slow completions get cut off mid-response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for the server to shutdown
	// gracefully before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LLMConfig holds the completion-API client configuration.
type LLMConfig struct {
	// Provider names the completion provider. Only "groq" is built in, but
	// any OpenAI-compatible endpoint works via Endpoint.
	Provider string `yaml:"provider"`

	// Model is the model identifier sent with every completion request
	// (default: "llama3-8b-8192")
	Model string `yaml:"model"`

	// APIKey is the authentication key for the provider's API.
	// Use environment variables (e.g., ${GROQ_API_KEY}) for secure
	// configuration. Startup fails if it resolves to empty.
	APIKey string `yaml:"api_key"`

	// Endpoint is the chat-completions URL. Defaults to Groq's
	// OpenAI-compatible endpoint.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single completion call, context included
	// (default: 30s)
	Timeout time.Duration `yaml:"timeout"`
}

// CircuitBreakerConfig configures the breaker wrapped around the
// completion provider.
type CircuitBreakerConfig struct {
	// MaxRequests is the maximum number of requests allowed to pass through
	// when the breaker is half-open
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures needed to trip
	// the circuit
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when a field is absent from
// the YAML document.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3001,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    45 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama3-8b-8192",
			APIKey:   "${GROQ_API_KEY}",
			Endpoint: "https://api.groq.com/openai/v1/chat/completions",
			Timeout:  30 * time.Second,
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         30 * time.Second,
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		ProfilesPath: "profiles.yaml",
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references inside
// configuration strings. It supports standard ${VAR} substitution and the
// ${VAR:-default} default-value syntax, so credentials stay out of the
// config file:
//
//	"${GROQ_API_KEY}"    → value of GROQ_API_KEY
//	"${PORT:-3001}"      → "3001" when PORT is unset or empty
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]
			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}
		return os.Getenv(key)
	})
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	// Read all bytes to expand environment variables
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	// Start with defaults
	config := DefaultConfig()

	// Decode YAML on top of defaults
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// The api_key default is itself an env reference; resolve it when the
	// document did not override it.
	config.LLM.APIKey = expandEnvVars(config.LLM.APIKey)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	// LLM validation
	if c.LLM.Provider == "" {
		return fmt.Errorf("empty LLM provider")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("empty LLM model")
	}
	if c.LLM.Endpoint == "" {
		return fmt.Errorf("empty LLM endpoint")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("non-positive LLM timeout: %v", c.LLM.Timeout)
	}

	// Profiles validation
	if c.ProfilesPath == "" {
		return fmt.Errorf("empty profiles path")
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// RequireAPIKey returns an error when the API key resolved to empty. It is
// kept out of Validate so configuration files can be linted without the
// credential present.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("GROQ_API_KEY is not set")
	}
	return nil
}
