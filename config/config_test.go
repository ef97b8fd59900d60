package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	yamlConfig := `
server:
  port: 9090
  read_timeout: 45s
  write_timeout: 60s
  max_header_bytes: 2097152
  shutdown_timeout: 45s

llm:
  provider: groq
  model: llama3-70b-8192
  api_key: test-key
  timeout: 20s

logging:
  level: debug
  format: json

profiles_path: testdata/profiles.yaml
`

	config, err := Load(strings.NewReader(yamlConfig))
	if err != nil {
		t.Fatalf("Failed to load valid config: %v", err)
	}

	// Check server config
	if config.Server.Port != 9090 {
		t.Errorf("unexpected port: got %d, want %d", config.Server.Port, 9090)
	}
	if config.Server.ReadTimeout != 45*time.Second {
		t.Errorf("unexpected read timeout: got %v, want %v", config.Server.ReadTimeout, 45*time.Second)
	}

	// Check LLM config
	if config.LLM.Provider != "groq" {
		t.Errorf("unexpected provider: got %s, want %s", config.LLM.Provider, "groq")
	}
	if config.LLM.Model != "llama3-70b-8192" {
		t.Errorf("unexpected model: got %s, want %s", config.LLM.Model, "llama3-70b-8192")
	}
	if config.LLM.Timeout != 20*time.Second {
		t.Errorf("unexpected LLM timeout: got %v, want %v", config.LLM.Timeout, 20*time.Second)
	}

	// Check logging config
	if config.Logging.Level != "debug" {
		t.Errorf("unexpected log level: got %s, want %s", config.Logging.Level, "debug")
	}

	if config.ProfilesPath != "testdata/profiles.yaml" {
		t.Errorf("unexpected profiles path: got %s", config.ProfilesPath)
	}
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load(strings.NewReader("llm:\n  api_key: test-key\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Server.Port != 3001 {
		t.Errorf("unexpected default port: got %d, want 3001", config.Server.Port)
	}
	if config.LLM.Model != "llama3-8b-8192" {
		t.Errorf("unexpected default model: got %s", config.LLM.Model)
	}
	if config.LLM.Endpoint != "https://api.groq.com/openai/v1/chat/completions" {
		t.Errorf("unexpected default endpoint: got %s", config.LLM.Endpoint)
	}
	if config.LLM.Timeout != 30*time.Second {
		t.Errorf("unexpected default timeout: got %v", config.LLM.Timeout)
	}
	if config.ProfilesPath != "profiles.yaml" {
		t.Errorf("unexpected default profiles path: got %s", config.ProfilesPath)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{
			name: "invalid port",
			config: `
server:
  port: 99999
`,
			want: "invalid port",
		},
		{
			name: "empty model",
			config: `
llm:
  model: ""
`,
			want: "empty LLM model",
		},
		{
			name: "non-positive llm timeout",
			config: `
llm:
  timeout: -5s
`,
			want: "non-positive LLM timeout",
		},
		{
			name: "invalid log level",
			config: `
logging:
  level: verbose
`,
			want: "invalid log level",
		},
		{
			name: "empty profiles path",
			config: `
profiles_path: ""
`,
			want: "empty profiles path",
		},
		{
			name:   "malformed yaml",
			config: "server: [not a map",
			want:   "decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.config))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestEnvironmentVariableExpansion(t *testing.T) {
	original := os.Getenv("GROQ_API_KEY")
	defer os.Setenv("GROQ_API_KEY", original)

	t.Run("explicit reference in document", func(t *testing.T) {
		os.Setenv("GROQ_API_KEY", "gsk-test-123")
		config, err := Load(strings.NewReader("llm:\n  api_key: ${GROQ_API_KEY}\n"))
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.LLM.APIKey != "gsk-test-123" {
			t.Errorf("API key not expanded, got %q", config.LLM.APIKey)
		}
		if err := config.RequireAPIKey(); err != nil {
			t.Errorf("RequireAPIKey() = %v, want nil", err)
		}
	})

	t.Run("default api_key reference resolves from environment", func(t *testing.T) {
		os.Setenv("GROQ_API_KEY", "gsk-from-env")
		config, err := Load(strings.NewReader("logging:\n  level: info\n"))
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.LLM.APIKey != "gsk-from-env" {
			t.Errorf("default API key not expanded, got %q", config.LLM.APIKey)
		}
	})

	t.Run("missing credential caught by RequireAPIKey", func(t *testing.T) {
		os.Setenv("GROQ_API_KEY", "")
		config, err := Load(strings.NewReader("logging:\n  level: info\n"))
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if err := config.RequireAPIKey(); err == nil {
			t.Error("RequireAPIKey() = nil, want error for empty credential")
		}
	})

	t.Run("default value syntax", func(t *testing.T) {
		os.Unsetenv("LEADLINE_PORT")
		config, err := Load(strings.NewReader("server:\n  port: ${LEADLINE_PORT:-8088}\nllm:\n  api_key: k\n"))
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Server.Port != 8088 {
			t.Errorf("default value not applied, got %d", config.Server.Port)
		}
	})
}
