package config

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() Config {
	return Config{
		AI: AIConfig{
			Provider: "openai",
			Timeout:  60 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSize:       10 * 1024 * 1024,
			AllowedExtensions: []string{".pdf"},
			MinTextLength:     50,
			MaxPromptChars:    8000,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid without API key",
			mutate: func(c *Config) { c.AI.APIKey = "" },
		},
		{
			name:    "unsupported provider",
			mutate:  func(c *Config) { c.AI.Provider = "anthropic" },
			wantErr: "unsupported AI provider",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "missing server port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantErr: "max file size must be positive",
		},
		{
			name:    "no allowed extensions",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = nil },
			wantErr: "at least one allowed upload extension",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = []string{"pdf"} },
			wantErr: "must start with a dot",
		},
		{
			name:    "negative min text length",
			mutate:  func(c *Config) { c.Upload.MinTextLength = -1 },
			wantErr: "min text length must not be negative",
		},
		{
			name:    "default format not supported",
			mutate:  func(c *Config) { c.App.DefaultFormat = "yaml" },
			wantErr: "invalid default format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsProviderConfigured(t *testing.T) {
	cfg := validTestConfig()

	if cfg.IsProviderConfigured() {
		t.Error("provider should not be configured without an API key")
	}

	cfg.AI.APIKey = "sk-test-key"
	if !cfg.IsProviderConfigured() {
		t.Error("provider should be configured with an API key")
	}
}

func TestModelName(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{
			name:     "explicit model wins",
			provider: "openai",
			model:    "gpt-4o",
			want:     "gpt-4o",
		},
		{
			name:     "openai default",
			provider: "openai",
			want:     DefaultOpenAIModel,
		},
		{
			name:     "gemini default",
			provider: "gemini",
			want:     DefaultGeminiModel,
		},
		{
			name:     "unknown provider has no default",
			provider: "other",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{AI: AIConfig{Provider: tt.provider, Model: tt.model}}
			if got := cfg.ModelName(); got != tt.want {
				t.Errorf("ModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "empty key", key: "", want: "***NOT_SET***"},
		{name: "short key", key: "abcd1234", want: "***MASKED***"},
		{name: "long key keeps edges", key: "sk-abcdefghijklmnop", want: "sk-a***mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
