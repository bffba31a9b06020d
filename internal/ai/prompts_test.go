package ai

import (
	"strings"
	"testing"

	"cvdigest/internal/config"
)

func TestResolvePrompt(t *testing.T) {
	tests := []struct {
		name           string
		loadedFromFile string
		fromConfig     string
		fromDefault    string
		want           string
	}{
		{
			name:           "file wins over config and default",
			loadedFromFile: "from-file",
			fromConfig:     "from-config",
			fromDefault:    "from-default",
			want:           "from-file",
		},
		{
			name:        "config wins over default",
			fromConfig:  "from-config",
			fromDefault: "from-default",
			want:        "from-config",
		},
		{
			name:        "default when nothing else set",
			fromDefault: "from-default",
			want:        "from-default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolvePrompt(tt.loadedFromFile, tt.fromConfig, tt.fromDefault)
			if got != tt.want {
				t.Errorf("resolvePrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPromptsUsesDefaults(t *testing.T) {
	cfg := &config.Config{}

	systemPrompt, userPrompt := buildPrompts(cfg, "CV text body", 8000)

	if systemPrompt != DefaultSystemPrompt {
		t.Error("expected the default system prompt")
	}
	if !strings.Contains(userPrompt, "CV text body") {
		t.Error("user prompt should contain the CV text")
	}
	if !strings.Contains(userPrompt, "experience_years") {
		t.Error("user prompt should describe the expected JSON fields")
	}
}

func TestBuildPromptsCapsCVText(t *testing.T) {
	cfg := &config.Config{}
	cvText := strings.Repeat("a", 500)

	_, userPrompt := buildPrompts(cfg, cvText, 100)

	if strings.Contains(userPrompt, strings.Repeat("a", 101)) {
		t.Error("CV text should be capped at the configured limit")
	}
	if !strings.Contains(userPrompt, strings.Repeat("a", 100)) {
		t.Error("capped CV text should still be present")
	}
}

func TestBuildPromptsCustomFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.CustomPrompts.SystemPrompt = "custom system"
	cfg.AI.CustomPrompts.UserPrompt = "custom user: %s"

	systemPrompt, userPrompt := buildPrompts(cfg, "text", 0)

	if systemPrompt != "custom system" {
		t.Errorf("systemPrompt = %q, want custom system", systemPrompt)
	}
	if userPrompt != "custom user: text" {
		t.Errorf("userPrompt = %q, want custom user: text", userPrompt)
	}
}
