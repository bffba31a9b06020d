package config

// Default models used when the config does not name one
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// ModelName returns the configured model, falling back to the provider default
func (c *Config) ModelName() string {
	if c.AI.Model != "" {
		return c.AI.Model
	}
	switch c.AI.Provider {
	case "openai":
		return DefaultOpenAIModel
	case "gemini":
		return DefaultGeminiModel
	}
	return ""
}

// MaskAPIKey masks an API key for safe logging
func MaskAPIKey(key string) string {
	if key == "" {
		return "***NOT_SET***"
	}
	if len(key) <= 8 {
		return "***MASKED***"
	}
	return key[:4] + "***" + key[len(key)-4:]
}

// GetLoadedPrompts returns a copy of the prompts loaded from prompt files
func (c *Config) GetLoadedPrompts() LoadedPrompts {
	return getLoadedPrompts()
}
