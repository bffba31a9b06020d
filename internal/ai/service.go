package ai

import (
	"context"
	"fmt"

	"cvdigest/internal/config"
	"cvdigest/internal/errors"
)

// Service handles AI operations for CV processing
type Service struct {
	Provider AIProvider // Exported for access from server package
	cfg      *config.Config
	logger   *errors.Logger
}

// NewService creates a new AI service instance for the configured provider
func NewService(cfg *config.Config, logger *errors.Logger) (*Service, error) {
	if cfg.AI.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("No API key configured for AI provider %q", cfg.AI.Provider), nil)
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.AI.Provider,
		"model", cfg.ModelName(),
		"temperature", cfg.AI.Temperature,
		"timeout", cfg.AI.Timeout,
		"max_retries", cfg.AI.MaxRetries,
		"use_system_prompts", cfg.AI.UseSystemPrompts)

	var (
		provider AIProvider
		err      error
	)
	switch cfg.AI.Provider {
	case "openai":
		provider, err = NewOpenAIProvider(cfg, logger)
	case "gemini":
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources
func (s *Service) Close() error {
	return s.Provider.Close()
}
