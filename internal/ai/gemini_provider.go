package ai

import (
	"context"
	"fmt"

	"cvdigest/internal/config"
	appErrors "cvdigest/internal/errors"
	"cvdigest/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	cfg            *config.Config
	model          string
	circuitBreaker *AICircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *ModelCircuitBreaker
	logger         *appErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(cfg *config.Config, logger *appErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.AI.APIKey,
	})
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	circuitBreaker := NewAICircuitBreaker[*genai.GenerateContentResponse](
		"AI-gemini", cfg.AI.CircuitBreaker, logger)
	modelBreaker := NewModelCircuitBreaker("AI-Model-gemini", cfg.AI.CircuitBreaker, logger)

	return &GeminiProvider{
		client:         client,
		cfg:            cfg,
		model:          cfg.ModelName(),
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, g.cfg.Observability.HealthCheck.AIModelCheckTimeout)
	defer cancel()

	// Get model information from Gemini API with circuit breaker
	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		g.logger.Warn("Model availability check failed",
			"model", g.model,
			"provider", "gemini",
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.model,
		"provider", "gemini",
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// SummarizeCV implements AIProvider for CV summarization
func (g *GeminiProvider) SummarizeCV(ctx context.Context, input types.SummarizeCVInput) (types.CVSummary, *TokenUsage, error) {
	tracer := otel.Tracer("cvdigest.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.summarize_cv")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.model),
		attribute.Float64("ai.temperature", float64(g.cfg.AI.Temperature)),
		attribute.Int("input.cv_length", len(input.CVText)),
	)

	systemPrompt, userPrompt := buildPrompts(g.cfg, input.CVText, g.cfg.Upload.MaxPromptChars)
	genaiConfig := g.buildSummarySchema()

	if g.cfg.AI.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return executeWithRetry(ctx, g.logger, "summarize_cv", g.cfg.AI.MaxRetries,
			func() (*genai.GenerateContentResponse, error) {
				return g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), genaiConfig)
			})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.CVSummary{}, nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to generate CV summary", err)
	}

	summary, err := ParseCVSummary(result.Text())
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.CVSummary{}, nil, err
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.skills_count", len(summary.Skills)),
	)
	return summary, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildSummarySchema creates the structured-output schema for CV summaries
func (g *GeminiProvider) buildSummarySchema() *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
				"skills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"experience_years": {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
			},
			Required: []string{"summary", "skills"},
		},
	}

	// Apply temperature configuration if set
	if g.cfg.AI.Temperature > 0 {
		genaiConfig.Temperature = genai.Ptr(g.cfg.AI.Temperature)
	}

	return genaiConfig
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
