package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cvdigest/internal/config"
	appErrors "cvdigest/internal/errors"
	"cvdigest/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements AIProvider using the OpenAI chat completions API
type OpenAIProvider struct {
	baseURL        string
	cfg            *config.Config
	model          string
	httpClient     *http.Client
	circuitBreaker *AICircuitBreaker[*chatResponse]
	logger         *appErrors.Logger
}

// Ensure OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(cfg *config.Config, logger *appErrors.Logger) (*OpenAIProvider, error) {
	baseURL := cfg.AI.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	circuitBreaker := NewAICircuitBreaker[*chatResponse]("AI-openai", cfg.AI.CircuitBreaker, logger)

	return &OpenAIProvider{
		baseURL: baseURL,
		cfg:     cfg,
		model:   cfg.ModelName(),
		httpClient: &http.Client{
			Timeout: cfg.AI.Timeout,
		},
		circuitBreaker: circuitBreaker,
		logger:         logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// SummarizeCV implements AIProvider for CV summarization
func (o *OpenAIProvider) SummarizeCV(ctx context.Context, input types.SummarizeCVInput) (types.CVSummary, *TokenUsage, error) {
	tracer := otel.Tracer("cvdigest.ai.openai")
	ctx, span := tracer.Start(ctx, "openai.summarize_cv")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", o.model),
		attribute.Float64("ai.temperature", float64(o.cfg.AI.Temperature)),
		attribute.Int("input.cv_length", len(input.CVText)),
	)

	systemPrompt, userPrompt := buildPrompts(o.cfg, input.CVText, o.cfg.Upload.MaxPromptChars)

	messages := make([]chatMessage, 0, 2)
	if o.cfg.AI.UseSystemPrompts && systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	result, err := o.circuitBreaker.Execute(func() (*chatResponse, error) {
		return executeWithRetry(ctx, o.logger, "summarize_cv", o.cfg.AI.MaxRetries,
			func() (*chatResponse, error) {
				return o.chatCompletion(ctx, messages)
			})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.CVSummary{}, nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to generate CV summary", err)
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	summary, err := ParseCVSummary(content)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.CVSummary{}, nil, err
	}

	tokenUsage := extractChatUsage(result)
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

// chatCompletion performs a single chat completions request
func (o *OpenAIProvider) chatCompletion(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody := chatRequest{
		Model:    o.model,
		Messages: messages,
		ResponseFormat: &responseFormat{
			Type: "json_object",
		},
	}
	if o.cfg.AI.Temperature > 0 {
		temp := o.cfg.AI.Temperature
		reqBody.Temperature = &temp
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.AI.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{
			StatusCode: resp.StatusCode,
			Message:    truncateBody(body),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai response missing choices")
	}
	if strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("openai response empty content")
	}

	return &parsed, nil
}

func truncateBody(body []byte) string {
	const maxLen = 512
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// GetModelInfo reports the configured model. The chat completions API has no
// cheap readiness probe, so availability mirrors whether a key is present.
func (o *OpenAIProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{
		Name:      o.model,
		Available: o.cfg.AI.APIKey != "",
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (o *OpenAIProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":   o.circuitBreaker.GetStats(),
		"overall_healthy": o.circuitBreaker.IsHealthy(),
	}
}

// Close implements AIProvider interface
func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// extractChatUsage extracts token usage information from a chat completions response
func extractChatUsage(result *chatResponse) *TokenUsage {
	if result == nil || result.Usage == nil {
		return nil
	}

	return &TokenUsage{
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		TotalTokens:  result.Usage.TotalTokens,
	}
}
