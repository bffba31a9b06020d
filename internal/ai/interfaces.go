package ai

import (
	"context"

	"cvdigest/internal/types"
)

// AIProvider interface for different AI implementations
// SummarizeCV returns token usage information - callers can ignore it if not needed
type AIProvider interface {
	SummarizeCV(ctx context.Context, input types.SummarizeCVInput) (types.CVSummary, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
