package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"cvdigest/internal/ai"
	appErrors "cvdigest/internal/errors"
	"cvdigest/internal/extract"
	"cvdigest/internal/observability"
	"cvdigest/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createProcessCVHandler wraps the CV processing handler with observability
func (s *Server) createProcessCVHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvdigest.api")
		ctx, span := tracer.Start(ctx, "api.process_cv")
		defer span.End()

		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST with multipart/form-data", http.StatusMethodNotAllowed)
			return
		}

		doc, err := s.readUploadedFile(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			s.writeAppError(w, r, err)
			return
		}

		span.SetAttributes(
			attribute.String("request.file_name", doc.FileName),
			attribute.Int64("request.file_size", doc.Size),
			attribute.String("operation", "process_cv"),
		)

		metrics := om.GetMetrics()

		// Validation and extraction never touch the AI provider; every
		// rejection returns before the summarizer is built
		text, err := s.extractor().Text(doc)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "extraction"))
			metrics.RecordBusinessMetric(ctx, "upload_rejected", true, om,
				attribute.String("reason", errorCode(err)))
			s.writeAppError(w, r, err)
			return
		}

		span.SetAttributes(attribute.Int("request.text_length", len(text)))

		summarizer, err := s.summarizer()
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			s.writeAppError(w, r, err)
			return
		}

		input := types.SummarizeCVInput{CVText: text}

		// Track AI operation with observability and token usage
		var result types.CVSummary
		err = metrics.TrackAIOperationWithTokens(ctx, "summarize_cv", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := summarizer.SummarizeCV(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "cv_processed", false, om,
				attribute.String("error", err.Error()))
			s.writeAppError(w, r, err)
			return
		}

		// Record success metrics
		metrics.RecordBusinessMetric(ctx, "cv_processed", true, om,
			attribute.Int("output.summary_length", len(result.Summary)),
			attribute.Int("output.skills_count", len(result.Skills)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.skills_count", len(result.Skills)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// readUploadedFile parses the multipart form and reads the "file" field
func (s *Server) readUploadedFile(r *http.Request) (types.UploadedDocument, error) {
	var doc types.UploadedDocument

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return doc, appErrors.NewValidationError(appErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", maxBytesErr.Limit), err)
		}
		return doc, appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"multipart form field \"file\" is required", err)
	}
	defer func() { _ = file.Close() }()

	// Cheap checks first so oversize and bad-extension uploads are
	// rejected before the body is read into memory
	if err := s.extractor().ValidateUpload(header.Filename, header.Size); err != nil {
		return doc, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return doc, appErrors.NewValidationError(appErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", maxBytesErr.Limit), err)
		}
		return doc, appErrors.NewIOError(appErrors.ErrCodeFileNotReadable,
			"failed to read uploaded file", err)
	}

	return types.UploadedDocument{
		FileName: header.Filename,
		Size:     header.Size,
		Data:     data,
	}, nil
}

// extractor returns the injected extractor or builds one from the config
func (s *Server) extractor() DocumentExtractor {
	if s.Extractor != nil {
		return s.Extractor
	}
	return extract.NewExtractor(s.AppConfig.Upload, s.Logger)
}

// summarizer returns the injected summarizer or builds the configured AI provider
func (s *Server) summarizer() (Summarizer, error) {
	if s.Summarizer != nil {
		return s.Summarizer, nil
	}
	aiService, err := ai.NewService(s.AppConfig, s.Logger)
	if err != nil {
		return nil, err
	}
	return aiService.Provider, nil
}

// writeAppError maps an application error to an HTTP status code and body
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	errorTitle := "Internal server error"
	message := err.Error()

	var appErr *appErrors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
		switch {
		case appErr.Code == appErrors.ErrCodeMissingAPIKey:
			status = http.StatusServiceUnavailable
			errorTitle = "AI provider not configured"
		case appErr.Type == appErrors.ErrorTypeValidation:
			status = http.StatusBadRequest
			errorTitle = "Invalid upload"
		case appErr.Type == appErrors.ErrorTypeConfig:
			status = http.StatusServiceUnavailable
			errorTitle = "Service misconfigured"
		case appErr.Type == appErrors.ErrorTypeAI, appErr.Type == appErrors.ErrorTypeNetwork:
			status = http.StatusInternalServerError
			errorTitle = "CV processing failed"
		}
	}

	s.Logger.LogError(err, "Request failed",
		"endpoint", r.URL.Path,
		"status", status)

	writeErrorResponse(w, errorTitle, message, status)
}

// errorCode extracts the application error code for metric labels
func errorCode(err error) string {
	var appErr *appErrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
