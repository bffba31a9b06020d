package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cvdigest/internal/ai"
	"cvdigest/internal/config"
	"cvdigest/internal/errors"
	"cvdigest/internal/observability"
	"cvdigest/internal/types"
)

// fakeSummarizer records calls and returns a canned summary or error
type fakeSummarizer struct {
	calls   int
	summary types.CVSummary
	err     error
}

func (f *fakeSummarizer) SummarizeCV(ctx context.Context, input types.SummarizeCVInput) (types.CVSummary, *ai.TokenUsage, error) {
	f.calls++
	if f.err != nil {
		return types.CVSummary{}, nil, f.err
	}
	return f.summary, &ai.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider: "openai",
		},
		Upload: config.UploadConfig{
			MaxFileSize:       1024,
			AllowedExtensions: []string{".pdf", ".txt"},
			MinTextLength:     50,
			MaxPromptChars:    8000,
		},
	}
}

func testLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func newTestServer(t *testing.T, summarizer Summarizer) *Server {
	t.Helper()
	return &Server{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		AppConfig:      testConfig(),
		APIKeys:        map[string]bool{},
		MaxRequestSize: 1 << 20,
		Summarizer:     summarizer,
		Logger:         testLogger(t),
	}
}

func newTestManager(t *testing.T) *observability.ObservabilityManager {
	t.Helper()
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, testConfig())
	if err != nil {
		t.Fatalf("NewObservabilityManager() error = %v", err)
	}
	return om
}

// multipartUpload builds a multipart request body with a single "file" field
func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("part.Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close() error = %v", err)
	}
	return &buf, writer.FormDataContentType()
}

const validCVText = "Senior software engineer with ten years of experience building distributed systems in Go and Python. Led teams of five engineers."

func TestProcessCVSuccess(t *testing.T) {
	years := 10.0
	summarizer := &fakeSummarizer{
		summary: types.CVSummary{
			Summary:         "Senior engineer with distributed systems background.",
			Skills:          []string{"Go", "Python"},
			ExperienceYears: &years,
		},
	}
	s := newTestServer(t, summarizer)
	handler := s.createProcessCVHandler(newTestManager(t))

	body, contentType := multipartUpload(t, "cv.txt", validCVText)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.calls)
	}

	var result struct {
		Summary         string   `json:"summary"`
		Skills          []string `json:"skills"`
		ExperienceYears *float64 `json:"experience_years"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Summary == "" {
		t.Error("summary should not be empty")
	}
	if len(result.Skills) != 2 {
		t.Errorf("skills = %v, want 2 entries", result.Skills)
	}
	if result.ExperienceYears == nil {
		t.Fatal("experience_years should be present")
	}
	if *result.ExperienceYears < 0 {
		t.Errorf("experience_years = %v, want >= 0", *result.ExperienceYears)
	}
}

func TestProcessCVRejectsWithoutCallingProvider(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  string
	}{
		{
			name:     "unsupported extension",
			fileName: "cv.exe",
			content:  validCVText,
		},
		{
			name:     "oversize file",
			fileName: "cv.txt",
			content:  strings.Repeat("x", 2048),
		},
		{
			name:     "no extractable text",
			fileName: "cv.txt",
			content:  "too short",
		},
		{
			name:     "corrupt pdf",
			fileName: "cv.pdf",
			content:  "this is not a pdf document at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summarizer := &fakeSummarizer{}
			s := newTestServer(t, summarizer)
			handler := s.createProcessCVHandler(newTestManager(t))

			body, contentType := multipartUpload(t, tt.fileName, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code < 400 || rec.Code >= 500 {
				t.Errorf("status = %d, want 4xx, body: %s", rec.Code, rec.Body.String())
			}
			if summarizer.calls != 0 {
				t.Errorf("summarizer calls = %d, want 0", summarizer.calls)
			}
		})
	}
}

func TestProcessCVMissingFileField(t *testing.T) {
	s := newTestServer(t, &fakeSummarizer{})
	handler := s.createProcessCVHandler(newTestManager(t))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestProcessCVMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeSummarizer{})
	handler := s.createProcessCVHandler(newTestManager(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/process-cv", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestProcessCVProviderError(t *testing.T) {
	summarizer := &fakeSummarizer{
		err: errors.NewAIError(errors.ErrCodeAIServiceFailed, "provider unavailable", nil),
	}
	s := newTestServer(t, summarizer)
	handler := s.createProcessCVHandler(newTestManager(t))

	body, contentType := multipartUpload(t, "cv.txt", validCVText)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error == "" {
		t.Error("error response should carry an error title")
	}
}

func TestProcessCVMalformedOutputError(t *testing.T) {
	summarizer := &fakeSummarizer{
		err: errors.NewAIError(errors.ErrCodeAIMalformedOutput, "model returned invalid JSON", nil),
	}
	s := newTestServer(t, summarizer)
	handler := s.createProcessCVHandler(newTestManager(t))

	body, contentType := multipartUpload(t, "cv.txt", validCVText)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestProcessCVNoProviderConfigured(t *testing.T) {
	// No injected summarizer and no API key: the service cannot be built
	s := newTestServer(t, nil)
	handler := s.createProcessCVHandler(newTestManager(t))

	body, contentType := multipartUpload(t, "cv.txt", validCVText)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d, body: %s", rec.Code, http.StatusServiceUnavailable, rec.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		apiKeys    map[string]bool
		header     string
		value      string
		wantStatus int
	}{
		{
			name:       "no keys configured skips auth",
			apiKeys:    map[string]bool{},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing key rejected",
			apiKeys:    map[string]bool{"secret-key-123": true},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid X-API-Key accepted",
			apiKeys:    map[string]bool{"secret-key-123": true},
			header:     "X-API-Key",
			value:      "secret-key-123",
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid bearer token accepted",
			apiKeys:    map[string]bool{"secret-key-123": true},
			header:     "Authorization",
			value:      "Bearer secret-key-123",
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid key rejected",
			apiKeys:    map[string]bool{"secret-key-123": true},
			header:     "X-API-Key",
			value:      "wrong-key",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeSummarizer{})
			s.APIKeys = tt.apiKeys

			called := false
			handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && !called {
				t.Error("handler should have been called")
			}
			if tt.wantStatus == http.StatusUnauthorized && called {
				t.Error("handler should not have been called")
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, &fakeSummarizer{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	s.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
	if response["service"] != "cvdigest" {
		t.Errorf("service = %v, want cvdigest", response["service"])
	}
}

func TestStatsHandler(t *testing.T) {
	s := newTestServer(t, &fakeSummarizer{})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	s.statsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := response["upload"]; !ok {
		t.Error("stats should include upload section")
	}
	if _, ok := response["rate_limiting"]; !ok {
		t.Error("stats should include rate_limiting section")
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	s := newTestServer(t, &fakeSummarizer{})
	s.MaxRequestSize = 256

	handler := s.requestSizeLimitMiddleware()(s.createProcessCVHandler(newTestManager(t)))

	body, contentType := multipartUpload(t, "cv.txt", strings.Repeat("x", 1024))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
