package extract

import (
	"strings"
	"testing"

	"cvdigest/internal/config"
	"cvdigest/internal/errors"
	"cvdigest/internal/types"
)

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxFileSize:       1024,
		AllowedExtensions: []string{".pdf", ".txt"},
		MinTextLength:     50,
	}
}

func TestValidateUpload(t *testing.T) {
	e := NewExtractor(testUploadConfig(), nil)

	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  bool
		wantCode string
	}{
		{
			name:     "allowed pdf",
			fileName: "resume.pdf",
			size:     512,
			wantErr:  false,
		},
		{
			name:     "allowed txt",
			fileName: "resume.txt",
			size:     100,
			wantErr:  false,
		},
		{
			name:     "uppercase extension is allowed",
			fileName: "RESUME.PDF",
			size:     512,
			wantErr:  false,
		},
		{
			name:     "disallowed extension",
			fileName: "resume.exe",
			size:     10,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidFileType,
		},
		{
			name:     "no extension",
			fileName: "resume",
			size:     10,
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidFileType,
		},
		{
			name:     "oversize file",
			fileName: "resume.pdf",
			size:     2048,
			wantErr:  true,
			wantCode: errors.ErrCodeFileTooLarge,
		},
		{
			name:     "exactly at the limit",
			fileName: "resume.pdf",
			size:     1024,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateUpload(tt.fileName, tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUpload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				appErr, ok := err.(*errors.AppError)
				if !ok {
					t.Fatalf("expected *errors.AppError, got %T", err)
				}
				if appErr.Code != tt.wantCode {
					t.Errorf("error code = %s, want %s", appErr.Code, tt.wantCode)
				}
				if appErr.Type != errors.ErrorTypeValidation {
					t.Errorf("error type = %s, want %s", appErr.Type, errors.ErrorTypeValidation)
				}
			}
		})
	}
}

func TestTextPlainDocument(t *testing.T) {
	e := NewExtractor(testUploadConfig(), nil)

	content := "Senior Go developer with ten years of experience building distributed systems."
	doc := types.UploadedDocument{
		FileName: "cv.txt",
		Size:     int64(len(content)),
		Data:     []byte(content),
	}

	text, err := e.Text(doc)
	if err != nil {
		t.Fatalf("Text() unexpected error: %v", err)
	}
	if text != content {
		t.Errorf("Text() = %q, want %q", text, content)
	}
}

func TestTextTooShort(t *testing.T) {
	e := NewExtractor(testUploadConfig(), nil)

	doc := types.UploadedDocument{
		FileName: "cv.txt",
		Size:     5,
		Data:     []byte("short"),
	}

	_, err := e.Text(doc)
	if err == nil {
		t.Fatal("expected error for document below minimum text length")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeNoExtractableText {
		t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeNoExtractableText)
	}
}

func TestTextCorruptPDF(t *testing.T) {
	cfg := testUploadConfig()
	e := NewExtractor(cfg, nil)

	doc := types.UploadedDocument{
		FileName: "cv.pdf",
		Size:     20,
		Data:     []byte("this is not a pdf at all"),
	}

	_, err := e.Text(doc)
	if err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeValidation {
		t.Errorf("error type = %s, want %s", appErr.Type, errors.ErrorTypeValidation)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses horizontal whitespace",
			input: "Go   developer\twith    experience",
			want:  "Go developer with experience",
		},
		{
			name:  "collapses excess blank lines",
			input: "Experience\n\n\n\n\nEducation",
			want:  "Experience\n\nEducation",
		},
		{
			name:  "repairs OCR confusion in years",
			input: "Worked from 2O19 until 202l",
			want:  "Worked from 2019 until 2021",
		},
		{
			name:  "canonicalizes open-ended ranges",
			input: "2019 - present and 2021 to CURRENT",
			want:  "2019 - Present and 2021 to Present",
		},
		{
			name:  "leaves current alone outside a range",
			input: "current role: engineer",
			want:  "current role: engineer",
		},
		{
			name:  "trims surrounding whitespace",
			input: "  text body  ",
			want:  "text body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextNormalizesBeforeLengthCheck(t *testing.T) {
	e := NewExtractor(testUploadConfig(), nil)

	// Plenty of raw bytes but almost nothing after whitespace collapse
	content := strings.Repeat(" \t\n", 100) + "tiny"
	doc := types.UploadedDocument{
		FileName: "cv.txt",
		Size:     int64(len(content)),
		Data:     []byte(content),
	}

	_, err := e.Text(doc)
	if err == nil {
		t.Fatal("expected error when normalized text is below the minimum length")
	}
}
