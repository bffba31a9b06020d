// Package extract turns uploaded CV documents into plain text and
// validates them against the configured upload limits.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"cvdigest/internal/config"
	"cvdigest/internal/errors"
	"cvdigest/internal/types"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var docxTagPattern = regexp.MustCompile(`<[^>]+>`)

// Extractor validates uploads and extracts their text content
type Extractor struct {
	cfg    config.UploadConfig
	logger *errors.Logger
}

// NewExtractor creates an Extractor with the given upload configuration
func NewExtractor(cfg config.UploadConfig, logger *errors.Logger) *Extractor {
	return &Extractor{cfg: cfg, logger: logger}
}

// ValidateUpload checks the file name and size against the configured limits.
// It runs before any bytes are parsed so rejected uploads never reach a parser
// or the AI provider.
func (e *Extractor) ValidateUpload(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || !slices.Contains(e.cfg.AllowedExtensions, ext) {
		return errors.NewValidationError(
			errors.ErrCodeInvalidFileType,
			fmt.Sprintf("file type not allowed: %q (allowed: %s)", ext, strings.Join(e.cfg.AllowedExtensions, ", ")),
			nil,
		).WithContext("file_name", fileName)
	}

	if size > e.cfg.MaxFileSize {
		return errors.NewValidationError(
			errors.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d bytes", e.cfg.MaxFileSize),
			nil,
		).WithContext("file_size", size)
	}

	return nil
}

// Text extracts plain text from the uploaded document, dispatching on the
// file extension. The returned text is normalized and checked against the
// configured minimum length.
func (e *Extractor) Text(doc types.UploadedDocument) (string, error) {
	if err := e.ValidateUpload(doc.FileName, doc.Size); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(doc.FileName))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(doc.Data)
	case ".docx":
		text, err = extractDOCX(doc.Data)
	case ".txt":
		text = string(doc.Data)
	default:
		// ValidateUpload admitted the extension but no parser handles it;
		// the allow-list and this switch must stay in sync
		return "", errors.NewValidationError(
			errors.ErrCodeInvalidFileType,
			fmt.Sprintf("no extractor for file type %q", ext),
			nil,
		)
	}
	if err != nil {
		return "", errors.NewValidationError(
			errors.ErrCodeExtractionFailed,
			"could not extract text from document",
			err,
		).WithContext("file_name", doc.FileName)
	}

	text = Normalize(text)
	if len(text) < e.cfg.MinTextLength {
		return "", errors.NewValidationError(
			errors.ErrCodeNoExtractableText,
			fmt.Sprintf("document contains no extractable text (minimum %d characters)", e.cfg.MinTextLength),
			nil,
		).WithContext("extracted_length", len(text))
	}

	if e.logger != nil {
		e.logger.Debug("Extracted document text",
			"file_name", doc.FileName,
			"file_size", doc.Size,
			"text_length", len(text))
	}

	return text, nil
}

// extractPDF pulls the plain text out of every page of a PDF document
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the whole document
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// extractDOCX reads a DOCX document and strips the XML markup
func extractDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer func() { _ = reader.Close() }()

	content := reader.Editable().GetContent()
	// Paragraph boundaries become newlines before the remaining tags go
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = docxTagPattern.ReplaceAllString(content, " ")

	return content, nil
}
