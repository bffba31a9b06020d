package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"cvdigest/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "CVSummary", &CVSummaryTextFormatter{})
	registry.RegisterFormatter("markdown", "CVSummary", &CVSummaryMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CVSummary:
		return "CVSummary"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// CVSummaryTextFormatter handles text formatting for CV summaries
type CVSummaryTextFormatter struct{}

func (ctf *CVSummaryTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CVSummary)
	if !ok {
		return "", fmt.Errorf("expected CVSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CV SUMMARY ===\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	output.WriteString("=== SKILLS ===\n")
	if len(result.Skills) > 0 {
		for _, skill := range result.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	} else {
		output.WriteString("No skills identified.\n")
	}
	output.WriteString("\n")

	output.WriteString("=== EXPERIENCE ===\n")
	if result.ExperienceYears != nil {
		output.WriteString(fmt.Sprintf("Years of experience: %.1f\n", *result.ExperienceYears))
	} else {
		output.WriteString("Years of experience: unknown\n")
	}

	return output.String(), nil
}

func (ctf *CVSummaryTextFormatter) SupportedType() string {
	return "CVSummary"
}

// CVSummaryMarkdownFormatter handles markdown formatting for CV summaries
type CVSummaryMarkdownFormatter struct{}

func (cmf *CVSummaryMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CVSummary)
	if !ok {
		return "", fmt.Errorf("expected CVSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# CV Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	output.WriteString("## Skills\n\n")
	if len(result.Skills) > 0 {
		for _, skill := range result.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	} else {
		output.WriteString("No skills identified.\n")
	}
	output.WriteString("\n")

	output.WriteString("## Experience\n\n")
	if result.ExperienceYears != nil {
		output.WriteString(fmt.Sprintf("**Years of experience:** %.1f\n", *result.ExperienceYears))
	} else {
		output.WriteString("**Years of experience:** unknown\n")
	}

	return output.String(), nil
}

func (cmf *CVSummaryMarkdownFormatter) SupportedType() string {
	return "CVSummary"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
