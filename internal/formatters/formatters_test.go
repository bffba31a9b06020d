package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"cvdigest/internal/types"
)

func sampleSummary() types.CVSummary {
	years := 7.5
	return types.CVSummary{
		Summary:         "Backend engineer focused on distributed systems.",
		Skills:          []string{"Go", "PostgreSQL", "Kubernetes"},
		ExperienceYears: &years,
	}
}

func TestFormatJSON(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleSummary(), "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["summary"]; !ok {
		t.Error("JSON output should contain a summary field")
	}
	if _, ok := decoded["experience_years"]; !ok {
		t.Error("JSON output should contain an experience_years field")
	}
}

func TestFormatText(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleSummary(), "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{"CV SUMMARY", "SKILLS", "- Go", "7.5"} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q", want)
		}
	}
}

func TestFormatMarkdown(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleSummary(), "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(output, "# CV Summary") {
		t.Error("markdown output should have a top-level heading")
	}
	if !strings.Contains(output, "- Go") {
		t.Error("markdown output should list skills")
	}
}

func TestFormatUnknownExperience(t *testing.T) {
	summary := sampleSummary()
	summary.ExperienceYears = nil

	output, err := GlobalRegistry.Format(summary, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(output, "unknown") {
		t.Error("text output should mark unknown experience")
	}
}

func TestFormatUnsupported(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleSummary(), "yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
