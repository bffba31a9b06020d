package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"cvdigest/internal/errors"
	"cvdigest/internal/types"
)

// rawSummary mirrors the provider JSON with loosely typed fields so that
// models returning a delimited skills string or a quoted number still parse
type rawSummary struct {
	Summary         string          `json:"summary"`
	Skills          json.RawMessage `json:"skills"`
	ExperienceYears json.RawMessage `json:"experience_years"`
}

// ParseCVSummary parses the JSON text returned by an AI provider into a
// CVSummary. Markdown code fences are stripped first. A missing or empty
// summary is a malformed-output error; an unusable experience_years value
// normalizes to nil rather than failing the whole response.
func ParseCVSummary(text string) (types.CVSummary, error) {
	var summary types.CVSummary

	cleaned := stripCodeFences(text)

	var raw rawSummary
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return summary, errors.NewAIError(errors.ErrCodeAIMalformedOutput,
			"AI response is not valid JSON", err)
	}

	raw.Summary = strings.TrimSpace(raw.Summary)
	if raw.Summary == "" {
		return summary, errors.NewAIError(errors.ErrCodeAIMalformedOutput,
			"AI response is missing the summary field", nil)
	}

	summary.Summary = raw.Summary
	summary.Skills = parseSkills(raw.Skills)
	summary.ExperienceYears = parseExperienceYears(raw.ExperienceYears)

	return summary, nil
}

// stripCodeFences removes a surrounding markdown code fence if present
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language tag like "json" on the opening fence
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{[") {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseSkills accepts either a JSON array of strings or a single
// delimiter-separated string (comma, semicolon, or newline)
func parseSkills(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanSkills(list)
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return cleanSkills(splitSkills(single))
	}

	return []string{}
}

func splitSkills(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
}

func cleanSkills(skills []string) []string {
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			result = append(result, skill)
		}
	}
	return result
}

// parseExperienceYears accepts a number or a numeric string. Negative or
// unparsable values normalize to nil.
func parseExperienceYears(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var years float64
	if err := json.Unmarshal(raw, &years); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
		years = parsed
	}

	if years < 0 {
		return nil
	}
	return &years
}
