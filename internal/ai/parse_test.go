package ai

import (
	"testing"

	"cvdigest/internal/errors"
)

func TestParseCVSummary(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		wantSkills []string
		wantYears  *float64
	}{
		{
			name:       "well formed response",
			input:      `{"summary":"Experienced Go developer.","skills":["Go","Kubernetes"],"experience_years":8}`,
			wantSkills: []string{"Go", "Kubernetes"},
			wantYears:  ptr(8.0),
		},
		{
			name:       "fenced response with language tag",
			input:      "```json\n{\"summary\":\"Backend engineer.\",\"skills\":[\"Go\"],\"experience_years\":3.5}\n```",
			wantSkills: []string{"Go"},
			wantYears:  ptr(3.5),
		},
		{
			name:       "skills as comma separated string",
			input:      `{"summary":"DevOps engineer.","skills":"Terraform, Ansible; Docker","experience_years":5}`,
			wantSkills: []string{"Terraform", "Ansible", "Docker"},
			wantYears:  ptr(5.0),
		},
		{
			name:       "experience as numeric string",
			input:      `{"summary":"Data analyst.","skills":["SQL"],"experience_years":"4"}`,
			wantSkills: []string{"SQL"},
			wantYears:  ptr(4.0),
		},
		{
			name:       "negative experience normalizes to null",
			input:      `{"summary":"Junior developer.","skills":["Python"],"experience_years":-2}`,
			wantSkills: []string{"Python"},
			wantYears:  nil,
		},
		{
			name:       "unparsable experience normalizes to null",
			input:      `{"summary":"Designer.","skills":["Figma"],"experience_years":"several"}`,
			wantSkills: []string{"Figma"},
			wantYears:  nil,
		},
		{
			name:       "explicit null experience",
			input:      `{"summary":"Recent graduate.","skills":["Java"],"experience_years":null}`,
			wantSkills: []string{"Java"},
			wantYears:  nil,
		},
		{
			name:       "missing skills yields empty slice",
			input:      `{"summary":"Manager."}`,
			wantSkills: []string{},
			wantYears:  nil,
		},
		{
			name:    "missing summary is malformed",
			input:   `{"skills":["Go"],"experience_years":2}`,
			wantErr: true,
		},
		{
			name:    "whitespace only summary is malformed",
			input:   `{"summary":"   ","skills":[]}`,
			wantErr: true,
		},
		{
			name:    "not json at all",
			input:   "I could not process that CV, sorry.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCVSummary(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCVSummary() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				appErr, ok := err.(*errors.AppError)
				if !ok {
					t.Fatalf("expected *errors.AppError, got %T", err)
				}
				if appErr.Code != errors.ErrCodeAIMalformedOutput {
					t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeAIMalformedOutput)
				}
				return
			}

			if got.Summary == "" {
				t.Error("expected non-empty summary")
			}
			if len(got.Skills) != len(tt.wantSkills) {
				t.Fatalf("skills = %v, want %v", got.Skills, tt.wantSkills)
			}
			for i, skill := range tt.wantSkills {
				if got.Skills[i] != skill {
					t.Errorf("skills[%d] = %q, want %q", i, got.Skills[i], skill)
				}
			}
			if (got.ExperienceYears == nil) != (tt.wantYears == nil) {
				t.Fatalf("experience_years = %v, want %v", got.ExperienceYears, tt.wantYears)
			}
			if got.ExperienceYears != nil {
				if *got.ExperienceYears != *tt.wantYears {
					t.Errorf("experience_years = %v, want %v", *got.ExperienceYears, *tt.wantYears)
				}
				if *got.ExperienceYears < 0 {
					t.Errorf("experience_years must not be negative, got %v", *got.ExperienceYears)
				}
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fence",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "fence with language tag",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "fence on one line",
			input: "```{\"a\":1}```",
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.input); got != tt.want {
				t.Errorf("stripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func ptr(f float64) *float64 {
	return &f
}
