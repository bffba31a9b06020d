package types

// SummarizeCVInput represents the input for summarizing a CV
type SummarizeCVInput struct {
	CVText string `json:"cvText"`
}

// CVSummary represents the structured summary produced from a CV.
// ExperienceYears is nil when the model did not return a usable value.
type CVSummary struct {
	Summary         string   `json:"summary"`
	Skills          []string `json:"skills"`
	ExperienceYears *float64 `json:"experience_years"`
}

// UploadedDocument represents a document received for processing
type UploadedDocument struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Data     []byte `json:"-"`
}
