package ai

import (
	"fmt"

	"cvdigest/internal/config"
)

// DefaultSystemPrompt provides the default system instruction for CV summarization
const DefaultSystemPrompt = `You are an expert CV analyst with a strict commitment to honesty and accuracy. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the source CV
- Respond with a single JSON object and nothing else

Your expertise includes:
- CV and resume analysis
- Technical and professional skill identification
- Career history assessment`

// DefaultUserPrompt is the default user prompt template. The single
// placeholder receives the extracted CV text.
const DefaultUserPrompt = `Analyze the following CV text and produce a structured summary.

Respond with a JSON object containing exactly these fields:
- "summary": a concise professional summary of the candidate (2-4 sentences)
- "skills": an array of the candidate's key skills as strings
- "experience_years": the candidate's total years of professional experience as a number, or null if it cannot be determined

**CV Text:**
-----
%s
-----`

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

// buildPrompts resolves the system and user prompts and formats the user
// prompt with the CV text, capped at maxPromptChars characters.
func buildPrompts(cfg *config.Config, cvText string, maxPromptChars int) (systemPrompt, userPrompt string) {
	loaded := cfg.GetLoadedPrompts()

	systemPrompt = resolvePrompt(
		loaded.SystemPrompt,
		cfg.AI.CustomPrompts.SystemPrompt,
		DefaultSystemPrompt,
	)
	userTemplate := resolvePrompt(
		loaded.UserPrompt,
		cfg.AI.CustomPrompts.UserPrompt,
		DefaultUserPrompt,
	)

	if maxPromptChars > 0 && len(cvText) > maxPromptChars {
		cvText = cvText[:maxPromptChars]
	}

	userPrompt = fmt.Sprintf(userTemplate, cvText)
	return systemPrompt, userPrompt
}
