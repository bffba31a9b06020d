package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptFilePaths returns the configured prompt file paths, empty entries excluded.
// The prompt watcher uses this to know which files to watch.
func (c *Config) PromptFilePaths() []string {
	var paths []string
	if c.AI.CustomPrompts.SystemPromptFile != "" {
		paths = append(paths, c.AI.CustomPrompts.SystemPromptFile)
	}
	if c.AI.CustomPrompts.UserPromptFile != "" {
		paths = append(paths, c.AI.CustomPrompts.UserPromptFile)
	}
	return paths
}

// LoadPromptsFromFiles loads custom prompts from external files if file paths
// are specified. It is also called by the prompt watcher on file change, so it
// must be safe to call repeatedly.
func (c *Config) LoadPromptsFromFiles() error {
	loaded := LoadedPrompts{}

	if c.AI.CustomPrompts.SystemPromptFile != "" {
		content, err := c.loadPromptFromFile(c.AI.CustomPrompts.SystemPromptFile, "system")
		if err != nil {
			return fmt.Errorf("failed to load system prompt: %w", err)
		}
		loaded.SystemPrompt = content
	}

	if c.AI.CustomPrompts.UserPromptFile != "" {
		content, err := c.loadPromptFromFile(c.AI.CustomPrompts.UserPromptFile, "user")
		if err != nil {
			return fmt.Errorf("failed to load user prompt: %w", err)
		}
		loaded.UserPrompt = content
	}

	setLoadedPrompts(loaded)
	c.logPromptLoadingSummary(loaded)

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", promptType, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", promptType, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", promptType, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", promptType, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		promptType, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", promptType, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", promptType, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemPromptFile, "system")
	validateFile(c.AI.CustomPrompts.UserPromptFile, "user")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary(loaded LoadedPrompts) {
	promptCount := 0
	if loaded.SystemPrompt != "" {
		log.Println("[CONFIG] Custom system prompt: loaded from file")
		promptCount++
	}
	if loaded.UserPrompt != "" {
		log.Println("[CONFIG] Custom user prompt: loaded from file")
		promptCount++
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
