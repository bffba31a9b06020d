package cli

import (
	"context"
	"fmt"

	"cvdigest/internal/ai"
	"cvdigest/internal/common"
	"cvdigest/internal/config"
	"cvdigest/internal/extract"
	"cvdigest/internal/types"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [cv-file]",
	Short: "Summarize a CV document using AI",
	Long: `Extract the text from a CV document and produce a structured summary
using AI. The command takes one argument: the path to the CV file.
Supported formats depend on the configured upload extensions
(PDF, DOCX and plain text by default).`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if processConfig.OutputFormat == "" {
			processConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(processConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runProcess,
}

var processConfig common.CommandConfig

func init() {
	processCmd.Flags().StringVarP(&processConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	processCmd.Flags().StringVar(&processConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = processCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Secrets may carry the provider API key
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	aiService, err := ai.NewService(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	extractor := extract.NewExtractor(cfg.Upload, logger)

	createInput := func(docs []types.UploadedDocument) (types.SummarizeCVInput, error) {
		if len(docs) != 1 {
			return types.SummarizeCVInput{}, fmt.Errorf("expected 1 file path, got %d", len(docs))
		}
		text, err := extractor.Text(docs[0])
		if err != nil {
			return types.SummarizeCVInput{}, err
		}
		return types.SummarizeCVInput{CVText: text}, nil
	}

	logDetails := func(input types.SummarizeCVInput, cfg common.CommandConfig) {
		logger.Info("Starting CV processing",
			"cv_chars", len(input.CVText),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	processOperation := func(ctx context.Context, input types.SummarizeCVInput) (types.CVSummary, *ai.TokenUsage, error) {
		return aiService.Provider.SummarizeCV(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		processConfig,
		args,
		createInput,
		processOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to process CV: %w", err)
	}
	logger.Info("CV processing completed successfully")
	return nil
}
