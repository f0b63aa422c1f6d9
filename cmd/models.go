package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spigell/voice-interviewer/internal/ai/gemini"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the Gemini models usable for the interview",
	Run: func(cmd *cobra.Command, _ []string) {
		listModels(cmd)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func listModels(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil || config == nil || config.Gemini == nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newGeminiClient(ctx, config.Gemini, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err), zap.String("hint", apiKeyHint))
	}

	models, err := gemini.ListTextModels(ctx, client.Models)
	for _, model := range models {
		fmt.Fprintln(cmd.OutOrStdout(), model)
	}
	if err != nil {
		logger.Fatal("listing models", zap.Error(err), zap.Int("listed", len(models)))
	}

	logger.Debug("models listed", zap.Int("count", len(models)))
}
