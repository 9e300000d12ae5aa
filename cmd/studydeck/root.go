package main

import (
	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "studydeck",
	Short: "Turn documents into study aids with LLM-generated summaries, flashcards, and quizzes",
	Long: `Studydeck ingests PDF and Markdown documents and uses LLMs to generate
study material from them.

It provides:
  - Document upload with PDF text extraction and cleanup
  - Summaries, flashcard decks, and multiple-choice quizzes
  - Robust recovery of malformed JSON in model output
  - Per-user generation quotas (in-memory or Redis backed)`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.studydeck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "studydeck home directory (default: ~/.studydeck)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml, or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
