package main

import (
	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/server/endpoints"
	"github.com/studydeck/studydeck/internal/studyset"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Studydeck server via HTTP.

These commands require a running server (studydeck serve).
Use --server to specify a custom server URL.

Examples:
  studydeck api health                       # Check server health
  studydeck api documents upload notes.pdf   # Upload a document
  studydeck api generate quiz <document-id>  # Generate a quiz
  studydeck api studysets list               # List generated study sets`,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Document management commands",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Study aid generation commands",
}

var studysetsCmd = &cobra.Command{
	Use:   "studysets",
	Short: "Study set retrieval commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8585", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.QuotaEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	// Documents as subcommand group
	documentsCmd.AddCommand((&endpoints.UploadDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.ListDocumentsEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.GetDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.DeleteDocumentEndpoint{}).Command(getServerURL))

	// Generation as subcommand group
	generateCmd.AddCommand((&endpoints.GenerateEndpoint{Kind: studyset.KindSummary}).Command(getServerURL))
	generateCmd.AddCommand((&endpoints.GenerateEndpoint{Kind: studyset.KindFlashcards}).Command(getServerURL))
	generateCmd.AddCommand((&endpoints.GenerateEndpoint{Kind: studyset.KindQuiz}).Command(getServerURL))

	// Study sets as subcommand group
	studysetsCmd.AddCommand((&endpoints.ListStudySetsEndpoint{}).Command(getServerURL))
	studysetsCmd.AddCommand((&endpoints.GetStudySetEndpoint{}).Command(getServerURL))
	studysetsCmd.AddCommand((&endpoints.DeleteStudySetEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(documentsCmd)
	apiCmd.AddCommand(generateCmd)
	apiCmd.AddCommand(studysetsCmd)
	rootCmd.AddCommand(apiCmd)
}
