package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/config"
	"github.com/studydeck/studydeck/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Studydeck server",
	Long: `Start the Studydeck HTTP server.

The server provides:
  - /health and /status      - Health and status checks
  - /api/documents           - Document upload and management
  - /api/generate/{kind}     - Summary, flashcard, and quiz generation
  - /api/studysets           - Generated study set retrieval
  - /api/quota               - Per-user generation budget

Configuration is hot-reloaded: provider changes in the config file take
effect without a restart.

Examples:
  studydeck serve                    # Start on default port 8585
  studydeck serve --port 3000        # Start on custom port
  studydeck serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			DataDir:       homeDir,
			ConfigManager: mgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8585", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
