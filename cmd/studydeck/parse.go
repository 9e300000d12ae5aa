package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/modeljson"
)

var parseCompact bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Recover JSON from a model transcript",
	Long: `Run the JSON recovery parser over a model transcript and print the
recovered JSON document.

Reads from the given file, or stdin when no file is given. Useful for
debugging model output offline: fenced blocks, surrounding prose, and
truncated tails are handled the same way the server handles them.

Examples:
  studydeck parse transcript.txt
  pbpaste | studydeck parse
  studydeck parse --compact response.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		recovered, err := modeljson.Decode(string(data))
		if err != nil {
			return fmt.Errorf("recovery failed: %w", err)
		}

		out := cmd.OutOrStdout()
		var buf bytes.Buffer
		if parseCompact {
			err = json.Compact(&buf, recovered)
		} else {
			err = json.Indent(&buf, recovered, "", "  ")
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, buf.String())
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseCompact, "compact", false, "Print compact JSON instead of indented")

	rootCmd.AddCommand(parseCmd)
}
