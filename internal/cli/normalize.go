package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vidfetch-backend/internal/extractor"
	"vidfetch-backend/internal/services"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <info.json>",
	Short: "Print the normalized format list for a saved yt-dlp dump",
	Long:  "Reads yt-dlp --dump-single-json output from a file (or - for stdin) and prints the formats the API would offer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open dump: %w", err)
			}
			defer f.Close()
			r = f
		}

		var info extractor.RawInfo
		if err := json.NewDecoder(r).Decode(&info); err != nil {
			return fmt.Errorf("decode dump: %w", err)
		}

		return printJSON(cmd.OutOrStdout(), services.NormalizeFormats(info.Formats))
	},
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
