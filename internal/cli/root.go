// Package cli implements vidctl, the operator command line for the vidfetch backend.
package cli

import (
	"github.com/spf13/cobra"

	xlog "vidfetch-backend/internal/log"
)

var (
	// Global flags
	verbose bool
)

// rootCmd is the base command for vidctl.
var rootCmd = &cobra.Command{
	Use:   "vidctl",
	Short: "Operator tools for the vidfetch backend",
	Long: `vidctl runs the backend's building blocks by hand:

  normalize  shape a saved yt-dlp --dump-single-json file into the format list
  info       fetch and normalize metadata for a video URL
  sweep      delete expired files from the uploads directory`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		xlog.Configure(xlog.Config{Level: level, Output: cmd.ErrOrStderr(), Service: "vidctl", Pretty: true})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(sweepCmd)
}
