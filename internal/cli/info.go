package cli

import (
	"time"

	"github.com/spf13/cobra"

	"vidfetch-backend/internal/extractor"
	"vidfetch-backend/internal/services"
)

var (
	ytdlpPath   string
	infoTimeout time.Duration
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Fetch video metadata through yt-dlp and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x := extractor.NewYtDlp(extractor.Options{
			Binary:        ytdlpPath,
			InfoTimeout:   infoTimeout,
			MaxConcurrent: 1,
		})
		info, err := services.NewYouTubeService(x).GetVideoInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), info)
	},
}

func init() {
	infoCmd.Flags().StringVar(&ytdlpPath, "yt-dlp", "yt-dlp", "Path to the yt-dlp binary")
	infoCmd.Flags().DurationVar(&infoTimeout, "timeout", time.Minute, "Metadata fetch timeout")
}
