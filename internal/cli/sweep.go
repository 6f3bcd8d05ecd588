package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidfetch-backend/internal/services"
)

var (
	sweepDir string
	sweepTTL time.Duration
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete files older than the retention TTL once",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := services.NewRetentionSweeper(sweepDir, sweepTTL, services.DefaultRetentionInterval)
		removed := s.Sweep(time.Now())
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %d file(s) from %s\n", removed, sweepDir)
		return err
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDir, "dir", "./uploads", "Uploads directory")
	sweepCmd.Flags().DurationVar(&sweepTTL, "ttl", services.DefaultRetentionTTL, "Maximum file age")
}
