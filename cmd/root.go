package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agreement-radar",
	Short: "Agreement ingestion and renewal key-date service",
	Long: `Uploads purchase agreements, extracts renewal terms with a language model
and derives the key dates (term end, renewal, notice deadline) that drive reminders.

Configuration is read from app.env and the environment (see config.Load).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(ingestCmd)
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
