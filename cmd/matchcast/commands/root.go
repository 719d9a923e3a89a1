package commands

import (
	"context"
	"fmt"
	"matchcast-backend/lib/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    *bool
	configPath *string
)

var rootCmd = &cobra.Command{
	Use:   "matchcast",
	Short: "matchcast scrapes today's football fixtures and generates match predictions.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read, config.local.json5 next to it overrides it.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
