package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"matchcast-backend/lib/serviceutil"
	"matchcast-backend/services/matchdata"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <match id>",
	Short: "Prints a stored match as json.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		store, err := cfg.OpenStore(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		defer store.Close()

		stored, err := store.Get(ctx, args[0])
		if errors.Is(err, matchdata.ErrMatchNotFound) {
			fmt.Fprintf(os.Stderr, "match %s is not stored, run scrape first\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			serviceutil.Fatal("failed to get match", err)
		}

		out, err := json.MarshalIndent(stored.Record, "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to encode match", err)
		}
		fmt.Println(string(out))
	},
}
