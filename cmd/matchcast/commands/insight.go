package commands

import (
	"errors"
	"fmt"
	"matchcast-backend/lib/ollama"
	"matchcast-backend/lib/serviceutil"
	"matchcast-backend/services/insight"
	"matchcast-backend/services/matchdata"
	"os"

	"github.com/spf13/cobra"
)

var insightPrompt *bool

func init() {
	insightPrompt = insightCmd.Flags().Bool("prompt", false, "Print the prompt that would be sent instead of generating.")
	rootCmd.AddCommand(insightCmd)
}

var insightCmd = &cobra.Command{
	Use:   "insight <match id> [--prompt]",
	Short: "Prints the prediction for a stored match, generating it the first time.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		matchId := args[0]

		cfg, err := loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		store, err := cfg.OpenStore(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		defer store.Close()

		if *insightPrompt {
			stored, err := store.Get(ctx, matchId)
			if err != nil {
				serviceutil.Fatal("failed to get match", err)
			}
			fmt.Print(insight.BuildPrompt(stored.Record))
			return
		}

		generator := insight.NewOllamaGenerator(ollama.NewClient(cfg.OllamaOptions()))
		service := insight.NewService(store, generator, cfg.InsightOptions())

		text, err := service.Get(ctx, matchId)
		if errors.Is(err, matchdata.ErrMatchNotFound) {
			fmt.Fprintf(os.Stderr, "match %s is not stored, run scrape first\n", matchId)
			os.Exit(1)
		}
		if err != nil {
			serviceutil.Fatal("failed to get insight", err)
		}
		fmt.Println(text)
	},
}
