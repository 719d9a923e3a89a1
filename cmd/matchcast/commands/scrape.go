package commands

import (
	"log/slog"
	"matchcast-backend/lib/restyutil"
	"matchcast-backend/lib/serviceutil"
	"matchcast-backend/lib/telemetry"
	"matchcast-backend/services/matchdata"
	"time"

	"github.com/spf13/cobra"
)

var (
	scrapeDump *bool
	scrapePerf *bool
)

func init() {
	scrapeDump = scrapeCmd.Flags().Bool("dump", false, "Write every http message to dev/.state/resty/livescore.")
	scrapePerf = scrapeCmd.Flags().Bool("perf", false, "Record cpu and memory gauges while scraping.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--dump] [--perf]",
	Short: "Scrapes today's fixtures and replaces the stored matches with them.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		var output restyutil.InstrumentOutput
		if *scrapeDump {
			fsOutput, err := restyutil.NewFilesystemOutput("<dev_state>/resty/livescore")
			if err != nil {
				serviceutil.Fatal("failed to create http dump directory", err)
			}
			output = fsOutput
		}
		if *scrapePerf {
			err = telemetry.InstrumentPerfStats(ctx)
			if err != nil {
				slog.Warn("failed to instrument perf stats", "err", err)
			}
		}

		store, err := cfg.OpenStore(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		defer store.Close()

		service := matchdata.NewService(store, cfg.BatchOptions(output))

		t1 := time.Now()
		stored, err := service.Refresh(ctx)
		if err != nil {
			serviceutil.Fatal("failed to refresh matches", err)
		}
		t2 := time.Now()

		slog.Info("scrape complete", "stored", stored, "seconds", t2.Sub(t1).Seconds())
	},
}
