package main

import (
	"context"
	"log/slog"
	"matchcast-backend/cmd/matchcast/commands"
	"matchcast-backend/lib/serviceutil"
	"matchcast-backend/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	// a missing .env just means secrets come from the environment
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	ctx := serviceutil.SignalContext()
	err = telemetry.SetupFromEnv(ctx, "matchcast")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
