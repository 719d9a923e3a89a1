package telemetry

import (
	"context"
	"log/slog"
	"matchcast-backend/lib/configutil"
	"os"
	"sync"
)

var setupTestEnvironments = map[string]bool{}
var setupTestLock sync.Mutex

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once
func SetupForTesting(serviceName string) func() {
	setupTestLock.Lock()
	defer setupTestLock.Unlock()

	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		panic(err)
	}

	return func() {
		err = Shutdown(context.Background())
		if err != nil {
			panic(err)
		}
	}
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry. if no such file exists, telemetry
// is set up without any exporters.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	c, err := configutil.ReadRecursively[config]("telemetry.json5")
	if os.IsNotExist(err) {
		slog.Debug("telemetry.json5 not found, telemetry will not be exported")
		return Setup(ctx, serviceName, config{})
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, c)
}
