package main

import (
	"fmt"
	"log/slog"
	devenv "matchcast-backend/dev/env"
	"matchcast-backend/lib/sqliteutil"
	"matchcast-backend/services/matchdata/db"
	"os"
	"path/filepath"
)

func CreateMatchDB() error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", "matchcast.db"))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	database, err := sqliteutil.OpenDB(db.Schema, path)
	if err != nil {
		return err
	}
	return database.Close()
}

const defaultConfig = `{
  livescore: {
    base_url: "https://www.livescore.bz",
    feed_timeout: "20s",
  },
  batch: {
    max_concurrency: 0,
    retry_incomplete: 0,
  },
  store: {
    driver: "sqlite",
    file: "<dev_state>/matchcast.db",
  },
  ollama: {
    base_url: "https://ollama.com",
    model: "gpt-oss:120b-cloud",
  },
}
`

func WriteDefaultConfigs() error {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "config.json5")
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("config already exists at", path)
		return nil
	}
	return os.WriteFile(path, []byte(defaultConfig), 0644)
}

func PrintConfigLocations() {
	slog.Info("put secrets (OLLAMA_API_KEY) in a .env file at the repository root, and local overrides in config.local.json5.")
	slog.Info("redis store tests only run when MATCHCAST_TEST_REDIS is set to a redis address.")
}
