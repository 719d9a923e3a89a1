package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"matchcast-backend/lib/configutil"
	"matchcast-backend/lib/ollama"
	"matchcast-backend/lib/restyutil"
	"matchcast-backend/lib/scrapers/livescore"
	"matchcast-backend/lib/sqliteutil"
	"matchcast-backend/services/insight"
	"matchcast-backend/services/matchdata"
	"matchcast-backend/services/matchdata/db"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

type LivescoreConfig struct {
	BaseUrl           string              `json:"base_url"`
	UserAgent         string              `json:"user_agent"`
	FeedTimeout       configutil.Duration `json:"feed_timeout"`
	RequestsPerSecond float64             `json:"requests_per_second"`
	Paths             livescore.Paths     `json:"paths"`
}

type BatchConfig struct {
	MaxConcurrency  int `json:"max_concurrency"`
	RetryIncomplete int `json:"retry_incomplete"`
}

type StoreConfig struct {
	// "sqlite" (default), "libsql" or "redis"
	Driver    string                 `json:"driver"`
	File      string                 `json:"file"`
	Url       string                 `json:"url"`
	AuthToken string                 `json:"auth_token"`
	Redis     matchdata.RedisOptions `json:"redis"`
}

type OllamaConfig struct {
	BaseUrl string `json:"base_url"`
	Model   string `json:"model"`
	// OLLAMA_API_KEY takes precedence
	ApiKey  string              `json:"api_key"`
	Timeout configutil.Duration `json:"timeout"`
}

type InsightConfig struct {
	CacheSize int                 `json:"cache_size"`
	CacheTTL  configutil.Duration `json:"cache_ttl"`
}

type Config struct {
	Livescore LivescoreConfig `json:"livescore"`
	Batch     BatchConfig     `json:"batch"`
	Store     StoreConfig     `json:"store"`
	Ollama    OllamaConfig    `json:"ollama"`
	Insight   InsightConfig   `json:"insight"`
}

const defaultDbFile = "<dev_state>/matchcast.db"

// loadConfig reads the config file, running without one uses the defaults.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config not found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}
	if cfg.Store.File == "" {
		cfg.Store.File = defaultDbFile
	}
	return cfg, nil
}

func (c Config) BatchOptions(output restyutil.InstrumentOutput) matchdata.BatchOptions {
	return matchdata.BatchOptions{
		Client: livescore.ClientOptions{
			BaseUrl:           c.Livescore.BaseUrl,
			UserAgent:         c.Livescore.UserAgent,
			FeedTimeout:       c.Livescore.FeedTimeout.Std(),
			RequestsPerSecond: c.Livescore.RequestsPerSecond,
			Paths:             c.Livescore.Paths,
			InstrumentOutput:  output,
		},
		MaxConcurrency:  c.Batch.MaxConcurrency,
		RetryIncomplete: c.Batch.RetryIncomplete,
	}
}

func (c Config) OllamaOptions() ollama.Options {
	apiKey := os.Getenv("OLLAMA_API_KEY")
	if apiKey == "" {
		apiKey = c.Ollama.ApiKey
	}
	return ollama.Options{
		BaseUrl: c.Ollama.BaseUrl,
		Model:   c.Ollama.Model,
		ApiKey:  apiKey,
		Timeout: c.Ollama.Timeout.Std(),
	}
}

func (c Config) InsightOptions() insight.Options {
	return insight.Options{
		CacheSize: c.Insight.CacheSize,
		CacheTTL:  c.Insight.CacheTTL.Std(),
	}
}

func (c Config) OpenStore(ctx context.Context) (matchdata.Store, error) {
	switch c.Store.Driver {
	case "", "sqlite", "libsql":
		database, err := sqliteutil.Config{
			Driver:    c.Store.Driver,
			File:      c.Store.File,
			Url:       c.Store.Url,
			AuthToken: c.Store.AuthToken,
		}.OpenDB(db.Schema)
		if err != nil {
			return nil, err
		}
		return matchdata.NewSQLStore(database), nil
	case "redis":
		return matchdata.NewRedisStore(ctx, c.Store.Redis)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
