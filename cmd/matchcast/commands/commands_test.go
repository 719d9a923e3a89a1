package commands

import (
	"context"
	"matchcast-backend/lib/scrapers/livescore"
	"matchcast-backend/lib/timezone"
	"matchcast-backend/services/matchdata"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	err := os.WriteFile(path, []byte(`{
		// comments and trailing commas are fine
		livescore: {
			base_url: "http://localhost:8080",
			feed_timeout: "5s",
			paths: { fixtures: "/fixtures/" },
		},
		batch: { max_concurrency: 4 },
		store: { driver: "sqlite", file: "a.db" },
		insight: { cache_ttl: 60 },
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		batch: { retry_incomplete: 2 },
		store: { file: "b.db" },
	}`), 0644)
	require.NoError(t, err)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "b.db", cfg.Store.File)
	require.Equal(t, "sqlite", cfg.Store.Driver)

	opts := cfg.BatchOptions(nil)
	require.Equal(t, "http://localhost:8080", opts.Client.BaseUrl)
	require.Equal(t, 5*time.Second, opts.Client.FeedTimeout)
	require.Equal(t, "/fixtures/", opts.Client.Paths.Fixtures)
	require.Equal(t, 4, opts.MaxConcurrency)
	require.Equal(t, 2, opts.RetryIncomplete)
	require.Equal(t, time.Minute, cfg.InsightOptions().CacheTTL)
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, defaultDbFile, cfg.Store.File)
	require.Equal(t, 0, cfg.BatchOptions(nil).MaxConcurrency)
}

func TestOllamaOptionsPreferEnv(t *testing.T) {
	cfg := Config{Ollama: OllamaConfig{ApiKey: "from-config"}}
	t.Setenv("OLLAMA_API_KEY", "")
	require.Equal(t, "from-config", cfg.OllamaOptions().ApiKey)
	t.Setenv("OLLAMA_API_KEY", "from-env")
	require.Equal(t, "from-env", cfg.OllamaOptions().ApiKey)
}

func TestOpenStore(t *testing.T) {
	cfg := Config{Store: StoreConfig{File: filepath.Join(t.TempDir(), "matchcast.db")}}
	store, err := cfg.OpenStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	err = store.ReplaceAll(context.Background(), []matchdata.MatchRecord{{
		MatchID:       "1",
		TeamStandings: livescore.StandingsTable{{"team": "a"}},
	}})
	require.NoError(t, err)

	_, err = Config{Store: StoreConfig{Driver: "mongo"}}.OpenStore(context.Background())
	require.Error(t, err)
}

func TestSortByKickoff(t *testing.T) {
	match := func(id, start string) matchdata.StoredMatch {
		return matchdata.StoredMatch{Record: matchdata.MatchRecord{MatchID: id, StartTime: start}}
	}
	matches := []matchdata.StoredMatch{
		match("late", "21:00"),
		match("unknown", ""),
		match("early", "09:30"),
		match("garbage", "TBD"),
		match("noon", "12:00"),
	}

	sortByKickoff(matches, timezone.Now())

	ids := []string{}
	for _, m := range matches {
		ids = append(ids, m.Record.MatchID)
	}
	require.Equal(t, []string{"early", "noon", "late", "unknown", "garbage"}, ids)
}
