package matchdata

import (
	"context"
	"fmt"
	"matchcast-backend/lib/scrapers/livescore"
	"matchcast-backend/lib/telemetry"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("test:services/matchdata")
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func TestAggregate(t *testing.T) {
	src := &fakeSource{
		tables: map[string][]map[string]any{
			"1": {standingsFor("Home FC", "Away FC")},
		},
	}
	ctx := context.Background()

	record, ok := Aggregate(ctx, src, livescore.MatchSummary{
		MatchID:   "1",
		HomeTeam:  "Home FC",
		AwayTeam:  "Away FC",
		StartTime: "16:00",
	})
	require.True(t, ok)
	require.Equal(t, "1", record.MatchID)
	require.Equal(t, "League 1", record.LeagueName)
	require.Equal(t, "16:00", record.StartTime)
	require.Equal(t, "home 1", record.HomeTeamLastMatches.TeamName)
	require.Equal(t, "away 1", record.AwayTeamLastMatches.TeamName)
	require.NotNil(t, record.TeamHeadToHead)
	require.Len(t, record.TeamStandings, 2)
	require.Equal(t, "Away FC", record.TeamStandings[1].Team())
	require.Nil(t, record.AIInsight)

	// no standings, every other feed is fine
	_, ok = Aggregate(ctx, src, livescore.MatchSummary{MatchID: "2"})
	require.False(t, ok)

	src.tables["3"] = []map[string]any{{
		"overall": map[string]any{"tables": []any{}},
	}}
	_, ok = Aggregate(ctx, src, livescore.MatchSummary{MatchID: "3"})
	require.False(t, ok)
}

func TestAggregateFallsBackToFeedTeamNames(t *testing.T) {
	src := &fakeSource{
		tables: map[string][]map[string]any{"1": {standingsFor("x")}},
	}
	record, ok := Aggregate(context.Background(), src, livescore.MatchSummary{MatchID: "1"})
	require.True(t, ok)
	require.Equal(t, "home 1", record.HomeTeam)
	require.Equal(t, "away 1", record.AwayTeam)
}

func TestBatchRun(t *testing.T) {
	src := &fakeSource{
		matches: []livescore.MatchSummary{
			{MatchID: "1"}, {MatchID: "2"}, {MatchID: "3"}, {MatchID: "4"},
		},
		tables: map[string][]map[string]any{
			"1": {standingsFor("a", "b")},
			"3": {standingsFor("c", "d")},
			"4": {standingsFor("e", "f")},
		},
	}

	result := Batch{Source: src}.Run(context.Background())
	require.Equal(t, 4, result.Discovered)
	require.Equal(t, 1, result.Incomplete)
	require.Len(t, result.Records, 3)

	// discovery order is kept
	ids := []string{}
	for _, r := range result.Records {
		ids = append(ids, r.MatchID)
	}
	require.Equal(t, []string{"1", "3", "4"}, ids)
	require.Equal(t, 1, src.calls("2"))
}

func TestBatchRunEmpty(t *testing.T) {
	src := &fakeSource{}
	result := Batch{Source: src}.Run(context.Background())
	require.Equal(t, 0, result.Discovered)
	require.Empty(t, result.Records)
	require.NotNil(t, result.Records)
	// nothing was aggregated
	require.Empty(t, src.tableCalls)
}

func TestBatchRetryIncomplete(t *testing.T) {
	src := &fakeSource{
		matches: []livescore.MatchSummary{{MatchID: "1"}, {MatchID: "2"}},
		tables: map[string][]map[string]any{
			"1": {standingsFor("a")},
			// standings show up on the second attempt
			"2": {{}, standingsFor("b")},
		},
	}

	result := Batch{Source: src}.Run(context.Background())
	require.Len(t, result.Records, 1)
	require.Equal(t, 1, result.Incomplete)

	src.tableCalls = nil
	result = Batch{Source: src, RetryIncomplete: 2}.Run(context.Background())
	require.Len(t, result.Records, 2)
	require.Equal(t, 0, result.Incomplete)
	require.Equal(t, "1", result.Records[0].MatchID)
	require.Equal(t, "2", result.Records[1].MatchID)
	// complete matches are not aggregated again and retries stop once done
	require.Equal(t, 1, src.calls("1"))
	require.Equal(t, 2, src.calls("2"))
}

func TestBatchMaxConcurrency(t *testing.T) {
	var matches []livescore.MatchSummary
	tables := map[string][]map[string]any{}
	for i := 0; i < 12; i++ {
		id := fmt.Sprint(i)
		matches = append(matches, livescore.MatchSummary{MatchID: id})
		tables[id] = []map[string]any{standingsFor("a")}
	}

	limited := &fakeSource{matches: matches, tables: tables, delay: 20 * time.Millisecond}
	result := Batch{Source: limited, MaxConcurrency: 3}.Run(context.Background())
	require.Len(t, result.Records, 12)
	require.LessOrEqual(t, limited.maxInFlight.Load(), int32(3))

	unlimited := &fakeSource{matches: matches, tables: tables, delay: 20 * time.Millisecond}
	result = Batch{Source: unlimited}.Run(context.Background())
	require.Len(t, result.Records, 12)
	require.Greater(t, unlimited.maxInFlight.Load(), int32(3))
}
