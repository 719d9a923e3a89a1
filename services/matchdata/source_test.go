package matchdata

import (
	"context"
	"matchcast-backend/lib/scrapers/livescore"
	"sync"
	"sync/atomic"
	"time"
)

func standingsFor(teams ...string) map[string]any {
	data := make([]any, len(teams))
	for i, team := range teams {
		data[i] = map[string]any{
			"pos":  float64(i + 1),
			"team": team,
		}
	}
	return map[string]any{
		"overall": map[string]any{
			"tables": []any{
				map[string]any{"data": data},
			},
		},
	}
}

// fakeSource serves canned feeds. Standings for a match can be scripted per
// call so that retries can be observed.
type fakeSource struct {
	matches []livescore.MatchSummary
	// successive LeagueTable results per match id, the last one repeats
	tables map[string][]map[string]any
	delay  time.Duration
	// when set, MatchList closes started and then waits for gate to be closed
	started chan struct{}
	gate    chan struct{}

	lock        sync.Mutex
	tableCalls  map[string]int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSource) MatchList(ctx context.Context) []livescore.MatchSummary {
	if f.gate != nil {
		close(f.started)
		<-f.gate
	}
	return f.matches
}

func (f *fakeSource) LeagueName(ctx context.Context, matchId string) string {
	return "League " + matchId
}

func (f *fakeSource) TeamLastMatches(ctx context.Context, matchId string, side livescore.Side) livescore.TeamRecentMatches {
	return livescore.TeamRecentMatches{
		MatchID:  matchId,
		TeamName: side.String() + " " + matchId,
		Matches: []livescore.MatchResult{
			{Date: "01.01.", Home: "A", Score: "1 - 0", Away: "B", HalfScore: "(0 - 0)"},
		},
	}
}

func (f *fakeSource) HeadToHead(ctx context.Context, matchId string) livescore.HeadToHead {
	return livescore.HeadToHead{}
}

func (f *fakeSource) LeagueTable(ctx context.Context, matchId string) map[string]any {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if f.tableCalls == nil {
		f.tableCalls = map[string]int{}
	}
	call := f.tableCalls[matchId]
	f.tableCalls[matchId]++

	tables := f.tables[matchId]
	if len(tables) == 0 {
		return map[string]any{}
	}
	if call >= len(tables) {
		return tables[len(tables)-1]
	}
	return tables[call]
}

func (f *fakeSource) calls(matchId string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.tableCalls[matchId]
}
