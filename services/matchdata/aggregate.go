package matchdata

import (
	"context"
	"log/slog"
	"matchcast-backend/lib/scrapers/livescore"
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

// Source is the set of feeds a batch reads from. *livescore.Client
// implements it. Every method degrades to an empty value instead of failing.
type Source interface {
	MatchList(ctx context.Context) []livescore.MatchSummary
	LeagueName(ctx context.Context, matchId string) string
	TeamLastMatches(ctx context.Context, matchId string, side livescore.Side) livescore.TeamRecentMatches
	HeadToHead(ctx context.Context, matchId string) livescore.HeadToHead
	LeagueTable(ctx context.Context, matchId string) map[string]any
}

var _ Source = (*livescore.Client)(nil)

// Aggregate reads all five feeds of a match concurrently and waits for every
// one of them. The record is complete (ok == true) only if standings were
// recovered, otherwise it must be discarded.
func Aggregate(ctx context.Context, src Source, match livescore.MatchSummary) (MatchRecord, bool) {
	ctx, span := tracer.Start(ctx, "Aggregate")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", match.MatchID))

	var (
		league string
		home   livescore.TeamRecentMatches
		away   livescore.TeamRecentMatches
		h2h    livescore.HeadToHead
		table  map[string]any
	)

	wg := sync.WaitGroup{}
	wg.Add(5)
	go func() {
		defer wg.Done()
		league = src.LeagueName(ctx, match.MatchID)
	}()
	go func() {
		defer wg.Done()
		home = src.TeamLastMatches(ctx, match.MatchID, livescore.Home)
	}()
	go func() {
		defer wg.Done()
		away = src.TeamLastMatches(ctx, match.MatchID, livescore.Away)
	}()
	go func() {
		defer wg.Done()
		h2h = src.HeadToHead(ctx, match.MatchID)
	}()
	go func() {
		defer wg.Done()
		table = src.LeagueTable(ctx, match.MatchID)
	}()
	wg.Wait()

	record := MatchRecord{
		MatchID:             match.MatchID,
		LeagueName:          league,
		StartTime:           match.StartTime,
		HomeTeam:            match.HomeTeam,
		AwayTeam:            match.AwayTeam,
		HomeTeamLastMatches: home,
		AwayTeamLastMatches: away,
		TeamHeadToHead:      h2h,
		TeamStandings:       livescore.UnwrapStandings(table),
	}
	if record.TeamHeadToHead == nil {
		record.TeamHeadToHead = livescore.HeadToHead{}
	}
	if record.HomeTeam == "" {
		record.HomeTeam = home.TeamName
	}
	if record.AwayTeam == "" {
		record.AwayTeam = away.TeamName
	}

	complete := record.Complete()
	span.SetAttributes(
		attribute.Bool("complete", complete),
		attribute.Int("standings_rows", len(record.TeamStandings)),
	)
	if !complete {
		slog.DebugContext(ctx, "match has no standings, skipping", "match_id", match.MatchID)
	}
	return record, complete
}
