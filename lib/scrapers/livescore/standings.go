package livescore

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const standingsMarker = "var stdata"

// LeagueTable returns the raw standings object embedded in the standings
// feed, or an empty map when it cannot be fetched or recovered.
func (c *Client) LeagueTable(ctx context.Context, matchId string) map[string]any {
	ctx, span := tracer.Start(ctx, "LeagueTable")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	body, err := c.Fetch(ctx, c.endpoint(c.paths.Standings, matchId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch standings")
		slog.WarnContext(ctx, "failed to fetch standings", "match_id", matchId, "err", err)
		return map[string]any{}
	}

	table := ExtractLenient(body, standingsMarker)
	if len(table) == 0 {
		span.SetStatus(codes.Error, "failed to extract standings")
		slog.DebugContext(ctx, "no standings data found", "match_id", matchId)
	}
	return table
}

// UnwrapStandings returns the rows at overall.tables[0].data, nil when any
// level is missing or of the wrong type.
func UnwrapStandings(table map[string]any) StandingsTable {
	overall, ok := table["overall"].(map[string]any)
	if !ok {
		return nil
	}
	tables, ok := overall["tables"].([]any)
	if !ok || len(tables) == 0 {
		return nil
	}
	first, ok := tables[0].(map[string]any)
	if !ok {
		return nil
	}
	data, ok := first["data"].([]any)
	if !ok || len(data) == 0 {
		return nil
	}

	rows := make(StandingsTable, 0, len(data))
	for _, item := range data {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, StandingsRow(row))
	}
	if len(rows) == 0 {
		return nil
	}
	return rows
}
