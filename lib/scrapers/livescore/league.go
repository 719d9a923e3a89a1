package livescore

import (
	"context"
	"log/slog"
	"matchcast-backend/lib/htmlutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const UnknownLeague = "Unknown League"

// LeagueName reads the league header of a match's event page, falling back
// to UnknownLeague on any failure.
func (c *Client) LeagueName(ctx context.Context, matchId string) string {
	ctx, span := tracer.Start(ctx, "LeagueName")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	doc, err := c.fetchDocument(ctx, c.endpoint(c.paths.Event, matchId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event page")
		slog.WarnContext(ctx, "failed to fetch event page", "match_id", matchId, "err", err)
		return UnknownLeague
	}

	name := htmlutil.Text(doc.Find("div.detayHeader.aic").First())
	if name == "" {
		slog.DebugContext(ctx, "league header not found", "match_id", matchId)
		return UnknownLeague
	}
	return name
}
