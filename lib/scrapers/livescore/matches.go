package livescore

import (
	"context"
	"log/slog"
	"matchcast-backend/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const matchAnchorSelector = "a.m.meven, a.m.modd"

func parseMatchList(doc *goquery.Document) []MatchSummary {
	matches := []MatchSummary{}
	seen := map[string]bool{}

	doc.Find(matchAnchorSelector).Each(func(_ int, a *goquery.Selection) {
		id := strings.TrimSpace(a.AttrOr("mid", ""))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		matches = append(matches, MatchSummary{
			MatchID:   id,
			HomeTeam:  htmlutil.Text(a.Find("t1").First()),
			AwayTeam:  htmlutil.Text(a.Find("t2").First()),
			StartTime: strings.TrimSpace(a.AttrOr("start-time", "")),
		})
	})

	return matches
}

// MatchList discovers today's fixtures. It returns an empty slice when the
// fixtures page cannot be fetched or parsed.
func (c *Client) MatchList(ctx context.Context) []MatchSummary {
	ctx, span := tracer.Start(ctx, "MatchList")
	defer span.End()

	doc, err := c.fetchDocument(ctx, c.paths.Fixtures)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch fixtures")
		slog.WarnContext(ctx, "failed to fetch fixtures", "err", err)
		return []MatchSummary{}
	}

	matches := parseMatchList(doc)
	span.SetAttributes(attribute.Int("matches", len(matches)))
	slog.DebugContext(ctx, "discovered matches", "count", len(matches))
	return matches
}
