package livescore

import (
	"context"
	"log/slog"
	"matchcast-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	lastMatchRowSelector  = "tr.sm_m.sm_sncL, tr.sm_m.sm_sncW, tr.sm_m.sm_sncD"
	headToHeadRowSelector = "tr.sm_m"
)

// parseResultRows reads the first five cells of every row by position,
// rows with fewer cells are skipped. Cells keep the source formatting.
func parseResultRows(rows *goquery.Selection) []MatchResult {
	results := []MatchResult{}
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 5 {
			return
		}
		cell := func(i int) string {
			return htmlutil.RawText(cells.Eq(i))
		}
		results = append(results, MatchResult{
			Date:      cell(0),
			Home:      cell(1),
			Score:     cell(2),
			Away:      cell(3),
			HalfScore: cell(4),
		})
	})
	return results
}

func parseTeamLastMatches(doc *goquery.Document, matchId string, side Side) TeamRecentMatches {
	out := TeamRecentMatches{MatchID: matchId, Matches: []MatchResult{}}

	section := doc.Find(side.sectionSelector()).First()
	if section.Length() == 0 {
		return out
	}
	out.TeamName = htmlutil.Text(section.Find("th.lm_h1 span").First())
	out.Matches = parseResultRows(section.Find(lastMatchRowSelector))
	return out
}

// TeamLastMatches reads one side's recent results from the last-matches feed.
// On failure the result carries only the match id.
func (c *Client) TeamLastMatches(ctx context.Context, matchId string, side Side) TeamRecentMatches {
	ctx, span := tracer.Start(ctx, "TeamLastMatches")
	defer span.End()
	span.SetAttributes(
		attribute.String("match_id", matchId),
		attribute.String("side", side.String()),
	)

	doc, err := c.fetchDocument(ctx, c.endpoint(c.paths.LastMatches, matchId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch last matches")
		slog.WarnContext(ctx, "failed to fetch last matches", "match_id", matchId, "side", side.String(), "err", err)
		return TeamRecentMatches{MatchID: matchId, Matches: []MatchResult{}}
	}

	out := parseTeamLastMatches(doc, matchId, side)
	span.SetAttributes(attribute.Int("matches", len(out.Matches)))
	if len(out.Matches) == 0 {
		slog.DebugContext(ctx, "no last matches found", "match_id", matchId, "side", side.String())
	}
	return out
}

// HeadToHead reads previous meetings of the two teams, in source order.
func (c *Client) HeadToHead(ctx context.Context, matchId string) HeadToHead {
	ctx, span := tracer.Start(ctx, "HeadToHead")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	doc, err := c.fetchDocument(ctx, c.endpoint(c.paths.HeadToHead, matchId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch head to head")
		slog.WarnContext(ctx, "failed to fetch head to head", "match_id", matchId, "err", err)
		return HeadToHead{}
	}

	rows := parseResultRows(doc.Find(headToHeadRowSelector))
	span.SetAttributes(attribute.Int("matches", len(rows)))
	return HeadToHead(rows)
}
