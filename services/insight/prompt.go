package insight

import (
	"fmt"
	"matchcast-backend/lib/scrapers/livescore"
	"matchcast-backend/services/matchdata"
	"strings"

	"github.com/antzucaro/matchr"
)

// team names in the standings don't always match the fixture list exactly
// ("Arsenal FC" vs "Arsenal"), rows below this similarity are ignored
const minTeamSimilarity = 0.8

var predictionFormats = []string{
	"Home win",
	"Away win",
	"Home win or draw",
	"Away win or draw",
	"Over or under X goals",
}

const instructions = `Your insights should talk about the following topics in detail:
- Both teams' recent matches
- Both teams' recent forms
- Both teams' head-to-head matches

Rules:
Go straight to the prediction, do NOT start with phrases like "Based on the data" or similar introductions.
Respond in plain text only (no Markdown, no bullet formatting).
Keep the entire response concise and structured like this:

Prediction: [your prediction]
Confidence Score: [score]/100
Insights:`

func BuildPrompt(record matchdata.MatchRecord) string {
	b := &strings.Builder{}
	b.WriteString("You are a football match prediction assistant.\n")
	fmt.Fprintf(
		b, "Use the following data to predict the likely outcome of %s vs %s (%s",
		record.HomeTeam, record.AwayTeam, record.LeagueName,
	)
	if record.StartTime != "" {
		fmt.Fprintf(b, ", kickoff %s", record.StartTime)
	}
	b.WriteString(").\n\n")

	writeResults(b, fmt.Sprintf("Recent matches of %s (home):", record.HomeTeam), record.HomeTeamLastMatches.Matches)
	writeResults(b, fmt.Sprintf("Recent matches of %s (away):", record.AwayTeam), record.AwayTeamLastMatches.Matches)
	writeResults(b, "Head-to-head matches:", record.TeamHeadToHead)
	writeStandings(b, record)

	b.WriteString("Your prediction should be one of the following formats:\n\n")
	for _, format := range predictionFormats {
		b.WriteString(format)
		b.WriteString("\n")
	}
	b.WriteString("\nScore your prediction out of 100.\n\n")
	b.WriteString("Share insights explaining the reasoning.\n\n")
	b.WriteString(instructions)
	b.WriteString("\n")
	return b.String()
}

func writeResults(b *strings.Builder, title string, results []livescore.MatchResult) {
	b.WriteString(title)
	b.WriteString("\n")
	if len(results) == 0 {
		b.WriteString("  (none)\n\n")
		return
	}
	for _, r := range results {
		fmt.Fprintf(b, "  %s %s %s %s", r.Date, r.Home, r.Score, r.Away)
		if r.HalfScore != "" {
			fmt.Fprintf(b, " %s", r.HalfScore)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeStandings(b *strings.Builder, record matchdata.MatchRecord) {
	b.WriteString("League standings:\n")
	for _, team := range []string{record.HomeTeam, record.AwayTeam} {
		row, ok := FindTeamRow(record.TeamStandings, team)
		if !ok {
			fmt.Fprintf(b, "  %s: not found in the table\n", team)
			continue
		}
		fmt.Fprintf(
			b, "  %d. %s: played %d, won %d, drawn %d, lost %d, %d points\n",
			row.Position(), row.Team(), row.Played(), row.Won(), row.Drawn(), row.Lost(), row.Points(),
		)
	}
	fmt.Fprintf(b, "  (%d teams in the table)\n\n", len(record.TeamStandings))
}

// FindTeamRow returns the standings row whose team name is most similar to
// `team`, if any is similar enough.
func FindTeamRow(table livescore.StandingsTable, team string) (livescore.StandingsRow, bool) {
	if team == "" {
		return nil, false
	}

	var best livescore.StandingsRow
	var bestSimilarity float64
	for _, row := range table {
		name := row.Team()
		if name == "" {
			continue
		}
		if strings.EqualFold(name, team) {
			return row, true
		}
		similarity := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(team), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = row
		}
	}
	if bestSimilarity < minTeamSimilarity {
		return nil, false
	}
	return best, true
}
