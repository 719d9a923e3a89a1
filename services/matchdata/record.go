package matchdata

import (
	"matchcast-backend/lib/scrapers/livescore"
	"time"
)

// MatchRecord is everything collected about one fixture in a batch. Only
// records with standings are ever built, see Aggregate.
type MatchRecord struct {
	MatchID             string                      `json:"match_id"`
	LeagueName          string                      `json:"league_name"`
	StartTime           string                      `json:"start_time"`
	HomeTeam            string                      `json:"home_team"`
	AwayTeam            string                      `json:"away_team"`
	HomeTeamLastMatches livescore.TeamRecentMatches `json:"home_team_last_matches"`
	AwayTeamLastMatches livescore.TeamRecentMatches `json:"away_team_last_matches"`
	TeamHeadToHead      livescore.HeadToHead        `json:"team_head_to_head"`
	TeamStandings       livescore.StandingsTable    `json:"team_standings"`
	// nil until an insight is requested for the match
	AIInsight *string `json:"ai_insight"`
}

func (r MatchRecord) Complete() bool {
	return len(r.TeamStandings) > 0
}

type StoredMatch struct {
	Record    MatchRecord
	CreatedAt time.Time
}
