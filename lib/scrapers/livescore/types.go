package livescore

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MatchSummary is one fixture found on the fixtures page.
type MatchSummary struct {
	MatchID  string `json:"match_id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	// raw "HH:MM" kickoff as published, empty when the page omits it
	StartTime string `json:"start_time"`
}

// MatchResult is one row of a results table. Every field keeps the
// source formatting, only surrounding whitespace is removed.
type MatchResult struct {
	Date      string `json:"date"`
	Home      string `json:"home"`
	Score     string `json:"score"`
	Away      string `json:"away"`
	HalfScore string `json:"half_score"`
}

type TeamRecentMatches struct {
	MatchID  string        `json:"match_id"`
	TeamName string        `json:"team_name"`
	Matches  []MatchResult `json:"matches"`
}

type HeadToHead []MatchResult

// Side selects which team's section of the last-matches feed to read.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Away {
		return "away"
	}
	return "home"
}

func (s Side) sectionSelector() string {
	if s == Away {
		return "div.lm_away"
	}
	return "div.lm_home"
}

// StandingsRow is a single league table row as published, keyed by the
// source's own (short) column names.
type StandingsRow map[string]any

type StandingsTable []StandingsRow

func (r StandingsRow) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int reads a numeric column that may be published as either a number
// or a numeric string, missing or malformed values read as 0.
func (r StandingsRow) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(math.Round(v))
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		return int(math.Round(n))
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(math.Round(n))
	default:
		return 0
	}
}

var teamKeys = []string{"team", "name", "tn", "t"}

// Team is the team name of the row, the feed has used a few different keys for it.
func (r StandingsRow) Team() string {
	for _, k := range teamKeys {
		name := r.String(k)
		if name != "" {
			return name
		}
	}
	return ""
}

func (r StandingsRow) Won() int   { return r.Int("w") }
func (r StandingsRow) Drawn() int { return r.Int("d") }
func (r StandingsRow) Lost() int  { return r.Int("l") }

func (r StandingsRow) Played() int {
	return r.Won() + r.Drawn() + r.Lost()
}

func (r StandingsRow) Points() int {
	if _, ok := r["p"]; ok {
		return r.Int("p")
	}
	if _, ok := r["pts"]; ok {
		return r.Int("pts")
	}
	return r.Won()*3 + r.Drawn()
}

func (r StandingsRow) Position() int {
	if _, ok := r["pos"]; ok {
		return r.Int("pos")
	}
	return r.Int("r")
}
