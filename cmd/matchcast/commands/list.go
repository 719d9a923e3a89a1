package commands

import (
	"matchcast-backend/lib/serviceutil"
	"matchcast-backend/lib/timezone"
	"matchcast-backend/services/matchdata"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

// sortByKickoff orders matches by kickoff time, matches without a
// (parseable) kickoff go last in their stored order.
func sortByKickoff(matches []matchdata.StoredMatch, day time.Time) {
	kickoff := func(m matchdata.StoredMatch) (time.Time, bool) {
		if m.Record.StartTime == "" {
			return time.Time{}, false
		}
		t, err := timezone.ParseKickoff(day, m.Record.StartTime)
		return t, err == nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, aok := kickoff(matches[i])
		b, bok := kickoff(matches[j])
		if aok != bok {
			return aok
		}
		return a.Before(b)
	})
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the stored matches by kickoff time.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		store, err := cfg.OpenStore(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		defer store.Close()

		matches, err := store.List(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list matches", err)
		}
		sortByKickoff(matches, timezone.Now())

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Kickoff", "League", "Home", "Away", "Table rows", "Insight"})
		for _, m := range matches {
			r := m.Record
			hasInsight := "no"
			if r.AIInsight != nil {
				hasInsight = "yes"
			}
			t.AppendRow(table.Row{
				r.MatchID,
				r.StartTime,
				r.LeagueName,
				r.HomeTeam,
				r.AwayTeam,
				len(r.TeamStandings),
				hasInsight,
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(matches)})
		t.Render()
	},
}
