package livescore

import (
	"context"
	"errors"
	"matchcast-backend/lib/telemetry"
	"matchcast-backend/lib/testutil"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testMatchId = "2306790"

func newTestClient(t testing.TB, srv *testutil.FixtureServer) *Client {
	client, err := NewClient(ClientOptions{
		BaseUrl:     srv.URL,
		FeedTimeout: time.Second * 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("test:lib/scrapers/livescore")
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "not a url"})
	require.Error(t, err)

	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, "www.livescore.bz", client.BaseUrl.Host)
	require.Equal(t, DefaultPaths, client.paths)
	require.Equal(t, DefaultFeedTimeout, client.feedTimeout)
}

func TestFetch(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.Handle("/ok", http.StatusOK, "body")
	srv.Handle("/broken", http.StatusInternalServerError, "oops")
	client := newTestClient(t, srv)
	ctx := context.Background()

	body, err := client.Fetch(ctx, "/ok")
	require.NoError(t, err)
	require.Equal(t, "body", body)

	_, err = client.Fetch(ctx, "/broken")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusInternalServerError, fetchErr.Status)
	require.Equal(t, "/broken", fetchErr.Url)

	_, err = client.Fetch(ctx, "/unregistered")
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestFetchUnreachable(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	client := newTestClient(t, srv)
	srv.Close()

	_, err := client.Fetch(context.Background(), "/ok")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Error(t, fetchErr.Err)
	require.Zero(t, fetchErr.Status)
}

func TestMatchList(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.HandleFile(t, "/en/", "fixtures.html")
	client := newTestClient(t, srv)

	matches := client.MatchList(context.Background())
	diff := cmp.Diff([]MatchSummary{
		{MatchID: "2306790", HomeTeam: "Arsenal", AwayTeam: "Chelsea", StartTime: "16:00"},
		{MatchID: "2306791", HomeTeam: "Manchester United", AwayTeam: "Liverpool", StartTime: "18:30"},
		{MatchID: "2306792", HomeTeam: "Everton", AwayTeam: "Fulham", StartTime: ""},
	}, matches)
	require.Empty(t, diff)
}

func TestMatchListFailure(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	client := newTestClient(t, srv)

	matches := client.MatchList(context.Background())
	require.NotNil(t, matches)
	require.Len(t, matches, 0)
}

func TestLeagueName(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.HandleFile(t, "/en/football/event/2306790/", "event.html")
	srv.Handle("/en/football/event/2306791/", http.StatusOK, "<div>no header</div>")
	client := newTestClient(t, srv)
	ctx := context.Background()

	require.Equal(t, "England: Premier League", client.LeagueName(ctx, "2306790"))
	require.Equal(t, UnknownLeague, client.LeagueName(ctx, "2306791"))
	require.Equal(t, UnknownLeague, client.LeagueName(ctx, "404"))
}

func TestTeamLastMatches(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.HandleFile(t, "/last_matches_2018.cache?id=2306790&filter=overall&team=all&lang=en", "last_matches.html")
	client := newTestClient(t, srv)
	ctx := context.Background()

	home := client.TeamLastMatches(ctx, testMatchId, Home)
	require.Equal(t, testMatchId, home.MatchID)
	require.Equal(t, "Arsenal", home.TeamName)
	// the row with four cells and the unclassified row are skipped
	diff := cmp.Diff([]MatchResult{
		{Date: "24.08.24", Home: "Aston Villa", Score: "0 - 2", Away: "Arsenal", HalfScore: "(0 - 0)"},
		{Date: "17.08.24", Home: "Arsenal", Score: "2 - 0", Away: "Wolves", HalfScore: "(1 - 0)"},
		{Date: "07.08.24", Home: "Bayer Leverkusen", Score: "4 - 1", Away: "Arsenal", HalfScore: "(2 - 1)"},
	}, home.Matches)
	require.Empty(t, diff)

	away := client.TeamLastMatches(ctx, testMatchId, Away)
	require.Equal(t, "Chelsea", away.TeamName)
	require.Len(t, away.Matches, 2)
	require.Equal(t, "Wolves", away.Matches[0].Home)

	missing := client.TeamLastMatches(ctx, "1", Home)
	require.Equal(t, TeamRecentMatches{MatchID: "1", Matches: []MatchResult{}}, missing)
}

func TestTeamLastMatchesMissingSection(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.Handle(
		"/last_matches_2018.cache?id=7&filter=overall&team=all&lang=en",
		http.StatusOK,
		`<div class="lm_home"><table><tr><th class="lm_h1"><span>Solo</span></th></tr></table></div>`,
	)
	client := newTestClient(t, srv)

	away := client.TeamLastMatches(context.Background(), "7", Away)
	require.Equal(t, "", away.TeamName)
	require.Len(t, away.Matches, 0)
}

func TestHeadToHead(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.HandleFile(t, "/h2h_2018.cache?id=2306790&filter=overall&team=all&lang=en", "h2h.html")
	client := newTestClient(t, srv)
	ctx := context.Background()

	h2h := client.HeadToHead(ctx, testMatchId)
	require.Len(t, h2h, 4)
	require.Equal(t, MatchResult{
		Date: "20.04.24", Home: "Arsenal", Score: "5 - 0", Away: "Chelsea", HalfScore: "(1 - 0)",
	}, h2h[0])
	require.Equal(t, "06.11.22", h2h[2].Date)
	// inner spacing is published as is, only the ends are trimmed
	require.Equal(t, MatchResult{
		Date: "15.03.22", Home: "Real  Madrid", Score: "2 -  1", Away: "Arsenal", HalfScore: "(1 -  0)",
	}, h2h[3])

	empty := client.HeadToHead(ctx, "1")
	require.NotNil(t, empty)
	require.Len(t, empty, 0)
}

func TestLeagueTable(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.HandleFile(t, "/standings_2020.cache?lang=en&id=2306790&filter=", "standings.html")
	srv.HandleFile(t, "/standings_2020.cache?lang=en&id=2&filter=", "standings_truncated.html")
	srv.HandleFile(t, "/standings_2020.cache?lang=en&id=3&filter=", "standings_empty.html")
	srv.Handle("/standings_2020.cache?lang=en&id=4&filter=", http.StatusOK, "<p>no standings</p>")
	client := newTestClient(t, srv)
	ctx := context.Background()

	rows := UnwrapStandings(client.LeagueTable(ctx, testMatchId))
	require.Len(t, rows, 3)
	require.Equal(t, "Arsenal", rows[0].Team())
	require.Equal(t, 9, rows[0].Points())
	require.Equal(t, 3, rows[1].Played())
	require.Equal(t, 7, rows[1].Points())
	require.Equal(t, 2, rows[1].Position())

	require.Len(t, UnwrapStandings(client.LeagueTable(ctx, "2")), 2)
	require.Len(t, UnwrapStandings(client.LeagueTable(ctx, "3")), 0)

	table := client.LeagueTable(ctx, "4")
	require.NotNil(t, table)
	require.Len(t, table, 0)

	table = client.LeagueTable(ctx, "5")
	require.NotNil(t, table)
	require.Len(t, table, 0)
}

func TestUnwrapStandings(t *testing.T) {
	cases := []struct {
		name   string
		in     map[string]any
		expect int
	}{
		{name: "nil", in: nil, expect: 0},
		{name: "no overall", in: map[string]any{"home": map[string]any{}}, expect: 0},
		{name: "tables wrong type", in: map[string]any{"overall": map[string]any{"tables": "x"}}, expect: 0},
		{name: "no tables", in: map[string]any{"overall": map[string]any{"tables": []any{}}}, expect: 0},
		{name: "no data", in: map[string]any{"overall": map[string]any{"tables": []any{map[string]any{}}}}, expect: 0},
		{
			name: "non object rows skipped",
			in: map[string]any{"overall": map[string]any{"tables": []any{
				map[string]any{"data": []any{"x", map[string]any{"team": "A"}}},
			}}},
			expect: 1,
		},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			require.Len(t, UnwrapStandings(test.in), test.expect)
		})
	}
}

func TestFeedTimeout(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	client, err := NewClient(ClientOptions{
		BaseUrl:     srv.URL,
		FeedTimeout: time.Millisecond * 50,
	})
	require.NoError(t, err)
	defer client.Close()

	release := make(chan struct{})
	defer close(release)
	srv.HandleFunc("/en/football/event/2306790/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	start := time.Now()
	require.Equal(t, UnknownLeague, client.LeagueName(context.Background(), testMatchId))
	require.Less(t, time.Since(start), time.Second*2)
}

type memoryOutput struct {
	lock     sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.messages[id] = contents
}

func TestDumpHttpMessages(t *testing.T) {
	srv := testutil.NewFixtureServer(t)
	srv.HandleFile(t, "/en/football/event/2306790/", "event.html")

	out := &memoryOutput{messages: map[string]string{}}
	client, err := NewClient(ClientOptions{
		BaseUrl:          srv.URL,
		InstrumentOutput: out,
	})
	require.NoError(t, err)
	defer client.Close()

	// TestMain enables debug logging, messages are only dumped at that level
	ctx := context.Background()
	require.NotEqual(t, UnknownLeague, client.LeagueName(ctx, testMatchId))
	// a failing feed is dumped too and still degrades
	require.Equal(t, UnknownLeague, client.LeagueName(ctx, "1"))

	out.lock.Lock()
	defer out.lock.Unlock()
	require.Len(t, out.messages, 2)
	for _, message := range out.messages {
		require.Contains(t, message, "---- REQUEST ----")
		require.Contains(t, message, "GET ")
	}
}
