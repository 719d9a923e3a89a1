package db

type MatchDatum struct {
	MatchID   string
	Data      string
	CreatedAt int64
}
