package matchdata

import (
	"context"
	"errors"
)

var ErrMatchNotFound = errors.New("match not found")

// Store persists the latest batch. ReplaceAll swaps out everything previously
// stored, UpsertInsight is the only mutation of a stored record.
type Store interface {
	ReplaceAll(ctx context.Context, records []MatchRecord) error
	UpsertInsight(ctx context.Context, matchId, insight string) error
	Get(ctx context.Context, matchId string) (StoredMatch, error)
	List(ctx context.Context) ([]StoredMatch, error)
	Close() error
}
