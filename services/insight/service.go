package insight

import (
	"context"
	"fmt"
	"log/slog"
	"matchcast-backend/services/matchdata"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

// Generator writes the insight text for a single match.
type Generator interface {
	GenerateInsight(ctx context.Context, record matchdata.MatchRecord) (string, error)
}

type Options struct {
	// defaults to 256
	CacheSize int
	// defaults to 6 hours
	CacheTTL time.Duration
}

type Service struct {
	store     matchdata.Store
	generator Generator
	// insights that were generated but could not be persisted, keyed by match
	unsaved   *expirable.LRU[string, unsavedInsight]
	inflight  *singleflight.Group
}

type unsavedInsight struct {
	insight string
	// creation time of the record the insight was generated for
	createdAt time.Time
}

func NewService(store matchdata.Store, generator Generator, opts Options) Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour * 6
	}
	return Service{
		store:     store,
		generator: generator,
		unsaved:   expirable.NewLRU[string, unsavedInsight](opts.CacheSize, nil, opts.CacheTTL),
		inflight:  &singleflight.Group{},
	}
}

// Get returns the insight of a stored match, generating and persisting it
// on first request. Concurrent first requests share one generation, which
// keeps running if the caller that started it goes away.
func (s Service) Get(ctx context.Context, matchId string) (string, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	shareCtx := context.WithoutCancel(ctx)
	result, err, shared := s.inflight.Do(matchId, func() (any, error) {
		return s.load(shareCtx, matchId)
	})
	span.SetAttributes(attribute.Bool("shared", shared))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return result.(string), nil
}

func (s Service) load(ctx context.Context, matchId string) (string, error) {
	stored, err := s.store.Get(ctx, matchId)
	if err != nil {
		s.unsaved.Remove(matchId)
		return "", fmt.Errorf("get match %s: %w", matchId, err)
	}

	if stored.Record.AIInsight != nil {
		slog.DebugContext(ctx, "insight already stored, skipping generation", "match_id", matchId)
		s.unsaved.Remove(matchId)
		return *stored.Record.AIInsight, nil
	}

	insight := ""
	pending, ok := s.unsaved.Get(matchId)
	if ok && pending.createdAt.Equal(stored.CreatedAt) {
		slog.DebugContext(ctx, "reusing unsaved insight", "match_id", matchId)
		insight = pending.insight
	} else {
		// the record was replaced since, its old insight no longer applies
		s.unsaved.Remove(matchId)

		slog.InfoContext(ctx, "generating insight", "match_id", matchId)
		insight, err = s.generator.GenerateInsight(ctx, stored.Record)
		if err != nil {
			return "", fmt.Errorf("generate insight for %s: %w", matchId, err)
		}
	}

	err = s.store.UpsertInsight(ctx, matchId, insight)
	if err != nil {
		slog.WarnContext(ctx, "failed to store insight, keeping it in memory", "match_id", matchId, "err", err)
		evicted := s.unsaved.Add(matchId, unsavedInsight{insight: insight, createdAt: stored.CreatedAt})
		if evicted {
			slog.DebugContext(ctx, "unsaved insight cache full, evicted oldest entry")
		}
		return insight, nil
	}
	s.unsaved.Remove(matchId)
	return insight, nil
}
