package matchdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrRefreshInProgress = errors.New("a refresh is already in progress")

type Service struct {
	store   Store
	opts    BatchOptions
	refresh *sync.Mutex
	// overrides the livescore client, used by tests
	source Source
}

func NewService(store Store, opts BatchOptions) Service {
	return Service{
		store:   store,
		opts:    opts,
		refresh: &sync.Mutex{},
	}
}

// WithSource returns a copy of the service that reads from src instead of
// constructing a livescore client per refresh. The copy shares the refresh lock.
func (s Service) WithSource(src Source) Service {
	s.source = src
	return s
}

func (s Service) Store() Store {
	return s.store
}

// Refresh scrapes today's fixtures and replaces everything stored with the
// complete records of this batch. It returns the number of stored records.
func (s Service) Refresh(ctx context.Context) (int, error) {
	if !s.refresh.TryLock() {
		return 0, ErrRefreshInProgress
	}
	defer s.refresh.Unlock()

	ctx, span := tracer.Start(ctx, "Refresh")
	defer span.End()

	var result Result
	if s.source != nil {
		result = Batch{
			Source:          s.source,
			MaxConcurrency:  s.opts.MaxConcurrency,
			RetryIncomplete: s.opts.RetryIncomplete,
		}.Run(ctx)
	} else {
		var err error
		result, err = RunBatch(ctx, s.opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, fmt.Errorf("run batch: %w", err)
		}
	}

	discoveredCounter.Add(ctx, int64(result.Discovered))
	incompleteCounter.Add(ctx, int64(result.Incomplete))

	// a cancelled batch has dropped matches it never finished, keep the
	// previous state instead
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("refresh cancelled: %w", err)
	}

	err := s.store.ReplaceAll(ctx, result.Records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("replace all: %w", err)
	}
	storedCounter.Add(ctx, int64(len(result.Records)))

	span.SetAttributes(attribute.Int("stored", len(result.Records)))
	slog.InfoContext(ctx, "refresh complete", "stored", len(result.Records))
	return len(result.Records), nil
}
