package matchdata

import (
	"context"
	"log/slog"
	"matchcast-backend/lib/scrapers/livescore"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type Batch struct {
	Source Source
	// caps the number of matches aggregated at once, 0 means no cap
	MaxConcurrency int
	// extra passes over matches that came back incomplete, 0 means a single pass
	RetryIncomplete int
}

type Result struct {
	// complete records in discovery order
	Records    []MatchRecord
	Discovered int
	Incomplete int
}

// Run discovers today's matches once and aggregates all of them concurrently.
// Incomplete matches are dropped after the last pass.
func (b Batch) Run(ctx context.Context) Result {
	ctx, span := tracer.Start(ctx, "Batch.Run")
	defer span.End()

	matches := b.Source.MatchList(ctx)
	if len(matches) == 0 {
		slog.InfoContext(ctx, "no matches discovered, nothing to aggregate")
		return Result{Records: []MatchRecord{}}
	}
	slog.InfoContext(ctx, "aggregating matches", "count", len(matches))

	records := make([]MatchRecord, len(matches))
	complete := make([]bool, len(matches))

	pending := make([]int, len(matches))
	for i := range matches {
		pending[i] = i
	}

	for pass := 0; pass <= b.RetryIncomplete && len(pending) > 0; pass++ {
		if pass > 0 {
			slog.InfoContext(ctx, "retrying incomplete matches", "pass", pass, "count", len(pending))
		}

		group := errgroup.Group{}
		if b.MaxConcurrency > 0 {
			group.SetLimit(b.MaxConcurrency)
		}
		for _, i := range pending {
			i := i
			group.Go(func() error {
				record, ok := Aggregate(ctx, b.Source, matches[i])
				if ok {
					records[i] = record
					complete[i] = true
				}
				return nil
			})
		}
		group.Wait()

		var still []int
		for _, i := range pending {
			if !complete[i] {
				still = append(still, i)
			}
		}
		pending = still

		if ctx.Err() != nil {
			break
		}
	}

	result := Result{
		Records:    make([]MatchRecord, 0, len(matches)-len(pending)),
		Discovered: len(matches),
		Incomplete: len(pending),
	}
	for i, ok := range complete {
		if ok {
			result.Records = append(result.Records, records[i])
		}
	}

	span.SetAttributes(
		attribute.Int("discovered", result.Discovered),
		attribute.Int("incomplete", result.Incomplete),
	)
	slog.InfoContext(
		ctx, "batch finished",
		"discovered", result.Discovered,
		"complete", len(result.Records),
		"incomplete", result.Incomplete,
	)
	return result
}

type BatchOptions struct {
	Client          livescore.ClientOptions
	MaxConcurrency  int
	RetryIncomplete int
}

// RunBatch runs a batch on a fresh client that is closed once the batch ends.
func RunBatch(ctx context.Context, opts BatchOptions) (Result, error) {
	client, err := livescore.NewClient(opts.Client)
	if err != nil {
		return Result{}, err
	}
	defer client.Close()

	return Batch{
		Source:          client,
		MaxConcurrency:  opts.MaxConcurrency,
		RetryIncomplete: opts.RetryIncomplete,
	}.Run(ctx), nil
}
