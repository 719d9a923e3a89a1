package matchdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"matchcast-backend/services/matchdata/db"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SQLStore keeps one row per match in a sqlite or libsql database, the
// record itself is stored as json.
type SQLStore struct {
	db  *sql.DB
	qry *db.Queries
}

func NewSQLStore(database *sql.DB) SQLStore {
	return SQLStore{
		db:  database,
		qry: db.New(database),
	}
}

func (s SQLStore) ReplaceAll(ctx context.Context, records []MatchRecord) error {
	ctx, span := tracer.Start(ctx, "SQLStore.ReplaceAll")
	defer span.End()
	span.SetAttributes(attribute.Int("count", len(records)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteAllMatches(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	now := time.Now().Unix()
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		err = txqry.InsertMatch(ctx, db.InsertMatchParams{
			MatchID:   record.MatchID,
			Data:      string(data),
			CreatedAt: now,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("insert match %s: %w", record.MatchID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s SQLStore) UpsertInsight(ctx context.Context, matchId, insight string) error {
	ctx, span := tracer.Start(ctx, "SQLStore.UpsertInsight")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	row, err := txqry.GetMatch(ctx, matchId)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var record MatchRecord
	err = json.Unmarshal([]byte(row.Data), &record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	record.AIInsight = &insight

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = txqry.UpdateMatchData(ctx, db.UpdateMatchDataParams{
		Data:    string(data),
		MatchID: matchId,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return tx.Commit()
}

func (s SQLStore) Get(ctx context.Context, matchId string) (StoredMatch, error) {
	ctx, span := tracer.Start(ctx, "SQLStore.Get")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	row, err := s.qry.GetMatch(ctx, matchId)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredMatch{}, ErrMatchNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return StoredMatch{}, err
	}
	return decodeRow(row)
}

func (s SQLStore) List(ctx context.Context) ([]StoredMatch, error) {
	ctx, span := tracer.Start(ctx, "SQLStore.List")
	defer span.End()

	rows, err := s.qry.ListMatches(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]StoredMatch, 0, len(rows))
	for _, row := range rows {
		stored, err := decodeRow(row)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (s SQLStore) Close() error {
	return s.db.Close()
}

func decodeRow(row db.MatchDatum) (StoredMatch, error) {
	var record MatchRecord
	err := json.Unmarshal([]byte(row.Data), &record)
	if err != nil {
		return StoredMatch{}, fmt.Errorf("decode match %s: %w", row.MatchID, err)
	}
	return StoredMatch{
		Record:    record,
		CreatedAt: time.Unix(row.CreatedAt, 0),
	}, nil
}
