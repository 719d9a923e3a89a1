package matchdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const redisTxRetries = 5

type RedisOptions struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// key prefix, defaults to "matchcast"
	Prefix string `json:"prefix"`
}

// RedisStore keeps each record under <prefix>:match:<id> and the ids of the
// current batch, in insertion order, in the list <prefix>:matches.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type redisEntry struct {
	Record    MatchRecord `json:"record"`
	CreatedAt int64       `json:"created_at"`
}

func NewRedisStore(ctx context.Context, opts RedisOptions) (RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := client.Ping(pingCtx).Err()
	if err != nil {
		client.Close()
		return RedisStore{}, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "matchcast"
	}
	return RedisStore{client: client, prefix: prefix}, nil
}

func (s RedisStore) indexKey() string {
	return s.prefix + ":matches"
}

func (s RedisStore) matchKey(matchId string) string {
	return s.prefix + ":match:" + matchId
}

func (s RedisStore) ReplaceAll(ctx context.Context, records []MatchRecord) error {
	ctx, span := tracer.Start(ctx, "RedisStore.ReplaceAll")
	defer span.End()
	span.SetAttributes(attribute.Int("count", len(records)))

	now := time.Now().Unix()
	values := make([][]byte, len(records))
	for i, record := range records {
		data, err := json.Marshal(redisEntry{Record: record, CreatedAt: now})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		values[i] = data
	}

	txf := func(tx *redis.Tx) error {
		previous, err := tx.LRange(ctx, s.indexKey(), 0, -1).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range previous {
				pipe.Del(ctx, s.matchKey(id))
			}
			pipe.Del(ctx, s.indexKey())
			for i, record := range records {
				pipe.Set(ctx, s.matchKey(record.MatchID), values[i], 0)
				pipe.RPush(ctx, s.indexKey(), record.MatchID)
			}
			return nil
		})
		return err
	}

	err := s.watch(ctx, txf, s.indexKey())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s RedisStore) UpsertInsight(ctx context.Context, matchId, insight string) error {
	ctx, span := tracer.Start(ctx, "RedisStore.UpsertInsight")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	key := s.matchKey(matchId)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrMatchNotFound
		}
		if err != nil {
			return err
		}

		var entry redisEntry
		err = json.Unmarshal(data, &entry)
		if err != nil {
			return err
		}
		entry.Record.AIInsight = &insight
		updated, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}

	err := s.watch(ctx, txf, key)
	if errors.Is(err, ErrMatchNotFound) {
		return err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s RedisStore) watch(ctx context.Context, txf func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < redisTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis transaction on %v: %w", keys, redis.TxFailedErr)
}

func (s RedisStore) Get(ctx context.Context, matchId string) (StoredMatch, error) {
	ctx, span := tracer.Start(ctx, "RedisStore.Get")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchId))

	data, err := s.client.Get(ctx, s.matchKey(matchId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredMatch{}, ErrMatchNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return StoredMatch{}, err
	}
	return decodeEntry(matchId, data)
}

func (s RedisStore) List(ctx context.Context) ([]StoredMatch, error) {
	ctx, span := tracer.Start(ctx, "RedisStore.List")
	defer span.End()

	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(ids) == 0 {
		return []StoredMatch{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.matchKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]StoredMatch, 0, len(values))
	for i, value := range values {
		// the record was removed between LRANGE and MGET
		data, ok := value.(string)
		if !ok {
			continue
		}
		stored, err := decodeEntry(ids[i], []byte(data))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (s RedisStore) Close() error {
	return s.client.Close()
}

func decodeEntry(matchId string, data []byte) (StoredMatch, error) {
	var entry redisEntry
	err := json.Unmarshal(data, &entry)
	if err != nil {
		return StoredMatch{}, fmt.Errorf("decode match %s: %w", matchId, err)
	}
	return StoredMatch{
		Record:    entry.Record,
		CreatedAt: time.Unix(entry.CreatedAt, 0),
	}, nil
}
