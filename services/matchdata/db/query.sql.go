package db

import (
	"context"
)

const deleteAllMatches = `-- name: DeleteAllMatches :exec
delete from match_data
`

func (q *Queries) DeleteAllMatches(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllMatches)
	return err
}

const getMatch = `-- name: GetMatch :one
select match_id, data, created_at from match_data
where match_id = ?
`

func (q *Queries) GetMatch(ctx context.Context, matchID string) (MatchDatum, error) {
	row := q.db.QueryRowContext(ctx, getMatch, matchID)
	var i MatchDatum
	err := row.Scan(&i.MatchID, &i.Data, &i.CreatedAt)
	return i, err
}

const insertMatch = `-- name: InsertMatch :exec
insert into match_data(match_id, data, created_at)
values (?, ?, ?)
`

type InsertMatchParams struct {
	MatchID   string
	Data      string
	CreatedAt int64
}

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) error {
	_, err := q.db.ExecContext(ctx, insertMatch, arg.MatchID, arg.Data, arg.CreatedAt)
	return err
}

const listMatches = `-- name: ListMatches :many
select match_id, data, created_at from match_data
order by rowid asc
`

func (q *Queries) ListMatches(ctx context.Context) ([]MatchDatum, error) {
	rows, err := q.db.QueryContext(ctx, listMatches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MatchDatum
	for rows.Next() {
		var i MatchDatum
		if err := rows.Scan(&i.MatchID, &i.Data, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateMatchData = `-- name: UpdateMatchData :execrows
update match_data set data = ?
where match_id = ?
`

type UpdateMatchDataParams struct {
	Data    string
	MatchID string
}

func (q *Queries) UpdateMatchData(ctx context.Context, arg UpdateMatchDataParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateMatchData, arg.Data, arg.MatchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
