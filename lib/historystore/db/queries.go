package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getSlot = `-- name: GetSlot :one
SELECT value FROM storage_slot WHERE key = ?
`

func (q *Queries) GetSlot(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getSlot, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const setSlot = `-- name: SetSlot :exec
INSERT INTO storage_slot (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value
`

type SetSlotParams struct {
	Key   string
	Value string
}

func (q *Queries) SetSlot(ctx context.Context, arg SetSlotParams) error {
	_, err := q.db.ExecContext(ctx, setSlot, arg.Key, arg.Value)
	return err
}

const deleteSlot = `-- name: DeleteSlot :exec
DELETE FROM storage_slot WHERE key = ?
`

func (q *Queries) DeleteSlot(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteSlot, key)
	return err
}
