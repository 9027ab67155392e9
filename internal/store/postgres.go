package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// Querier is the part of *pgxpool.Pool the table uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgresTable stores each record as a jsonb document next to its key
// in a table shaped (id bigint primary key, doc jsonb).
type PostgresTable[T Keyed] struct {
	db    Querier
	table string

	scanSQL   string
	getSQL    string
	putSQL    string
	deleteSQL string
}

// NewPostgresTable prepares the statements for table.
func NewPostgresTable[T Keyed](db Querier, table string) *PostgresTable[T] {
	ident := pgx.Identifier{table}.Sanitize()

	return &PostgresTable[T]{
		db:        db,
		table:     table,
		scanSQL:   fmt.Sprintf("SELECT doc FROM %s", ident),
		getSQL:    fmt.Sprintf("SELECT doc FROM %s WHERE id = $1", ident),
		putSQL:    fmt.Sprintf("INSERT INTO %s (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc", ident),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE id = $1", ident),
	}
}

func (p *PostgresTable[T]) Scan(ctx context.Context) ([]T, error) {
	rows, err := p.db.Query(ctx, p.scanSQL)
	if err != nil {
		return nil, errors.Wrapf(err, "table:%s: scan", p.table)
	}

	items, err := pgx.CollectRows(rows, decodeRow[T])
	if err != nil {
		return nil, errors.Wrapf(err, "table:%s: scan", p.table)
	}
	if items == nil {
		items = []T{}
	}

	return items, nil
}

func (p *PostgresTable[T]) Get(ctx context.Context, key int) (T, bool, error) {
	var item T
	var doc []byte

	err := p.db.QueryRow(ctx, p.getSQL, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return item, false, nil
	}
	if err != nil {
		return item, false, errors.Wrapf(err, "table:%s: get %d", p.table, key)
	}

	if err := json.Unmarshal(doc, &item); err != nil {
		return item, false, errors.Wrapf(err, "table:%s: decode %d", p.table, key)
	}
	return item, true, nil
}

func (p *PostgresTable[T]) Put(ctx context.Context, item T) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return errors.Wrapf(err, "table:%s: encode %d", p.table, item.Key())
	}

	_, err = p.db.Exec(ctx, p.putSQL, item.Key(), doc)
	return errors.Wrapf(err, "table:%s: put %d", p.table, item.Key())
}

func (p *PostgresTable[T]) Delete(ctx context.Context, key int) error {
	_, err := p.db.Exec(ctx, p.deleteSQL, key)
	return errors.Wrapf(err, "table:%s: delete %d", p.table, key)
}

func (p *PostgresTable[T]) Ping(ctx context.Context) error {
	return errors.Wrap(p.db.Ping(ctx), "ping postgres")
}

func decodeRow[T any](row pgx.CollectableRow) (T, error) {
	var item T
	var doc []byte

	if err := row.Scan(&doc); err != nil {
		return item, err
	}
	err := json.Unmarshal(doc, &item)
	return item, err
}
