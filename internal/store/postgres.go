package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Repository backed by the scenes table (see db.Schema).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Insert(ctx context.Context, rec Record) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO scenes (id, name, layer_count, document, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Name, rec.LayerCount, rec.Document, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scene %s: %w", rec.ID, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, layer_count, document, created_at FROM scenes WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Name, &rec.LayerCount, &rec.Document, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get scene %s: %w", id, err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, layer_count, created_at FROM scenes ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(&rec.ID, &rec.Name, &rec.LayerCount, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenes: %w", err)
	}
	return recs, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM scenes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scene %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
