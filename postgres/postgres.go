// Package postgres stores the durable presentation registry. Unlike the
// reaction state in Redis, registered presentations survive restarts.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/livedeck/reactions-backend/api"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings the DB to ensure the connection
// is working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// ListPresentations returns all registered presentations, newest first.
func (pg *Postgres) ListPresentations(ctx context.Context) ([]api.Presentation, error) {
	var ps []presentation
	err := pg.bun.NewSelect().
		Model(&ps).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	out := make([]api.Presentation, len(ps))
	for i, p := range ps {
		out[i] = p.APIPresentation()
	}
	return out, nil
}

// GetPresentation returns the presentation registered under the slug, or
// api.ErrPresentationNotFound when there is none.
func (pg *Postgres) GetPresentation(ctx context.Context, slug string) (api.Presentation, error) {
	var p presentation
	err := pg.bun.NewSelect().
		Model(&p).
		Where("slug = ?", slug).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Presentation{}, api.ErrPresentationNotFound
	}
	if err != nil {
		return api.Presentation{}, fmt.Errorf("scan: %w", err)
	}
	return p.APIPresentation(), nil
}

// InsertPresentation registers a presentation. The returned value holds auto
// generated fields, such as the creation time.
func (pg *Postgres) InsertPresentation(ctx context.Context, p api.Presentation) (api.Presentation, error) {
	m := &presentation{
		Slug:   p.Slug,
		Title:  p.Title,
		DeckID: p.DeckID,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return api.Presentation{}, fmt.Errorf("insert: %w", err)
	}
	return m.APIPresentation(), nil
}
