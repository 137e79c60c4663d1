package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandyurl/shortener/internal/analytics"
)

// Event kinds stored in url_events.kind.
const (
	KindCreated  = "created"
	KindAccessed = "accessed"
	KindDeleted  = "deleted"
)

// Postgres appends every event to the url_events table as JSONB.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveURLCreated(ctx context.Context, event *analytics.URLCreatedEvent) error {
	return p.insert(ctx, KindCreated, event.Code, event.CreatedAt, event)
}

func (p *Postgres) SaveURLAccessed(ctx context.Context, event *analytics.URLAccessedEvent) error {
	return p.insert(ctx, KindAccessed, event.Code, event.AccessedAt, event)
}

func (p *Postgres) SaveURLDeleted(ctx context.Context, event *analytics.URLDeletedEvent) error {
	return p.insert(ctx, KindDeleted, event.Code, event.DeletedAt, event)
}

// CountByCode returns how many events of kind were stored for code.
func (p *Postgres) CountByCode(ctx context.Context, kind, code string) (int, error) {
	var n int

	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM url_events WHERE kind = $1 AND short_code = $2`,
		kind, code,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", kind, err)
	}

	return n, nil
}

func (p *Postgres) insert(ctx context.Context, kind, code string, at time.Time, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	if at.IsZero() {
		at = time.Now()
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO url_events (kind, short_code, payload, occurred_at) VALUES ($1, $2, $3, $4)`,
		kind, code, payload, at,
	)
	if err != nil {
		return fmt.Errorf("insert %s event: %w", kind, err)
	}

	return nil
}
