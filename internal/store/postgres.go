package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
)

const uniqueViolation = "23505"

// PostgresConn owns the process-wide connection pool.
type PostgresConn struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it and applies pending migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresConn, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := Migrate(pool); err != nil {
		pool.Close()

		return nil, err
	}

	return &PostgresConn{pool: pool}, nil
}

// Pool returns the shared pool.
func (c *PostgresConn) Pool() *pgxpool.Pool {
	return c.pool
}

// Ping checks database connectivity.
func (c *PostgresConn) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Shutdown closes the pool.
func (c *PostgresConn) Shutdown() error {
	c.pool.Close()

	return nil
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const recordColumns = `id::text, short_code, original_url, created_by::text, created_at`

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.URLRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM short_urls WHERE short_code = $1`

	return p.queryOne(ctx, query, string(code))
}

func (p *PostgresStore) FindByID(ctx context.Context, id shortener.RecordID) (*shortener.URLRecord, error) {
	if !isUUID(string(id)) {
		return nil, shortener.ErrNotFound
	}

	query := `SELECT ` + recordColumns + ` FROM short_urls WHERE id = $1`

	return p.queryOne(ctx, query, string(id))
}

func (p *PostgresStore) Insert(ctx context.Context, record *shortener.URLRecord) (*shortener.URLRecord, error) {
	query := `
		INSERT INTO short_urls (id, short_code, original_url, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + recordColumns

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	inserted, err := p.queryOne(ctx, query,
		uuid.NewString(),
		string(record.ShortCode),
		record.OriginalURL,
		nullableUser(record.CreatedBy),
		createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shortener.ErrDuplicateCode
		}

		return nil, err
	}

	return inserted, nil
}

func (p *PostgresStore) DeleteByID(ctx context.Context, id shortener.RecordID) (*shortener.URLRecord, error) {
	if !isUUID(string(id)) {
		return nil, shortener.ErrNotFound
	}

	query := `DELETE FROM short_urls WHERE id = $1 RETURNING ` + recordColumns

	return p.queryOne(ctx, query, string(id))
}

func (p *PostgresStore) DeleteByCreator(ctx context.Context, userID identity.UserID) ([]*shortener.URLRecord, error) {
	if !isUUID(string(userID)) {
		return []*shortener.URLRecord{}, nil
	}

	query := `
		WITH removed AS (
			DELETE FROM short_urls WHERE created_by = $1 RETURNING seq, ` + recordColumns + `
		)
		SELECT id, short_code, original_url, created_by, created_at FROM removed ORDER BY seq`

	return p.queryMany(ctx, query, string(userID))
}

func (p *PostgresStore) ListAll(ctx context.Context) ([]*shortener.URLRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM short_urls ORDER BY seq`

	return p.queryMany(ctx, query)
}

func (p *PostgresStore) ListByCreator(ctx context.Context, userID identity.UserID) ([]*shortener.URLRecord, error) {
	if !isUUID(string(userID)) {
		return []*shortener.URLRecord{}, nil
	}

	query := `SELECT ` + recordColumns + ` FROM short_urls WHERE created_by = $1 ORDER BY seq`

	return p.queryMany(ctx, query, string(userID))
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*shortener.URLRecord, error) {
	record, err := scanRecord(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return record, nil
}

func (p *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]*shortener.URLRecord, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.URLRecord, error) {
		return scanRecord(row)
	})
}

func scanRecord(row pgx.Row) (*shortener.URLRecord, error) {
	var (
		r         shortener.URLRecord
		createdBy *string
	)

	if err := row.Scan(&r.ID, &r.ShortCode, &r.OriginalURL, &createdBy, &r.CreatedAt); err != nil {
		return nil, err
	}

	if createdBy != nil {
		r.CreatedBy = identity.UserID(*createdBy)
	}

	r.CreatedAt = r.CreatedAt.UTC()

	return &r, nil
}

func nullableUser(id identity.UserID) *string {
	if id == "" {
		return nil
	}

	s := string(id)

	return &s
}

func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
