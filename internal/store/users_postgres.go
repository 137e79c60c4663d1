package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/users"
)

// PostgresUserStore is a PostgreSQL implementation of users.Repository.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a new PostgreSQL-backed user store.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

const userColumns = `id::text, name, email, COALESCE(avatar_url, ''), role, google_sign_in, created_at`

func (p *PostgresUserStore) FindByID(ctx context.Context, id identity.UserID) (*users.User, error) {
	if !isUUID(string(id)) {
		return nil, users.ErrNotFound
	}

	return p.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))
}

func (p *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return p.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (p *PostgresUserStore) Create(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		INSERT INTO users (id, name, email, avatar_url, role, google_sign_in, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING ` + userColumns

	role := user.Role
	if role == "" {
		role = identity.RoleUser
	}

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	created, err := p.queryOne(ctx, query,
		uuid.NewString(),
		user.Name,
		user.Email,
		user.AvatarURL,
		string(role),
		user.GoogleSignIn,
		createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrEmailTaken
		}

		return nil, err
	}

	return created, nil
}

func (p *PostgresUserStore) List(ctx context.Context) ([]*users.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*users.User, error) {
		return scanUser(row)
	})
}

func (p *PostgresUserStore) Delete(ctx context.Context, id identity.UserID) error {
	if !isUUID(string(id)) {
		return users.ErrNotFound
	}

	tag, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, string(id))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}

	return nil
}

func (p *PostgresUserStore) queryOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}

		return nil, err
	}

	return u, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		u    users.User
		role string
	)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &role, &u.GoogleSignIn, &u.CreatedAt); err != nil {
		return nil, err
	}

	u.Role = identity.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()

	return &u, nil
}

// Compile-time check.
var _ users.Repository = (*PostgresUserStore)(nil)
