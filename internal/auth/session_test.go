package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandyurl/shortener/internal/auth"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/store"
	"github.com/sandyurl/shortener/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func newSessions(t *testing.T, ttl time.Duration) *auth.Sessions {
	t.Helper()

	s, err := auth.NewSessions(secret, ttl)
	require.NoError(t, err)

	return s
}

func TestNewSessions(t *testing.T) {
	_, err := auth.NewSessions("", time.Hour)

	assert.Error(t, err)
}

func TestSessions_IssueVerify(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := newSessions(t, time.Hour)

		token, expiresAt, err := s.Issue(identity.NewUser("u-1", identity.RoleAdmin))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		id, err := s.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, identity.UserID("u-1"), id)
	})

	t.Run("anonymous identities get no token", func(t *testing.T) {
		s := newSessions(t, time.Hour)

		_, _, err := s.Issue(identity.Anonymous)

		assert.ErrorIs(t, err, shortener.ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		s := newSessions(t, -time.Minute)
		token, _, err := s.Issue(identity.NewUser("u-1", ""))
		require.NoError(t, err)

		_, err = s.Verify(token)

		require.ErrorIs(t, err, auth.ErrInvalidSession)
		assert.ErrorIs(t, err, shortener.ErrUnauthenticated)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := auth.NewSessions("another-secret", time.Hour)
		require.NoError(t, err)
		token, _, err := other.Issue(identity.NewUser("u-1", ""))
		require.NoError(t, err)

		_, err = newSessions(t, time.Hour).Verify(token)

		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = newSessions(t, time.Hour).Verify(token)

		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("token without expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1"}).
			SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = newSessions(t, time.Hour).Verify(token)

		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})
}

func TestAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t, time.Hour)
	repo := store.NewMemoryUserStore()
	userSvc := users.NewService(repo, store.NewMemoryCache(time.Minute), users.Config{}, zap.NewNop())
	authenticator := auth.NewAuthenticator(sessions, userSvc, zap.NewNop())

	admin, err := repo.Create(ctx, &users.User{Name: "Admin", Email: "admin@example.com", Role: identity.RoleAdmin})
	require.NoError(t, err)

	t.Run("no token is anonymous", func(t *testing.T) {
		id, err := authenticator.Authenticate(ctx, "")

		require.NoError(t, err)
		assert.True(t, id.IsAnonymous())
	})

	t.Run("valid token resolves the stored user", func(t *testing.T) {
		token, _, err := sessions.Issue(admin.Identity())
		require.NoError(t, err)

		id, err := authenticator.Authenticate(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, admin.ID, id.UserID)
		assert.True(t, id.IsAdmin())
	})

	t.Run("role comes from the store, not the token", func(t *testing.T) {
		plain, err := repo.Create(ctx, &users.User{Name: "Plain", Email: "plain@example.com"})
		require.NoError(t, err)

		token, _, err := sessions.Issue(identity.NewUser(plain.ID, identity.RoleAdmin))
		require.NoError(t, err)

		id, err := authenticator.Authenticate(ctx, token)

		require.NoError(t, err)
		assert.False(t, id.IsAdmin())
	})

	t.Run("bad token is anonymous with an error", func(t *testing.T) {
		id, err := authenticator.Authenticate(ctx, "garbage")

		require.ErrorIs(t, err, auth.ErrInvalidSession)
		assert.True(t, id.IsAnonymous())
	})

	t.Run("token of a deleted user", func(t *testing.T) {
		gone, err := repo.Create(ctx, &users.User{Name: "Gone", Email: "gone@example.com"})
		require.NoError(t, err)

		token, _, err := sessions.Issue(gone.Identity())
		require.NoError(t, err)
		require.NoError(t, userSvc.Remove(ctx, gone.ID))

		id, err := authenticator.Authenticate(ctx, token)

		require.ErrorIs(t, err, auth.ErrInvalidSession)
		assert.True(t, id.IsAnonymous())
	})
}
