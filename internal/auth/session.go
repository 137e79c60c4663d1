// Package auth turns a session cookie into an identity.Identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/users"
	"go.uber.org/zap"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// ErrInvalidSession is returned for malformed, forged or expired session tokens.
var ErrInvalidSession = fmt.Errorf("%w: invalid or expired token", shortener.ErrUnauthenticated)

var errMissingSecret = errors.New("session secret must not be empty")

type sessionClaims struct {
	Role identity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session token codec.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errMissingSecret
	}

	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns how long issued tokens stay valid.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given user identity and returns it with its expiry.
func (s *Sessions) Issue(id identity.Identity) (string, time.Time, error) {
	if id.IsAnonymous() {
		return "", time.Time{}, shortener.ErrUnauthenticated
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the token signature and expiry and returns the user it was issued to.
func (s *Sessions) Verify(token string) (identity.UserID, error) {
	var claims sessionClaims

	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if claims.Subject == "" {
		return "", ErrInvalidSession
	}

	return identity.UserID(claims.Subject), nil
}

// UserLookup finds the current state of a user.
type UserLookup interface {
	Get(ctx context.Context, id identity.UserID) (*users.User, error)
}

// Authenticator resolves the caller identity of a request from its session token.
type Authenticator struct {
	sessions *Sessions
	users    UserLookup
	logger   *zap.Logger
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(sessions *Sessions, lookup UserLookup, logger *zap.Logger) *Authenticator {
	return &Authenticator{sessions: sessions, users: lookup, logger: logger}
}

// Authenticate returns Anonymous for an empty token. For any other token it
// returns the identity of the stored user, or Anonymous with ErrInvalidSession
// when the token is bad or its user no longer exists. The role always comes from
// the stored user, not from the token.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	if token == "" {
		return identity.Anonymous, nil
	}

	userID, err := a.sessions.Verify(token)
	if err != nil {
		return identity.Anonymous, err
	}

	user, err := a.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return identity.Anonymous, fmt.Errorf("%w: user no longer exists", ErrInvalidSession)
		}

		a.logger.Error("failed to load session user", zap.String("user", string(userID)), zap.Error(err))

		return identity.Anonymous, fmt.Errorf("load session user: %w", err)
	}

	return user.Identity(), nil
}
