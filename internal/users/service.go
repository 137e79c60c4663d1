package users

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandyurl/shortener/internal/cache"
	"github.com/sandyurl/shortener/internal/identity"
	"go.uber.org/zap"
)

// Config controls sign-in behaviour.
type Config struct {
	// GoogleClientID, when set, must appear in the credential's audience.
	GoogleClientID string

	// AdminEmails are granted the admin role when they first sign in.
	AdminEmails []string
}

// Service looks users up through the cache and registers them on first sign-in.
type Service struct {
	repo   Repository
	cache  cache.Cache
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new user service.
func NewService(repo Repository, c cache.Cache, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the user with the given id, reading through the "user:" cache
// namespace. Cache failures fall back to the repository.
func (s *Service) Get(ctx context.Context, id identity.UserID) (*User, error) {
	key := cache.UserKey(string(id))

	cached, err := cache.GetJSON[User](ctx, s.cache, key)
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, user, cache.TTL); err != nil {
		s.logger.Warn("user cache populate failed", zap.String("key", key), zap.Error(err))
	}

	return user, nil
}

// Exists reports whether a user with the given id is registered.
func (s *Service) Exists(ctx context.Context, id identity.UserID) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Remove deletes the user and evicts the cached copy.
func (s *Service) Remove(ctx context.Context, id identity.UserID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.cache.Delete(ctx, cache.UserKey(string(id))); err != nil {
		s.logger.Warn("user cache evict failed", zap.String("user", string(id)), zap.Error(err))
	}

	return nil
}

// List returns all registered users.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

type googleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// SignIn registers or finds the user described by a Google ID-token credential.
// The boolean result is true when a new account was created.
//
// The credential signature is not verified against Google's keys; only its claims
// are checked.
func (s *Service) SignIn(ctx context.Context, credential string) (*User, bool, error) {
	claims, err := s.decodeCredential(credential)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindByEmail(ctx, claims.Email)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("find user by email: %w", err)
	}

	role := identity.RoleUser
	if slices.ContainsFunc(s.cfg.AdminEmails, func(e string) bool { return strings.EqualFold(e, claims.Email) }) {
		role = identity.RoleAdmin
	}

	created, err := s.repo.Create(ctx, &User{
		Name:         claims.Name,
		Email:        claims.Email,
		AvatarURL:    claims.Picture,
		Role:         role,
		GoogleSignIn: true,
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, ErrEmailTaken) {
		// Lost a race with a concurrent first sign-in for the same email.
		existing, err = s.repo.FindByEmail(ctx, claims.Email)
		if err != nil {
			return nil, false, fmt.Errorf("find user by email: %w", err)
		}

		return existing, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user", string(created.ID)), zap.String("role", string(role)))

	return created, true, nil
}

func (s *Service) decodeCredential(credential string) (*googleClaims, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCredential)
	}

	var claims googleClaims

	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidCredential)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidCredential)
	}

	if s.cfg.GoogleClientID != "" && !slices.Contains(claims.Audience, s.cfg.GoogleClientID) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidCredential)
	}

	if claims.Name == "" {
		claims.Name = claims.Email
	}

	return &claims, nil
}
