package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/sandyurl/shortener/internal/analytics"
	"github.com/sandyurl/shortener/internal/auth"
	"github.com/sandyurl/shortener/internal/handlers"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/store"
	"github.com/sandyurl/shortener/internal/users"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:4000"

var errPublish = errors.New("publish error")

// eventLog records every published analytics event.
type eventLog struct {
	mu       sync.Mutex
	created  []analytics.URLCreatedEvent
	accessed []analytics.URLAccessedEvent
	deleted  []analytics.URLDeletedEvent
	fail     bool
}

func (l *eventLog) publishers() *analytics.Publishers {
	return &analytics.Publishers{
		URLCreated: func(_ context.Context, e *analytics.URLCreatedEvent) error {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.created = append(l.created, *e)

			return l.err()
		},
		URLAccessed: func(_ context.Context, e *analytics.URLAccessedEvent) error {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.accessed = append(l.accessed, *e)

			return l.err()
		},
		URLDeleted: func(_ context.Context, e *analytics.URLDeletedEvent) error {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.deleted = append(l.deleted, *e)

			return l.err()
		},
	}
}

func (l *eventLog) err() error {
	if l.fail {
		return errPublish
	}

	return nil
}

type server struct {
	api      humatest.TestAPI
	events   *eventLog
	sessions *auth.Sessions
	cache    *store.MemoryCache
	svc      *shortener.Service
	alice    identity.Identity
	bob      identity.Identity
	admin    identity.Identity
}

func newServer(t *testing.T) *server {
	t.Helper()

	logger := zap.NewNop()
	userRepo := store.NewMemoryUserStore()
	c := store.NewMemoryCache(time.Minute)

	gen, err := shortener.NewCodeGenerator(shortener.CodeLength)
	require.NoError(t, err)

	userService := users.NewService(userRepo, c, users.Config{AdminEmails: []string{"root@example.com"}}, logger)
	svc := shortener.NewService(store.NewMemoryStore(), c, userService, gen, logger)

	sessions, err := auth.NewSessions("test-secret", time.Hour)
	require.NoError(t, err)

	authenticator := auth.NewAuthenticator(sessions, userService, logger)
	events := &eventLog{}

	_, api := humatest.New(t)
	handlers.RegisterRoutes(api,
		handlers.NewURLHandler(svc, userService, authenticator, events.publishers(), testBaseURL, logger),
		handlers.NewSessionHandler(userService, sessions, authenticator, false, logger),
	)

	s := &server{api: api, events: events, sessions: sessions, cache: c, svc: svc}

	register := func(email string, role identity.Role) identity.Identity {
		u, err := userRepo.Create(context.Background(), &users.User{Name: email, Email: email, Role: role})
		require.NoError(t, err)

		return u.Identity()
	}

	s.alice = register("alice@example.com", identity.RoleUser)
	s.bob = register("bob@example.com", identity.RoleUser)
	s.admin = register("admin@example.com", identity.RoleAdmin)

	return s
}

// cookie returns the request header carrying a session for id.
func (s *server) cookie(t *testing.T, id identity.Identity) string {
	t.Helper()

	token, _, err := s.sessions.Issue(id)
	require.NoError(t, err)

	return "Cookie: " + auth.CookieName + "=" + token
}

func (s *server) shorten(t *testing.T, by *identity.Identity, url string) *shortener.URLRecord {
	t.Helper()

	args := []any{map[string]any{"originalUrl": url}}
	if by != nil {
		args = append([]any{s.cookie(t, *by)}, args...)
	}

	resp := s.api.Post("/shorten", args...)
	require.Equal(t, 201, resp.Code, resp.Body.String())

	var body struct {
		URL shortener.URLRecord `json:"url"`
	}

	decode(t, resp, &body)

	return &body.URL
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), resp.Body.String())
}
