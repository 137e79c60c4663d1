package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/users"
)

// MemoryUserStore is an in-memory implementation of users.Repository.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[identity.UserID]*users.User
	order []identity.UserID
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[identity.UserID]*users.User)}
}

func (m *MemoryUserStore) FindByID(_ context.Context, id identity.UserID) (*users.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}

	c := *u

	return &c, nil
}

func (m *MemoryUserStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		if u := m.users[id]; strings.EqualFold(u.Email, email) {
			c := *u

			return &c, nil
		}
	}

	return nil, users.ErrNotFound
}

func (m *MemoryUserStore) Create(_ context.Context, user *users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, users.ErrEmailTaken
		}
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = identity.UserID(uuid.NewString())
	}

	if stored.Role == "" {
		stored.Role = identity.RoleUser
	}

	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	m.users[stored.ID] = &stored
	m.order = append(m.order, stored.ID)

	c := stored

	return &c, nil
}

func (m *MemoryUserStore) List(_ context.Context) ([]*users.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*users.User, 0, len(m.order))
	for _, id := range m.order {
		c := *m.users[id]
		out = append(out, &c)
	}

	return out, nil
}

func (m *MemoryUserStore) Delete(_ context.Context, id identity.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return users.ErrNotFound
	}

	delete(m.users, id)

	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)

			break
		}
	}

	return nil
}

// Compile-time check.
var _ users.Repository = (*MemoryUserStore)(nil)
