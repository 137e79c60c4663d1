package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	byCode map[shortener.Code]*shortener.URLRecord
	byID   map[shortener.RecordID]*shortener.URLRecord
	order  []shortener.RecordID
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode: make(map[shortener.Code]*shortener.URLRecord),
		byID:   make(map[shortener.RecordID]*shortener.URLRecord),
	}
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return clone(r), nil
}

func (m *MemoryStore) FindByID(_ context.Context, id shortener.RecordID) (*shortener.URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return clone(r), nil
}

func (m *MemoryStore) Insert(_ context.Context, record *shortener.URLRecord) (*shortener.URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byCode[record.ShortCode]; taken {
		return nil, shortener.ErrDuplicateCode
	}

	stored := clone(record)
	stored.ID = shortener.RecordID(uuid.NewString())

	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	m.byCode[stored.ShortCode] = stored
	m.byID[stored.ID] = stored
	m.order = append(m.order, stored.ID)

	return clone(stored), nil
}

func (m *MemoryStore) DeleteByID(_ context.Context, id shortener.RecordID) (*shortener.URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	m.remove(r)

	return clone(r), nil
}

func (m *MemoryStore) DeleteByCreator(_ context.Context, userID identity.UserID) ([]*shortener.URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.filter(func(r *shortener.URLRecord) bool { return r.CreatedBy == userID })
	for _, r := range removed {
		m.remove(r)
	}

	return removed, nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]*shortener.URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filter(func(*shortener.URLRecord) bool { return true }), nil
}

func (m *MemoryStore) ListByCreator(_ context.Context, userID identity.UserID) ([]*shortener.URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filter(func(r *shortener.URLRecord) bool { return r.CreatedBy == userID }), nil
}

// filter returns copies of the matching records in insertion order. Callers hold the lock.
func (m *MemoryStore) filter(match func(*shortener.URLRecord) bool) []*shortener.URLRecord {
	out := make([]*shortener.URLRecord, 0)

	for _, id := range m.order {
		if r := m.byID[id]; match(r) {
			out = append(out, clone(r))
		}
	}

	return out
}

// remove drops r from every index. Callers hold the write lock.
func (m *MemoryStore) remove(r *shortener.URLRecord) {
	delete(m.byCode, r.ShortCode)
	delete(m.byID, r.ID)
	m.order = slices.DeleteFunc(m.order, func(id shortener.RecordID) bool { return id == r.ID })
}

func clone(r *shortener.URLRecord) *shortener.URLRecord {
	c := *r

	return &c
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
