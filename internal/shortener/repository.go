package shortener

import (
	"context"

	"github.com/sandyurl/shortener/internal/identity"
)

// Repository is the durable store of URL records. It is the single source of truth
// for short code uniqueness: Insert must reject a taken code atomically with
// ErrDuplicateCode, whatever the caller checked beforehand.
type Repository interface {
	FindByCode(ctx context.Context, code Code) (*URLRecord, error)
	FindByID(ctx context.Context, id RecordID) (*URLRecord, error)

	// Insert stores a new record, assigning its ID (and CreatedAt when zero).
	Insert(ctx context.Context, record *URLRecord) (*URLRecord, error)

	DeleteByID(ctx context.Context, id RecordID) (*URLRecord, error)

	// DeleteByCreator removes every record created by the user and returns them.
	DeleteByCreator(ctx context.Context, userID identity.UserID) ([]*URLRecord, error)

	// ListAll and ListByCreator return records in insertion order.
	ListAll(ctx context.Context) ([]*URLRecord, error)
	ListByCreator(ctx context.Context, userID identity.UserID) ([]*URLRecord, error)
}

// UserDirectory is the part of the user store needed to cascade a user deletion.
type UserDirectory interface {
	Exists(ctx context.Context, id identity.UserID) (bool, error)
	Remove(ctx context.Context, id identity.UserID) error
}

// Recorder observes the resolution path. Implementations must be safe for
// concurrent use.
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheError(op string)
	Collision()
	Exhausted()
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()         {}
func (nopRecorder) CacheMiss()        {}
func (nopRecorder) CacheError(string) {}
func (nopRecorder) Collision()        {}
func (nopRecorder) Exhausted()        {}
