package shortener

import (
	"time"

	"github.com/sandyurl/shortener/internal/identity"
)

// Code represents a short URL code.
type Code string

// RecordID is the store-assigned identifier of a URL record.
type RecordID string

// URLRecord maps a short code to the URL it stands for. Every field is immutable
// once the record has been inserted.
type URLRecord struct {
	ID          RecordID        `json:"id"`
	OriginalURL string          `json:"originalUrl"`
	ShortCode   Code            `json:"shortCode"`
	CreatedBy   identity.UserID `json:"createdBy,omitempty"` // empty for anonymous creations
	CreatedAt   time.Time       `json:"createdAt"`
}

// DeleteResult reports the outcome of deleting a single record.
type DeleteResult struct {
	Record *URLRecord

	// Evicted is the number of cache keys that were actually removed. It is
	// diagnostic only: a zero simply means the record was not cached.
	Evicted int64
}

// PurgeResult reports the outcome of deleting a user together with their records.
type PurgeResult struct {
	UserID  identity.UserID
	Records []*URLRecord
	Evicted int64
}
