// Package analytics defines the events the server emits about short URLs and the
// consumers that persist them.
package analytics

import "time"

const (
	TopicURLCreated  = "url.created"
	TopicURLAccessed = "url.accessed"
	TopicURLDeleted  = "url.deleted"
)

// URLCreatedEvent is emitted when a URL is shortened.
type URLCreatedEvent struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// URLAccessedEvent is emitted when a short code is resolved for a redirect.
type URLAccessedEvent struct {
	Code       string    `json:"code"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}

// Deletion reasons.
const (
	DeletedByOwner  = "owner"
	DeletedByAdmin  = "admin"
	DeletedWithUser = "user_deleted"
)

// URLDeletedEvent is emitted for every record removed, individually or as part
// of a user deletion.
type URLDeletedEvent struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	DeletedBy string    `json:"deletedBy"`
	Reason    string    `json:"reason"`
	DeletedAt time.Time `json:"deletedAt"`
}
