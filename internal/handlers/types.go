package handlers

import (
	"net/http"
	"time"

	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/users"
)

// SessionInput carries the session cookie of a request.
type SessionInput struct {
	Token string `cookie:"token" doc:"Session token"`
}

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	SessionInput
	Body struct {
		OriginalURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"originalUrl" minLength:"1"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     struct {
		Message  string               `example:"Short URL created"             json:"message"`
		ShortURL string               `example:"http://localhost:4000/aZ3x9Q" json:"shortUrl"`
		URL      *shortener.URLRecord `json:"url"`
	}
}

// CodeRequest addresses a record by its short code.
type CodeRequest struct {
	ShortCode string `doc:"The short code" example:"aZ3x9Q" path:"shortCode"`
}

// VerifyResponse returns the record behind a short code.
type VerifyResponse struct {
	Body struct {
		Message string               `json:"message"`
		URL     *shortener.URLRecord `json:"url"`
	}
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// DeleteURLRequest addresses a record by id.
type DeleteURLRequest struct {
	SessionInput
	ID string `doc:"Record id" path:"id"`
}

// DeleteURLResponse reports a deleted record.
type DeleteURLResponse struct {
	Body struct {
		Message string `json:"message"`
		Evicted int64  `doc:"Cache entries removed" json:"evicted"`
	}
}

// DashboardRequest lists the records visible to the caller.
type DashboardRequest struct {
	SessionInput
}

// Creator is the public profile of a record's creator.
type Creator struct {
	ID    identity.UserID `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
}

// DashboardURL is a record as listed on the dashboard. Creator is only filled
// in for administrators.
type DashboardURL struct {
	ID          shortener.RecordID `json:"id"`
	OriginalURL string             `json:"originalUrl"`
	ShortCode   shortener.Code     `json:"shortCode"`
	CreatedBy   identity.UserID    `json:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	Creator     *Creator           `json:"creator,omitempty"`
}

// DashboardResponse lists the records visible to the caller.
type DashboardResponse struct {
	Body struct {
		URLs []DashboardURL `json:"urls"`
	}
}

// URLListResponse is a list of records.
type URLListResponse struct {
	Body struct {
		URLs []*shortener.URLRecord `json:"urls"`
	}
}

// UserURLsRequest lists the records of one user.
type UserURLsRequest struct {
	SessionInput
	UserID string `doc:"User id" path:"userId"`
}

// DeleteUserRequest addresses a user by id.
type DeleteUserRequest struct {
	SessionInput
	ID string `doc:"User id" path:"id"`
}

// DeleteUserResponse reports a deleted user and the records removed with it.
type DeleteUserResponse struct {
	Body struct {
		Message     string `json:"message"`
		DeletedURLs int    `json:"deletedUrls"`
		Evicted     int64  `json:"evicted"`
	}
}

// SignInRequest carries a Google ID-token credential.
type SignInRequest struct {
	Body struct {
		Credential string `doc:"Google ID token" json:"credential" minLength:"1"`
	}
}

// SignInResponse returns the signed-in user and sets the session cookie.
type SignInResponse struct {
	Status    int
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string      `json:"message"`
		User    *users.User `json:"user"`
	}
}

// LogoutResponse clears the session cookie.
type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

// MeRequest asks who the caller is.
type MeRequest struct {
	SessionInput
}

// MeResponse returns the caller, or null for anonymous callers.
type MeResponse struct {
	Body struct {
		User *users.User `json:"user"`
	}
}

// ListUsersRequest lists every user.
type ListUsersRequest struct {
	SessionInput
}

// ListUsersResponse is the list of users.
type ListUsersResponse struct {
	Body struct {
		Success bool          `json:"success"`
		Count   int           `json:"count"`
		Users   []*users.User `json:"users"`
	}
}
