package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sandyurl/shortener/internal/auth"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/users"
	"go.uber.org/zap"
)

// UserService is the user directory behind the session routes.
type UserService interface {
	Get(ctx context.Context, id identity.UserID) (*users.User, error)
	List(ctx context.Context) ([]*users.User, error)
	SignIn(ctx context.Context, credential string) (*users.User, bool, error)
}

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	Issue(id identity.Identity) (string, time.Time, error)
}

// SessionHandler handles sign-in, sign-out and user lookups.
type SessionHandler struct {
	users         UserService
	sessions      SessionIssuer
	caller        caller
	secureCookies bool
	logger        *zap.Logger
}

// NewSessionHandler creates a new session handler. secureCookies marks the
// session cookie Secure and SameSite=None for cross-site frontends.
func NewSessionHandler(
	userService UserService,
	sessions SessionIssuer,
	authenticator Authenticator,
	secureCookies bool,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		users:         userService,
		sessions:      sessions,
		caller:        caller{auth: authenticator, logger: logger},
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (h *SessionHandler) SignIn(ctx context.Context, req *SignInRequest) (*SignInResponse, error) {
	user, created, err := h.users.SignIn(ctx, req.Body.Credential)
	if err != nil {
		return nil, toHTTPError(h.logger, "signin", err)
	}

	token, expiresAt, err := h.sessions.Issue(user.Identity())
	if err != nil {
		return nil, toHTTPError(h.logger, "signin", err)
	}

	resp := &SignInResponse{Status: http.StatusOK}
	resp.Body.Message = "Signed in"

	if created {
		resp.Status = http.StatusCreated
		resp.Body.Message = "Account created"
	}

	resp.SetCookie = h.cookie(token, expiresAt)
	resp.Body.User = user

	return resp, nil
}

func (h *SessionHandler) Logout(_ context.Context, _ *struct{}) (*LogoutResponse, error) {
	resp := &LogoutResponse{}
	resp.SetCookie = h.cookie("", time.Unix(0, 0))
	resp.SetCookie.MaxAge = -1
	resp.Body.Message = "Signed out"

	return resp, nil
}

func (h *SessionHandler) Me(ctx context.Context, req *MeRequest) (*MeResponse, error) {
	resp := &MeResponse{}

	viewer := h.caller.optional(ctx, req.Token)
	if viewer.IsAnonymous() {
		return resp, nil
	}

	user, err := h.users.Get(ctx, viewer.UserID)
	if err != nil {
		return nil, toHTTPError(h.logger, "me", err)
	}

	resp.Body.User = user

	return resp, nil
}

func (h *SessionHandler) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	actor, err := h.caller.required(ctx, "list_users", req.Token)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAnonymous():
		return nil, toHTTPError(h.logger, "list_users", shortener.ErrUnauthenticated)
	case !actor.IsAdmin():
		return nil, toHTTPError(h.logger, "list_users", shortener.ErrForbidden)
	}

	all, err := h.users.List(ctx)
	if err != nil {
		return nil, toHTTPError(h.logger, "list_users", err)
	}

	if all == nil {
		all = []*users.User{}
	}

	resp := &ListUsersResponse{}
	resp.Body.Success = true
	resp.Body.Count = len(all)
	resp.Body.Users = all

	return resp, nil
}

func (h *SessionHandler) cookie(value string, expires time.Time) http.Cookie {
	c := http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if h.secureCookies {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}

	return c
}
