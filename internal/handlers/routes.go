package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sandyurl/shortener/internal/ratelimit"
)

// RegisterRoutes registers all URL shortener routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, urlHandler *URLHandler, sessionHandler *SessionHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a six character short code for the URL. The caller becomes its owner when signed in.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata: ratelimit.Limited(
			ratelimit.LimitConfig{Window: time.Minute, Max: 10},
			ratelimit.LimitConfig{Window: time.Hour, Max: 100},
			ratelimit.LimitConfig{Window: 24 * time.Hour, Max: 500},
		),
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "verify-short-url",
		Method:      http.MethodGet,
		Path:        "/verify/{shortCode}",
		Summary:     "Look up a short code",
		Tags:        []string{"URLs"},
		Metadata:    ratelimit.Scoped(ratelimit.ScopeRead),
	}, urlHandler.VerifyCode)

	huma.Register(api, huma.Operation{
		OperationID: "list-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "List visible URLs",
		Description: "Administrators see every URL, users see their own, anonymous callers see none.",
		Tags:        []string{"URLs"},
	}, urlHandler.Dashboard)

	huma.Register(api, huma.Operation{
		OperationID: "delete-url",
		Method:      http.MethodDelete,
		Path:        "/url/{id}",
		Summary:     "Delete a URL",
		Description: "Owner or administrator only. The cached copy is evicted first.",
		Tags:        []string{"URLs"},
	}, urlHandler.DeleteURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-user-urls",
		Method:      http.MethodGet,
		Path:        "/urls/user/{userId}",
		Summary:     "List the URLs of a user",
		Tags:        []string{"Admin"},
	}, urlHandler.ListUserURLs)

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/user/{id}",
		Summary:     "Delete a user and their URLs",
		Tags:        []string{"Admin"},
	}, urlHandler.DeleteUser)

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Tags:        []string{"Admin"},
	}, sessionHandler.ListUsers)

	huma.Register(api, huma.Operation{
		OperationID: "signin",
		Method:      http.MethodPost,
		Path:        "/signin",
		Summary:     "Sign in with Google",
		Tags:        []string{"Session"},
		Metadata:    ratelimit.Scoped(ratelimit.ScopeAuth),
	}, sessionHandler.SignIn)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodGet,
		Path:        "/logout",
		Summary:     "Sign out",
		Tags:        []string{"Session"},
	}, sessionHandler.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "current-user",
		Method:      http.MethodGet,
		Path:        "/user/me",
		Summary:     "Current user",
		Tags:        []string{"Session"},
	}, sessionHandler.Me)

	// Registered last so the static routes above are matched first.
	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{shortCode}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
		Metadata:    ratelimit.Limited(ratelimit.LimitConfig{Window: time.Minute, Max: 1000}),
	}, urlHandler.RedirectToURL)
}
