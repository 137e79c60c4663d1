package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows credentialed requests from the configured frontend origins.
// allowedOrigins must not be empty: rs/cors treats an empty list as "*".
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Cookie"},
		ExposedHeaders:   []string{"Location", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler
}
