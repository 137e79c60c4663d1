package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/users"
	"go.uber.org/zap"
)

// Error details returned to clients.
const (
	DetailInvalidURL        = "InvalidUrl"
	DetailExhausted         = "CodeGenerationExhausted"
	DetailNotFound          = "NotFound"
	DetailForbidden         = "Forbidden"
	DetailSelfDeletion      = "SelfDeletion"
	DetailUnauthenticated   = "Unauthenticated"
	DetailInvalidCredential = "InvalidCredential"
	DetailInternal          = "InternalError"
)

// toHTTPError maps a domain error to its HTTP status. Unknown errors are logged
// and reported as a generic server error.
func toHTTPError(logger *zap.Logger, op string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest(DetailInvalidURL)
	case errors.Is(err, shortener.ErrCodeGenerationExhausted):
		logger.Warn("code generation exhausted", zap.String("operation", op), zap.Error(err))

		return huma.Error500InternalServerError(DetailExhausted)
	case errors.Is(err, shortener.ErrNotFound), errors.Is(err, users.ErrNotFound):
		return huma.Error404NotFound(DetailNotFound)
	case errors.Is(err, shortener.ErrSelfDeletion):
		return huma.Error400BadRequest(DetailSelfDeletion)
	case errors.Is(err, shortener.ErrForbidden):
		return huma.Error403Forbidden(DetailForbidden)
	case errors.Is(err, shortener.ErrUnauthenticated):
		return huma.Error401Unauthorized(DetailUnauthenticated)
	case errors.Is(err, users.ErrInvalidCredential):
		return huma.Error401Unauthorized(DetailInvalidCredential)
	default:
		logger.Error("request failed", zap.String("operation", op), zap.Error(err))

		return huma.Error500InternalServerError(DetailInternal)
	}
}
