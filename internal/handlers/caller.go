package handlers

import (
	"context"

	"github.com/sandyurl/shortener/internal/identity"
	"go.uber.org/zap"
)

// Authenticator resolves the session token of a request into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
}

type caller struct {
	auth   Authenticator
	logger *zap.Logger
}

// optional treats a bad session as anonymous.
func (c caller) optional(ctx context.Context, token string) identity.Identity {
	id, err := c.auth.Authenticate(ctx, token)
	if err != nil {
		c.logger.Debug("ignoring invalid session", zap.Error(err))

		return identity.Anonymous
	}

	return id
}

// required rejects a bad session. An absent session yields Anonymous and is left
// for the service to refuse.
func (c caller) required(ctx context.Context, op, token string) (identity.Identity, error) {
	id, err := c.auth.Authenticate(ctx, token)
	if err != nil {
		return identity.Anonymous, toHTTPError(c.logger, op, err)
	}

	return id, nil
}
