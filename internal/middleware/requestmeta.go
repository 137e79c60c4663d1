package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sandyurl/shortener/internal/handlers"
	"github.com/sandyurl/shortener/internal/messaging"
)

// RequestMeta adds client IP, user-agent and referrer to the request context,
// and carries the chi request id into published events.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		if id := chimw.GetReqID(newCtx); id != "" {
			newCtx = messaging.ContextWithRequestID(newCtx, id)
		}

		next(huma.WithContext(ctx, newCtx))
	}
}
