package health

import (
	"context"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sandyurl/shortener/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	Healthy   = "healthy"
	Unhealthy = "unhealthy"
	Disabled  = "disabled"
)

const pingTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler handles health check operations.
type Handler struct {
	redis    Checker
	postgres Checker
}

// NewHandler creates a new health handler. A nil checker reports its
// dependency as disabled.
func NewHandler(redis, postgres Checker) *Handler {
	return &Handler{redis: redis, postgres: postgres}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status   string `json:"status"`
		Redis    string `json:"redis"`
		Postgres string `json:"postgres"`
	}
}

// Check pings every configured dependency concurrently.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp := &Response{}
	resp.Body.Status = StatusOK

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	check := func(c Checker, out *string) {
		if c == nil {
			*out = Disabled

			return
		}

		g.Go(func() error {
			state := Healthy
			if err := c.Ping(ctx); err != nil {
				state = Unhealthy
			}

			mu.Lock()
			defer mu.Unlock()

			*out = state
			if state == Unhealthy {
				resp.Body.Status = StatusDegraded
			}

			return nil
		})
	}

	check(h.redis, &resp.Body.Redis)
	check(h.postgres, &resp.Body.Postgres)

	_ = g.Wait()

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Report dependency health",
		Tags:        []string{"Health"},
		Metadata:    ratelimit.Unlimited(),
	}, h.Check)
}
