package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope names a group of operations that share the policy's limits.
type Scope string

const (
	// ScopeGlobal is counted for every limited request.
	ScopeGlobal Scope = "global"
	// ScopeRead covers lookups such as verifying a short code.
	ScopeRead Scope = "read"
	// ScopeWrite covers everything that changes records or users.
	ScopeWrite Scope = "write"
	// ScopeAuth covers sign-in, kept tight against credential stuffing.
	ScopeAuth Scope = "auth"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig tunes rate limiting for one operation.
//
// Non-empty Limits replace the policy for the operation and are counted per
// route template, so every short code behind /{shortCode} shares one counter
// per client. Otherwise Scope, or the HTTP method when Scope is empty, selects
// the policy limits.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// Scoped is operation metadata counting the operation against scope.
func Scoped(scope Scope) map[string]any {
	return map[string]any{MetadataKey: EndpointConfig{Scope: scope}}
}

// Limited is operation metadata giving the operation its own limits.
func Limited(limits ...LimitConfig) map[string]any {
	return map[string]any{MetadataKey: EndpointConfig{Limits: limits}}
}

// Unlimited is operation metadata exempting the operation.
func Unlimited() map[string]any {
	return map[string]any{MetadataKey: EndpointConfig{Disabled: true}}
}

// EndpointConfigOf returns the config attached to op, or nil.
func EndpointConfigOf(op *huma.Operation) *EndpointConfig {
	if op == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}

// MethodScope maps safe methods to ScopeRead and the rest to ScopeWrite.
func MethodScope(method string) Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ScopeRead
	default:
		return ScopeWrite
	}
}

// ScopeResolver determines which scopes apply to a request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// OperationScopeResolver uses the operation's configured Scope and falls back
// to MethodScope. ScopeGlobal always applies.
type OperationScopeResolver struct{}

// NewOperationScopeResolver creates an operation-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := EndpointConfigOf(ctx.Operation()); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return []Scope{ScopeGlobal, MethodScope(ctx.Method())}
}
