package testutil

import (
	"context"
	"net/http"
	"time"

	"channelling/pkg/requestcontext"
)

// WithActor adds an acting user to the request context.
// This simulates what the actor middleware would do for authenticated requests.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// ActorContext returns a background context carrying actor and a fixed time.
// Useful for service tests that don't run the HTTP middleware chain.
func ActorContext(actor string, now time.Time) context.Context {
	ctx := requestcontext.WithActor(context.Background(), actor)
	return requestcontext.WithTime(ctx, now)
}
