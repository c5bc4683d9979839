package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

const (
	// HeaderUserID carries the caller's user id, set by the upstream gateway
	HeaderUserID = "x-user-id"
	// HeaderUserRole carries the caller's role name
	HeaderUserRole = "x-user-role"
)

type actorKey struct{}

// IdentityMiddleware reads the gateway identity headers into the request
// context. Requests without a user id or with an unknown role proceed
// anonymously; handlers that need identity answer 401.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		role, err := entities.ParseRole(r.Header.Get(HeaderUserRole))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), entities.Actor{UserID: userID, Role: role})))
	})
}

// WithActor stores actor in ctx
func WithActor(ctx context.Context, actor entities.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the identified caller, or the zero Actor
func ActorFromContext(ctx context.Context) entities.Actor {
	actor, _ := ctx.Value(actorKey{}).(entities.Actor)
	return actor
}
