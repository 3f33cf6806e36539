package mw

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/api"
	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// RequireOwner resolves the request owner through p and stores it in the
// request context. Requests without an owner get 401.
func RequireOwner(p identity.Provider, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := p.Owner(r)
			if err != nil {
				if !errors.Is(err, identity.ErrUnauthenticated) {
					log.Warn("identity lookup failed", logger.Error(err))
				} else {
					log.Debug("RequireOwner: no owner", logger.Error(err))
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="shelf"`)
				writeError(w, http.StatusUnauthorized, "authentication required", api.CodeUnauthorized)
				return
			}
			publishOwner(r.Context(), owner)
			next.ServeHTTP(w, r.WithContext(identity.WithOwner(r.Context(), owner)))
		})
	}
}

type ownerSinkKey struct{}

// withOwnerSink lets an outer middleware (Log) learn the owner resolved by
// RequireOwner further down the chain.
func withOwnerSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, ownerSinkKey{}, sink)
}

func publishOwner(ctx context.Context, owner string) {
	if sink, ok := ctx.Value(ownerSinkKey{}).(*string); ok {
		*sink = owner
	}
}
