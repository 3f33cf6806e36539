// Package identity resolves the owner of an HTTP request. The owner is
// stored in the request context by mw.RequireOwner and read back by handlers.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthenticated means no owner could be resolved from the request.
var ErrUnauthenticated = errors.New("unauthenticated")

// Provider resolves the owner id of a request.
type Provider interface {
	Owner(r *http.Request) (string, error)
}

// HeaderProvider trusts a header set by an authenticating reverse proxy
// (oauth2-proxy, Authelia, ...). Only safe when the server is unreachable
// except through that proxy.
type HeaderProvider struct {
	Header string
}

// DefaultHeader is the header oauth2-proxy sets for the authenticated user.
const DefaultHeader = "X-Auth-Request-User"

func NewHeaderProvider(header string) *HeaderProvider {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderProvider{Header: header}
}

func (p *HeaderProvider) Owner(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get(p.Header))
	if owner == "" {
		return "", ErrUnauthenticated
	}
	return owner, nil
}

type ctxKey struct{}

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

// OwnerFrom returns the owner stored by WithOwner, "" when absent.
func OwnerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ctxKey{}).(string)
	return owner
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
