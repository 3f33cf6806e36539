package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCProvider verifies "Authorization: Bearer <id_token>" against an OpenID
// Connect issuer. The owner is the token subject.
type OIDCProvider struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCProvider discovers issuer metadata and keys. clientID is the
// audience expected in tokens.
func NewOIDCProvider(ctx context.Context, issuer, clientID string) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc issuer %s: %w", issuer, err)
	}
	return NewOIDCProviderFromVerifier(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func NewOIDCProviderFromVerifier(v *oidc.IDTokenVerifier) *OIDCProvider {
	return &OIDCProvider{verifier: v}
}

func (p *OIDCProvider) Owner(r *http.Request) (string, error) {
	raw := bearerToken(r)
	if raw == "" {
		return "", ErrUnauthenticated
	}

	token, err := p.verifier.Verify(r.Context(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if token.Subject == "" {
		return "", ErrUnauthenticated
	}
	return token.Subject, nil
}
