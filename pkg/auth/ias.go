// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/kadirpekel/agentauth/pkg/config"
)

// TokenVerifier verifies a bearer token against an external identity
// service and returns the verified claim payload.
//
// The production implementation delegates to the identity service's
// OIDC discovery and key set; tests inject a fake.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (map[string]any, error)
}

// IASProvider delegates token verification to a federated identity
// service (IAS-style) and maps the verified claims onto a Principal.
//
// Construction fails fast when credentials are absent: silently falling
// back to an unauthenticated mode would be a security regression, so a
// misconfigured deployment must not start.
type IASProvider struct {
	clientID string
	verifier TokenVerifier
}

// IASOption configures an IASProvider.
type IASOption func(*IASProvider)

// WithTokenVerifier overrides the verifier. Used by tests and by hosts
// that already hold a verified identity-service session.
func WithTokenVerifier(v TokenVerifier) IASOption {
	return func(p *IASProvider) {
		p.verifier = v
	}
}

// NewIASProvider creates an IASProvider from configuration. Unless a
// verifier is injected, OIDC discovery runs against the configured
// issuer URL; discovery failure is fatal.
func NewIASProvider(ctx context.Context, cfg *config.IASConfig, opts ...IASOption) (*IASProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderMisconfigured, err)
	}

	p := &IASProvider{clientID: cfg.ClientID}
	for _, opt := range opts {
		opt(p)
	}

	if p.verifier == nil {
		provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("%w: identity service discovery against %s failed: %v",
				ErrProviderMisconfigured, cfg.IssuerURL, err)
		}
		p.verifier = &oidcTokenVerifier{
			verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		}
	}

	return p, nil
}

// Name returns the provider discriminant.
func (p *IASProvider) Name() string { return "ias" }

// Authenticate exchanges the bearer token for a verified claim payload
// via the identity service. Verification failures normalize to an
// authentication failure; the underlying error is logged, never
// propagated as a server error.
func (p *IASProvider) Authenticate(ctx context.Context, cred Credential) (*Principal, error) {
	if !cred.Present() {
		return nil, ErrMissingCredential
	}

	claims, err := p.verifier.Verify(ctx, cred.Payload)
	if err != nil {
		slog.Debug("ias provider: token verification failed", "error", err)
		return nil, ErrInvalidCredential
	}

	sub := stringClaim(claims, "sub")
	id := sub
	if id == "" {
		id = "unknown"
	}

	return &Principal{
		ID:          id,
		Name:        stringClaim(claims, "name"),
		Email:       stringClaim(claims, "email"),
		Roles:       p.deriveRoles(claims),
		Tenant:      iasTenant(claims),
		Attributes:  iasAttributes(claims),
		AuthContext: claims,
	}, nil
}

// Authorize returns true for any non-nil principal.
func (p *IASProvider) Authorize(ctx context.Context, principal *Principal, req *Request) bool {
	return principal != nil
}

// ChallengeScheme returns the advertised WWW-Authenticate value.
func (p *IASProvider) ChallengeScheme() string {
	return `Bearer realm="ias"`
}

// deriveRoles maps federation claims onto roles. The order is
// load-bearing for downstream authorization and must not change:
// scope entries first, then ias_apis entries, then the synthetic
// internal-user role when the token was issued to this application's
// own client id, then the synthetic system-user role when the client id
// equals the subject (client-credentials / x509 tokens).
func (p *IASProvider) deriveRoles(claims map[string]any) []string {
	roles := scopeSlice(claims["scope"])
	roles = append(roles, stringSlice(claims["ias_apis"])...)

	clientID := tokenClientID(claims)
	if clientID != "" && clientID == p.clientID {
		roles = append(roles, "internal-user")
	}
	if clientID != "" && clientID == stringClaim(claims, "sub") {
		roles = append(roles, "system-user")
	}
	return roles
}

// tokenClientID resolves the client id claim across the naming variants
// identity services emit.
func tokenClientID(claims map[string]any) string {
	for _, key := range []string{"client_id", "azp", "cid"} {
		if v := stringClaim(claims, key); v != "" {
			return v
		}
	}
	return ""
}

// iasTenant prefers the application tenant id claim over the generic
// zone claim.
func iasTenant(claims map[string]any) string {
	if tid := stringClaim(claims, "app_tid"); tid != "" {
		return tid
	}
	return stringClaim(claims, "zid")
}

// iasAttributes carries the full payload minus the subject, with nil
// values omitted and aud normalized to a comma-separated string.
func iasAttributes(claims map[string]any) map[string]any {
	attrs := make(map[string]any, len(claims))
	for k, v := range claims {
		if k == "sub" || v == nil {
			continue
		}
		if k == "aud" {
			attrs[k] = strings.Join(stringSlice(v), ",")
			continue
		}
		attrs[k] = v
	}
	return attrs
}

// oidcTokenVerifier verifies tokens through OIDC discovery against the
// identity service.
type oidcTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (v *oidcTokenVerifier) Verify(ctx context.Context, rawToken string) (map[string]any, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	return claims, nil
}
