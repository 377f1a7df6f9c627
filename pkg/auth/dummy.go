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
	"log/slog"
)

// DummyProvider always authenticates a fixed, privileged principal,
// including when no credential was supplied at all.
//
// It exists solely for local development. Selection is explicit through
// configuration and the factory refuses to construct it in a production
// environment, so it can never be silently active where it matters.
type DummyProvider struct {
	principal *Principal
}

// NewDummyProvider creates a DummyProvider.
func NewDummyProvider() *DummyProvider {
	return &DummyProvider{
		principal: &Principal{
			ID:     "anonymous",
			Name:   "Anonymous User",
			Email:  "anonymous@example.com",
			Roles:  []string{"any", "authenticated", "admin"},
			Tenant: "default",
			Attributes: map[string]any{
				"given_name":  "Anonymous",
				"family_name": "User",
			},
		},
	}
}

// Name returns the provider discriminant.
func (p *DummyProvider) Name() string { return "dummy" }

// Authenticate returns the fixed privileged principal regardless of the
// credential. If a parseable JWT was supplied anyway, its claims are
// surfaced instead so that locally minted tokens behave the same way
// they would against the jwt provider.
func (p *DummyProvider) Authenticate(ctx context.Context, cred Credential) (*Principal, error) {
	if cred.Scheme == SchemeBearer && cred.Payload != "" && cred.Payload != "dummy" {
		if principal := principalFromUnverifiedToken(cred.Payload); principal != nil {
			slog.Debug("dummy provider: using supplied token claims", "subject", principal.ID)
			return principal, nil
		}
	}
	slog.Debug("dummy provider: returning privileged principal")
	return p.principal, nil
}

// Authorize always returns true.
func (p *DummyProvider) Authorize(ctx context.Context, principal *Principal, req *Request) bool {
	return true
}

// ChallengeScheme returns the advertised WWW-Authenticate value.
func (p *DummyProvider) ChallengeScheme() string {
	return `Bearer realm="dummy"`
}

// principalFromUnverifiedToken best-effort decodes a JWT payload into a
// principal. Returns nil when the token does not parse.
func principalFromUnverifiedToken(raw string) *Principal {
	claims, err := decodeTokenClaims(raw)
	if err != nil {
		return nil
	}
	roles := rolesFromClaims(claims)
	if len(roles) == 0 {
		roles = []string{"authenticated", "admin"}
	}
	return &Principal{
		ID:         stringClaim(claims, "sub"),
		Name:       stringClaim(claims, "name"),
		Email:      stringClaim(claims, "email"),
		Roles:      roles,
		Tenant:     stringClaim(claims, "tenant"),
		Attributes: claims,
	}
}
