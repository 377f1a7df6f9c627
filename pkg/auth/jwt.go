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
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/kadirpekel/agentauth/pkg/config"
)

// JWTProvider authenticates self-issued JWTs by validating their claims.
//
// When a secret is configured the HS256 signature is verified. Running
// without a secret requires the explicit allow_unverified flag and is
// only acceptable behind a trusted edge that already verified the token;
// the delegated-trust assumption is logged at startup.
type JWTProvider struct {
	secret   string
	issuer   string
	audience string
}

// NewJWTProvider creates a JWTProvider from configuration.
// Construction fails fast when neither a secret nor the explicit
// allow_unverified flag is set.
func NewJWTProvider(cfg *config.JWTConfig) (*JWTProvider, error) {
	if cfg.Secret == "" && !cfg.AllowUnverified {
		return nil, fmt.Errorf("%w: jwt secret is required unless allow_unverified is set",
			ErrProviderMisconfigured)
	}
	if cfg.Secret == "" {
		slog.Warn("jwt provider running WITHOUT signature verification; " +
			"tokens must be verified by a trusted edge upstream")
	}
	return &JWTProvider{
		secret:   cfg.Secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Name returns the provider discriminant.
func (p *JWTProvider) Name() string { return "jwt" }

// Authenticate decodes and validates a token, then maps its claims onto
// a Principal.
//
// Validation order: malformed structure, then expiry, then issuer, then
// audience. All failures surface as a generic invalid credential except
// expiry, which keeps a distinct error for logging; the HTTP response is
// identical either way.
func (p *JWTProvider) Authenticate(ctx context.Context, cred Credential) (*Principal, error) {
	if !cred.Present() {
		return nil, ErrMissingCredential
	}

	var (
		tok jwt.Token
		err error
	)
	if p.secret != "" {
		// Claim validation is done step by step below to keep the
		// rejection order stable; Parse only verifies the signature.
		tok, err = jwt.Parse([]byte(cred.Payload),
			jwt.WithKey(jwa.HS256, []byte(p.secret)), jwt.WithValidate(false))
	} else {
		tok, err = jwt.ParseInsecure([]byte(cred.Payload))
	}
	if err != nil {
		slog.Debug("jwt provider: token rejected", "error", err)
		return nil, ErrInvalidCredential
	}

	if exp := tok.Expiration(); !exp.IsZero() && !time.Now().Before(exp) {
		slog.Debug("jwt provider: token expired", "exp", exp)
		return nil, ErrExpiredCredential
	}
	if p.issuer != "" && tok.Issuer() != p.issuer {
		slog.Debug("jwt provider: issuer mismatch", "iss", tok.Issuer())
		return nil, ErrInvalidCredential
	}
	if p.audience != "" && !containsString(tok.Audience(), p.audience) {
		slog.Debug("jwt provider: audience mismatch", "aud", tok.Audience())
		return nil, ErrInvalidCredential
	}

	claims := claimsMap(tok)

	id := tok.Subject()
	if id == "" {
		id = stringClaim(claims, "email")
	}
	if id == "" {
		id = "unknown"
	}

	roles := rolesFromClaims(claims)
	if len(roles) == 0 {
		roles = []string{"authenticated"}
	}

	name := stringClaim(claims, "name")
	if name == "" {
		name = strings.TrimSpace(stringClaim(claims, "given_name") + " " +
			stringClaim(claims, "family_name"))
	}

	return &Principal{
		ID:          id,
		Name:        name,
		Email:       stringClaim(claims, "email"),
		Roles:       roles,
		Tenant:      stringClaim(claims, "tenant"),
		Attributes:  claims,
		AuthContext: tok,
	}, nil
}

// Authorize requires the "authenticated" role, making this the one
// provider in the set whose authorization is stricter than "any non-nil
// principal".
func (p *JWTProvider) Authorize(ctx context.Context, principal *Principal, req *Request) bool {
	return principal != nil && principal.HasRole("authenticated")
}

// ChallengeScheme returns the advertised WWW-Authenticate value.
func (p *JWTProvider) ChallengeScheme() string {
	return `Bearer realm="jwt"`
}

// CreateTestToken signs a short-lived HS256 token carrying the given
// claims. Intended for tests and the dev CLI; iat/exp default to
// now/now+1h and can be overridden through claims.
func CreateTestToken(claims map[string]any, secret string) (string, error) {
	tok := jwt.New()
	now := time.Now()
	if err := tok.Set(jwt.IssuedAtKey, now); err != nil {
		return "", err
	}
	if err := tok.Set(jwt.ExpirationKey, now.Add(time.Hour)); err != nil {
		return "", err
	}
	for key, value := range claims {
		if err := tok.Set(key, value); err != nil {
			return "", fmt.Errorf("failed to set claim %q: %w", key, err)
		}
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(secret)))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// decodeTokenClaims parses a token without verification and returns its
// claim bag. Used where a best-effort decode is acceptable.
func decodeTokenClaims(raw string) (map[string]any, error) {
	tok, err := jwt.ParseInsecure([]byte(raw))
	if err != nil {
		return nil, err
	}
	return claimsMap(tok), nil
}

// claimsMap flattens a parsed token into a claim bag. The aud claim is
// normalized to a comma-separated string for consistency across
// providers.
func claimsMap(tok jwt.Token) map[string]any {
	ctx := context.Background()
	claims := make(map[string]any)
	for iter := tok.Iterate(ctx); iter.Next(ctx); {
		pair := iter.Pair()
		key, ok := pair.Key.(string)
		if !ok {
			continue
		}
		claims[key] = pair.Value
	}
	if aud := tok.Audience(); len(aud) > 0 {
		claims["aud"] = strings.Join(aud, ",")
	}
	return claims
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
