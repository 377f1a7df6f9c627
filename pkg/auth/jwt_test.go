package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kadirpekel/agentauth/pkg/config"
)

const testSecret = "test-secret"

func newTestJWTProvider(t *testing.T, cfg config.JWTConfig) *JWTProvider {
	t.Helper()
	p, err := NewJWTProvider(&cfg)
	if err != nil {
		t.Fatalf("NewJWTProvider: %v", err)
	}
	return p
}

func bearerCred(t *testing.T, claims map[string]any, secret string) Credential {
	t.Helper()
	token, err := CreateTestToken(claims, secret)
	if err != nil {
		t.Fatalf("CreateTestToken: %v", err)
	}
	return Credential{Scheme: SchemeBearer, Payload: token}
}

func TestNewJWTProviderRequiresSecretOrOptOut(t *testing.T) {
	_, err := NewJWTProvider(&config.JWTConfig{})
	if !errors.Is(err, ErrProviderMisconfigured) {
		t.Fatalf("err = %v, want ErrProviderMisconfigured", err)
	}

	if _, err := NewJWTProvider(&config.JWTConfig{Secret: "s"}); err != nil {
		t.Fatalf("with secret: %v", err)
	}
	if _, err := NewJWTProvider(&config.JWTConfig{AllowUnverified: true}); err != nil {
		t.Fatalf("with allow_unverified: %v", err)
	}
}

func TestJWTProviderAuthenticate(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{Secret: testSecret})
	ctx := context.Background()

	principal, err := p.Authenticate(ctx, bearerCred(t, map[string]any{
		"sub":   "u1",
		"name":  "User One",
		"email": "u1@example.com",
		"roles": []string{"authenticated", "editor"},
	}, testSecret))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.ID != "u1" {
		t.Errorf("id = %q, want u1", principal.ID)
	}
	if principal.Name != "User One" || principal.Email != "u1@example.com" {
		t.Errorf("name/email = %q/%q", principal.Name, principal.Email)
	}
	if !principal.HasRole("editor") {
		t.Errorf("roles = %v, want editor", principal.Roles)
	}
	if principal.AuthContext == nil {
		t.Error("expected decoded token in AuthContext")
	}
}

func TestJWTProviderRejections(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{
		Secret:   testSecret,
		Issuer:   "https://issuer.example.com",
		Audience: "my-app",
	})
	ctx := context.Background()

	valid := map[string]any{
		"sub": "u1",
		"iss": "https://issuer.example.com",
		"aud": []string{"my-app", "other-app"},
	}

	tests := []struct {
		name    string
		cred    func(t *testing.T) Credential
		wantErr error
	}{
		{
			name:    "missing credential",
			cred:    func(t *testing.T) Credential { return Credential{} },
			wantErr: ErrMissingCredential,
		},
		{
			name: "malformed token",
			cred: func(t *testing.T) Credential {
				return Credential{Scheme: SchemeBearer, Payload: "not.a.jwt"}
			},
			wantErr: ErrInvalidCredential,
		},
		{
			name: "wrong signing secret",
			cred: func(t *testing.T) Credential {
				return bearerCred(t, valid, "other-secret")
			},
			wantErr: ErrInvalidCredential,
		},
		{
			name: "expired token",
			cred: func(t *testing.T) Credential {
				claims := map[string]any{
					"sub": "u1",
					"iss": "https://issuer.example.com",
					"aud": []string{"my-app"},
					"exp": time.Now().Add(-time.Second).Unix(),
				}
				return bearerCred(t, claims, testSecret)
			},
			wantErr: ErrExpiredCredential,
		},
		{
			name: "issuer mismatch",
			cred: func(t *testing.T) Credential {
				claims := map[string]any{
					"sub": "u1",
					"iss": "https://evil.example.com",
					"aud": []string{"my-app"},
				}
				return bearerCred(t, claims, testSecret)
			},
			wantErr: ErrInvalidCredential,
		},
		{
			name: "audience mismatch",
			cred: func(t *testing.T) Credential {
				claims := map[string]any{
					"sub": "u1",
					"iss": "https://issuer.example.com",
					"aud": []string{"other-app"},
				}
				return bearerCred(t, claims, testSecret)
			},
			wantErr: ErrInvalidCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Authenticate(ctx, tt.cred(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// The fully valid token still passes under the same provider.
	if _, err := p.Authenticate(ctx, bearerCred(t, valid, testSecret)); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
}

func TestJWTProviderExpiryWindow(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{Secret: testSecret})
	ctx := context.Background()

	claims := map[string]any{
		"sub": "u1",
		"exp": time.Now().Add(3600 * time.Second).Unix(),
	}
	if _, err := p.Authenticate(ctx, bearerCred(t, claims, testSecret)); err != nil {
		t.Fatalf("future expiry rejected: %v", err)
	}

	claims["exp"] = time.Now().Add(-time.Second).Unix()
	if _, err := p.Authenticate(ctx, bearerCred(t, claims, testSecret)); !errors.Is(err, ErrExpiredCredential) {
		t.Fatalf("err = %v, want ErrExpiredCredential", err)
	}
}

func TestJWTProviderRoleFallbacks(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{Secret: testSecret})
	ctx := context.Background()

	// scope substitutes for roles.
	principal, err := p.Authenticate(ctx, bearerCred(t, map[string]any{
		"sub":   "u1",
		"scope": "read write",
	}, testSecret))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !principal.HasRole("read") || !principal.HasRole("write") {
		t.Errorf("roles = %v, want scope-derived read/write", principal.Roles)
	}

	// Neither roles nor scope: the authenticated fallback role.
	principal, err = p.Authenticate(ctx, bearerCred(t, map[string]any{"sub": "u1"}, testSecret))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if len(principal.Roles) != 1 || principal.Roles[0] != "authenticated" {
		t.Errorf("roles = %v, want [authenticated]", principal.Roles)
	}
}

func TestJWTProviderSubjectFallbacks(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{Secret: testSecret})
	ctx := context.Background()

	principal, err := p.Authenticate(ctx, bearerCred(t, map[string]any{
		"email": "only@example.com",
	}, testSecret))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.ID != "only@example.com" {
		t.Errorf("id = %q, want email fallback", principal.ID)
	}

	principal, err = p.Authenticate(ctx, bearerCred(t, map[string]any{"foo": "bar"}, testSecret))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.ID != "unknown" {
		t.Errorf("id = %q, want unknown", principal.ID)
	}
}

func TestJWTProviderNameFromGivenFamily(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{Secret: testSecret})

	principal, err := p.Authenticate(context.Background(), bearerCred(t, map[string]any{
		"sub":         "u1",
		"given_name":  "User",
		"family_name": "One",
	}, testSecret))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.Name != "User One" {
		t.Errorf("name = %q, want User One", principal.Name)
	}
}

func TestJWTProviderUnverifiedMode(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{AllowUnverified: true})

	// Any HS256 signature is accepted without a secret; only claims are
	// validated.
	principal, err := p.Authenticate(context.Background(), bearerCred(t, map[string]any{
		"sub":   "u1",
		"roles": []string{"authenticated"},
	}, "whatever-secret"))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.ID != "u1" {
		t.Errorf("id = %q, want u1", principal.ID)
	}
}

func TestJWTProviderAuthorize(t *testing.T) {
	p := newTestJWTProvider(t, config.JWTConfig{Secret: testSecret})
	ctx := context.Background()
	req := &Request{Method: "GET", Path: "/v1/me"}

	if !p.Authorize(ctx, &Principal{ID: "u1", Roles: []string{"authenticated"}}, req) {
		t.Error("expected authenticated role to authorize")
	}
	if p.Authorize(ctx, &Principal{ID: "u1", Roles: []string{"editor"}}, req) {
		t.Error("expected missing authenticated role to deny")
	}
	if p.Authorize(ctx, nil, req) {
		t.Error("expected nil principal to deny")
	}
}

func TestCreateTestTokenIdempotentClaims(t *testing.T) {
	claims := map[string]any{"sub": "u1", "roles": []string{"a"}}
	if _, err := CreateTestToken(claims, testSecret); err != nil {
		t.Fatalf("CreateTestToken: %v", err)
	}
	if _, err := CreateTestToken(claims, testSecret); err != nil {
		t.Fatalf("second CreateTestToken: %v", err)
	}
	if len(claims) != 2 {
		t.Errorf("claims mutated: %v", claims)
	}
}
