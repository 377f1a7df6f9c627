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
	"sync"

	"github.com/kadirpekel/agentauth/pkg/config"
)

// MockProvider authenticates against a static user directory built once
// from configuration. It serves fixed test identities for development
// and integration tests.
//
// Directory entries support the shorthands and deprecated aliases of the
// legacy user configuration format; see config.MockConfig. The
// directory is read-only during steady-state traffic; AddUser exists as
// a test/dev convenience.
type MockProvider struct {
	mu           sync.RWMutex
	users        map[string]*mockUser
	tenants      map[string]config.TenantConfig
	multitenancy bool
}

type mockUser struct {
	ID       string
	Password string
	Roles    []string
	Tenant   string
	Attr     map[string]any
	Features []string
}

// NewMockProvider builds the directory from configuration. When no users
// are configured, a default alice/bob/* directory is installed.
func NewMockProvider(cfg *config.MockConfig, multitenancy bool) *MockProvider {
	p := &MockProvider{
		users:        make(map[string]*mockUser),
		multitenancy: multitenancy,
	}
	if cfg != nil {
		p.tenants = cfg.Tenants
		for key, raw := range cfg.Users {
			p.addEntry(key, raw)
		}
	}
	if len(p.users) == 0 {
		for key, raw := range defaultMockUsers() {
			p.addEntry(key, raw)
		}
	}
	return p
}

// AddUser adds or replaces a directory entry. The entry value accepts the
// same shapes as configuration: a mapping, a bare password string, or a
// boolean placeholder.
func (p *MockProvider) AddUser(key string, entry any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addEntry(key, entry)
}

func (p *MockProvider) addEntry(key string, raw any) {
	switch v := raw.(type) {
	case bool:
		// Placeholder entries carry no identity.
		return
	case string:
		raw = map[string]any{"password": v}
	case map[string]any:
	default:
		slog.Warn("mock provider: ignoring user entry with unsupported shape",
			"user", key, "type", fmt.Sprintf("%T", raw))
		return
	}

	u := normalizeMockUser(raw.(map[string]any))
	if u.ID == "" {
		u.ID = key
	}
	if !p.multitenancy {
		u.Tenant = ""
	}
	if fts := p.tenants[u.Tenant].Features; len(fts) > 0 && len(u.Features) == 0 {
		u.Features = fts
	}
	p.users[u.ID] = u
}

// normalizeMockUser maps a raw config entry onto a directory entry,
// honoring the deprecated aliases of the legacy format: "ID" for "id",
// "userAttributes" for "attr", and the nested "jwt" block whose zid,
// attributes, userInfo and scope(s) fields fold into tenant, attr and
// roles. Scope strings are whitespace-split and each configured audience
// value is stripped as a "<aud>." prefix before becoming a role name.
func normalizeMockUser(entry map[string]any) *mockUser {
	u := &mockUser{
		ID:       stringClaim(entry, "id"),
		Password: stringClaim(entry, "password"),
		Tenant:   stringClaim(entry, "tenant"),
		Roles:    stringSlice(entry["roles"]),
		Features: stringSlice(entry["features"]),
		Attr:     map[string]any{},
	}

	if attr, ok := entry["attr"].(map[string]any); ok {
		mergeAttr(u.Attr, attr)
	}

	if id, ok := entry["ID"].(string); ok && id != "" {
		u.ID = id
		deprecatedField("ID", "id")
	}
	if attr, ok := entry["userAttributes"].(map[string]any); ok {
		mergeAttr(u.Attr, attr)
		deprecatedField("userAttributes", "attr")
	}

	jwt, ok := entry["jwt"].(map[string]any)
	if !ok {
		return u
	}
	if zid := stringClaim(jwt, "zid"); zid != "" {
		u.Tenant = zid
		deprecatedField("jwt.zid", "tenant")
	}
	if attr, ok := jwt["attributes"].(map[string]any); ok {
		mergeAttr(u.Attr, attr)
	}
	if info, ok := jwt["userInfo"].(map[string]any); ok {
		mergeAttr(u.Attr, info)
	}

	scopes := jwt["scope"]
	if scopes == nil {
		scopes = jwt["scopes"]
	}
	if scopes != nil {
		roles := scopeSlice(scopes)
		if aud := stringSlice(jwt["aud"]); len(aud) > 0 {
			for i, role := range roles {
				for _, each := range aud {
					role = strings.Replace(role, each+".", "", 1)
				}
				roles[i] = role
			}
		}
		u.Roles = append(u.Roles, roles...)
	}
	return u
}

func deprecatedField(old, replacement string) {
	slog.Warn(fmt.Sprintf(
		"usage of %q in user configurations is deprecated, use %q instead",
		old, replacement))
}

func mergeAttr(dst map[string]any, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

// Name returns the provider discriminant.
func (p *MockProvider) Name() string { return "mock" }

// Authenticate resolves a credential against the directory.
//
// Basic credentials carry "user:pass" and the password is verified.
// Bearer credentials carry the bare username (an optional "mock:" prefix
// is stripped) and skip password verification, mirroring the token-style
// dev flow of the legacy directory format.
func (p *MockProvider) Authenticate(ctx context.Context, cred Credential) (*Principal, error) {
	if !cred.Present() {
		return nil, ErrMissingCredential
	}

	var principal *Principal
	switch cred.Scheme {
	case SchemeBasic:
		username, password := cred.BasicAuth()
		principal = p.Verify(username, password)
	default:
		username := strings.TrimPrefix(cred.Payload, "mock:")
		principal = p.verify(username, "", false)
	}

	if principal == nil {
		// Unknown user and wrong password are indistinguishable here
		// to avoid a user-enumeration side channel.
		return nil, ErrInvalidCredential
	}
	return principal, nil
}

// Verify resolves a username/password pair against the directory.
// Returns nil for an unknown user as well as for a wrong password. When
// the username is unknown but a "*" wildcard entry exists, a bare
// principal carrying only the supplied id is returned.
func (p *MockProvider) Verify(username, password string) *Principal {
	return p.verify(username, password, true)
}

func (p *MockProvider) verify(username, password string, checkPassword bool) *Principal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	u, ok := p.users[username]
	if !ok {
		if username != "" && username != "*" && p.users["*"] != nil {
			return &Principal{ID: username}
		}
		slog.Debug("mock provider: user not found", "user", username)
		return nil
	}
	if checkPassword && u.Password != "" && password != u.Password {
		slog.Debug("mock provider: wrong password", "user", username)
		return nil
	}
	return u.principal()
}

// Authorize returns true for any non-nil principal.
func (p *MockProvider) Authorize(ctx context.Context, principal *Principal, req *Request) bool {
	return principal != nil
}

// ChallengeScheme returns the advertised WWW-Authenticate value.
func (p *MockProvider) ChallengeScheme() string {
	return `Basic realm="Users"`
}

func (u *mockUser) principal() *Principal {
	attrs := make(map[string]any, len(u.Attr)+1)
	mergeAttr(attrs, u.Attr)
	if len(u.Features) > 0 {
		attrs["features"] = u.Features
	}
	return &Principal{
		ID:         u.ID,
		Name:       stringClaim(attrs, "name"),
		Email:      stringClaim(attrs, "email"),
		Roles:      append([]string(nil), u.Roles...),
		Tenant:     u.Tenant,
		Attributes: attrs,
	}
}

// defaultMockUsers is the directory installed when none is configured.
func defaultMockUsers() map[string]any {
	return map[string]any{
		"alice": map[string]any{
			"password": "alice",
			"roles":    []any{"authenticated-user", "admin"},
			"tenant":   "t1",
			"attr": map[string]any{
				"name":    "Alice",
				"email":   "alice@example.com",
				"phone":   "1234567890",
				"address": "123 Main St, Anytown, USA",
			},
		},
		"bob": map[string]any{
			"password": "bob",
			"roles":    []any{"authenticated-user"},
			"tenant":   "t2",
			"attr": map[string]any{
				"name":  "Bob",
				"email": "bob@example.com",
			},
		},
		"*": map[string]any{},
	}
}
