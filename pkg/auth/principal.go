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

// Principal is the identity produced by a provider.
//
// A Principal is constructed once by its provider and treated as
// read-only afterwards. Authorization decisions branch only on Roles and
// Tenant; Attributes is a free-form claim bag that must never be trusted
// for security decisions.
type Principal struct {
	// ID is the stable subject identifier. Non-empty for any
	// authenticated result.
	ID string `json:"id"`

	// Name is a display name. Not used for authorization.
	Name string `json:"name,omitempty"`

	// Email is a display attribute. Not used for authorization.
	Email string `json:"email,omitempty"`

	// Roles the principal holds. Membership-tested only; order is
	// irrelevant.
	Roles []string `json:"roles,omitempty"`

	// Tenant is the multi-tenancy partition. Empty means
	// single-tenant/default.
	Tenant string `json:"tenant,omitempty"`

	// Attributes holds provider-specific claims.
	Attributes map[string]any `json:"attributes,omitempty"`

	// AuthContext is an opaque provider-specific proof artifact (a
	// decoded token, a federation security context) carried for
	// downstream delegation. The pipeline never inspects it.
	AuthContext any `json:"-"`
}

// IsAuthenticated reports whether the principal represents an
// authenticated identity: a non-empty, non-placeholder subject.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.ID != "" && p.ID != "*"
}

// HasRole checks if the principal holds a specific role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the principal holds any of the specified roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// Attribute retrieves an attribute by key.
func (p *Principal) Attribute(key string) (any, bool) {
	if p == nil || p.Attributes == nil {
		return nil, false
	}
	val, ok := p.Attributes[key]
	return val, ok
}

// StringAttribute retrieves an attribute as a string, or "".
func (p *Principal) StringAttribute(key string) string {
	if val, ok := p.Attribute(key); ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
