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

package config

import "fmt"

// Provider discriminants. Exactly one provider is active per deployment
// and it is selected explicitly; there is no inferred fallback.
const (
	ProviderDummy = "dummy"
	ProviderMock  = "mock"
	ProviderJWT   = "jwt"
	ProviderIAS   = "ias"
)

// AuthConfig selects and configures the active authentication provider.
//
// Example configuration:
//
//	auth:
//	  provider: jwt
//	  public_routes:
//	    - /healthz
//	    - /metrics
//	  jwt:
//	    secret: "${JWT_SECRET}"
//	    issuer: "https://auth.example.com"
//	    audience: "agentauth-api"
//
// The credential is passed in the Authorization header:
//
//	Authorization: Bearer <token>
//	Authorization: Basic <base64(user:pass)>
type AuthConfig struct {
	// Provider selects the active provider.
	// Valid values: "dummy", "mock", "jwt", "ias". Required.
	Provider string `yaml:"provider" jsonschema:"enum=dummy,enum=mock,enum=jwt,enum=ias"`

	// PublicRoutes are path patterns exempt from authentication.
	// A trailing "/*" matches any sub-path. Evaluated in order; first
	// match wins. Unmatched paths are protected.
	PublicRoutes []string `yaml:"public_routes,omitempty"`

	// Multitenancy controls whether tenant identifiers are honored.
	// When false, tenant assignments in the mock directory are dropped.
	Multitenancy bool `yaml:"multitenancy,omitempty"`

	// JWT configures the jwt provider.
	JWT JWTConfig `yaml:"jwt,omitempty"`

	// IAS configures the ias provider.
	IAS IASConfig `yaml:"ias,omitempty"`

	// Mock configures the mock provider.
	Mock MockConfig `yaml:"mock,omitempty"`
}

// JWTConfig configures the self-validating JWT provider.
type JWTConfig struct {
	// Secret is the HS256 signing secret. When set, token signatures
	// are verified.
	Secret string `yaml:"secret,omitempty"`

	// AllowUnverified permits running without signature verification.
	// Only acceptable behind a trusted edge that already verified the
	// token. Construction fails when neither Secret nor this flag is
	// set.
	AllowUnverified bool `yaml:"allow_unverified,omitempty"`

	// Issuer is the expected iss claim. Optional; checked when set.
	Issuer string `yaml:"issuer,omitempty"`

	// Audience is the expected aud claim. Optional; checked when set.
	Audience string `yaml:"audience,omitempty"`
}

// IASConfig configures the federated identity-service provider.
// All three fields are required when the ias provider is selected;
// missing credentials abort startup rather than degrade to an open mode.
type IASConfig struct {
	// ClientID is the application's own client id at the identity
	// service.
	ClientID string `yaml:"client_id,omitempty"`

	// ClientSecret is the application's client secret.
	ClientSecret string `yaml:"client_secret,omitempty"`

	// IssuerURL is the identity service base URL used for discovery
	// and token verification.
	IssuerURL string `yaml:"issuer_url,omitempty"`
}

// Validate checks the IASConfig for errors.
func (c *IASConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("ias.client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("ias.client_secret is required")
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("ias.issuer_url is required")
	}
	return nil
}

// MockConfig configures the static-directory mock provider.
//
// User entries accept several shorthands preserved for compatibility
// with existing deployments:
//
//	users:
//	  alice: secret            # string value is shorthand for password
//	  bob:
//	    password: bob
//	    roles: [authenticated-user]
//	  carol: true              # boolean entries are placeholders, skipped
//	  "*": {}                  # wildcard, matches any supplied username
type MockConfig struct {
	// Users maps usernames to user entries. Entry values may be a
	// mapping, a bare password string, or a boolean placeholder.
	Users map[string]any `yaml:"users,omitempty"`

	// Tenants maps tenant ids to tenant settings, merged onto users
	// of that tenant.
	Tenants map[string]TenantConfig `yaml:"tenants,omitempty"`
}

// TenantConfig holds per-tenant settings for the mock directory.
type TenantConfig struct {
	// Features enabled for users of this tenant.
	Features []string `yaml:"features,omitempty"`
}

// SetDefaults applies default values to AuthConfig.
func (c *AuthConfig) SetDefaults() {
	if len(c.PublicRoutes) == 0 {
		c.PublicRoutes = []string{"/healthz", "/metrics"}
	}
}

// Validate checks the AuthConfig for errors.
func (c *AuthConfig) Validate() error {
	switch c.Provider {
	case ProviderDummy, ProviderMock, ProviderJWT:
	case ProviderIAS:
		if err := c.IAS.Validate(); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("auth.provider is required (dummy, mock, jwt or ias)")
	default:
		return fmt.Errorf("unknown auth.provider %q (valid: dummy, mock, jwt, ias)", c.Provider)
	}
	if c.Provider == ProviderJWT && c.JWT.Secret == "" && !c.JWT.AllowUnverified {
		return fmt.Errorf("auth.jwt.secret is required unless auth.jwt.allow_unverified is set")
	}
	return nil
}
