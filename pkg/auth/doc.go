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

// Package auth provides the provider-based authentication and
// authorization engine.
//
// # Architecture
//
// The engine is layered so that every transport shares one decision path:
//
//  1. Policy classifies the route (public vs protected, optional predicate)
//  2. ExtractCredential pulls the Basic/Bearer credential from the header
//  3. The active Provider authenticates the credential into a Principal
//  4. The Provider (and any route predicate) authorizes the Principal
//  5. The Principal is attached to the request context
//
// Rejections are structured: 401 with a WWW-Authenticate challenge when
// the request could not be authenticated, 403 without a challenge when an
// authenticated principal is not allowed.
//
// # Providers
//
// Four providers implement the contract:
//
//   - DummyProvider: fixed privileged identity for local development
//   - MockProvider: static user directory with password verification
//   - JWTProvider: claim validation of self-issued JWTs
//   - IASProvider: verification delegated to a federated identity service
//
// The active provider is selected by configuration, constructed once at
// process start via NewProvider and injected into the middleware. It is
// never looked up dynamically per request.
//
// # Usage
//
// Configure authentication in your agentauth.yaml:
//
//	auth:
//	  provider: jwt
//	  jwt:
//	    secret: "${JWT_SECRET}"
//	    issuer: "https://auth.example.com"
//	    audience: "agentauth-api"
//
// Downstream handlers retrieve the authenticated identity with
// PrincipalFromContext.
package auth
