// Package agentauth provides a provider-based authentication and
// authorization engine for multi-tenant agent-serving platforms.
//
// The engine authenticates inbound requests against a single pluggable
// Provider contract and authorizes the resulting Principal against
// per-route policy. The same decision logic is shared by every transport:
// integrations are thin adapters translating their native request objects
// into the engine's Credential/Principal/rejection types.
//
// # Quick Start
//
// Install the server:
//
//	go install github.com/kadirpekel/agentauth/cmd/agentauth@latest
//
// Create a configuration:
//
//	yaml
//	auth:
//	  provider: mock
//	  public_routes:
//	    - /healthz
//	  mock:
//	    users:
//	      alice:
//	        password: alice
//	        roles: [admin]
//
// Start the server:
//
//	agentauth serve --config auth.yaml
//
// # Using as Go Library
//
// Import specific packages:
//
//	import (
//	    "github.com/kadirpekel/agentauth/pkg/auth"
//	    "github.com/kadirpekel/agentauth/pkg/config"
//	    "github.com/kadirpekel/agentauth/pkg/server"
//	)
//
// Construct the active provider once at startup and inject it into the
// middleware; the provider is never re-resolved per request:
//
//	provider, err := auth.NewProvider(ctx, &cfg.Auth, cfg.Environment)
//	handler := auth.Middleware(provider, policy)(mux)
//
// # Providers
//
//   - dummy: fixed privileged identity for local development
//   - mock: static user directory with optional password verification
//   - jwt: self-validated JWT claims mapping
//   - ias: federated verification delegated to an external identity service
//
// # License
//
// Apache-2.0 - See LICENSE for details.
package agentauth
