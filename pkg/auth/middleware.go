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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Auth decision outcomes, recorded per request.
const (
	OutcomePublic          = "public"
	OutcomeMissing         = "missing_credential"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeSuccess         = "success"
)

// MetricsRecorder receives auth decision outcomes.
type MetricsRecorder interface {
	RecordAuthDecision(provider, outcome string)
}

type middlewareOptions struct {
	metrics MetricsRecorder
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareOptions)

// WithMetrics wires a metrics recorder into the pipeline.
func WithMetrics(m MetricsRecorder) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.metrics = m
	}
}

// Middleware creates an HTTP middleware running the full auth pipeline:
// classify, extract, authenticate, authorize, attach.
//
// Public routes continue without invoking the provider, regardless of
// any Authorization header. Protected routes reject with 401 (carrying
// the provider's WWW-Authenticate challenge) when no principal could be
// established, and with 403 (no challenge) when an authenticated
// principal fails authorization. Provider errors never escape the
// pipeline; internal detail goes to the log, the response body stays
// generic.
//
// The authenticated principal is stored in the request context and
// retrieved with PrincipalFromContext.
func Middleware(provider Provider, policy *Policy, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	options := &middlewareOptions{}
	for _, opt := range opts {
		opt(options)
	}
	tracer := otel.Tracer("github.com/kadirpekel/agentauth/pkg/auth")

	record := func(outcome string) {
		if options.metrics != nil {
			options.metrics.RecordAuthDecision(provider.Name(), outcome)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, matched := policy.Match(r.Method, r.URL.Path)
			if matched && rule.Public {
				record(OutcomePublic)
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracer.Start(r.Context(), "auth.decision")
			defer span.End()
			span.SetAttributes(attribute.String("auth.provider", provider.Name()))

			// The possibly-absent credential goes to the provider as-is:
			// most providers answer absence with ErrMissingCredential,
			// but the dummy provider authenticates header-less requests.
			cred := ExtractCredential(r.Header.Get("Authorization"))
			principal, err := provider.Authenticate(ctx, cred)
			if errors.Is(err, ErrMissingCredential) {
				slog.Debug("auth: no credential", "method", r.Method, "path", r.URL.Path)
				record(OutcomeMissing)
				span.SetAttributes(attribute.String("auth.outcome", OutcomeMissing))
				writeUnauthorized(w, provider.ChallengeScheme(), "Authentication required")
				return
			}
			if err != nil || principal == nil {
				slog.Warn("auth: authentication failed",
					"method", r.Method, "path", r.URL.Path,
					"credential", cred.String(), "reason", err)
				record(OutcomeUnauthenticated)
				span.SetAttributes(attribute.String("auth.outcome", OutcomeUnauthenticated))
				writeUnauthorized(w, provider.ChallengeScheme(), "Invalid credentials")
				return
			}

			req := RequestFromHTTP(r)
			if !provider.Authorize(ctx, principal, req) ||
				(matched && rule.Predicate != nil && !rule.Predicate(principal)) {
				slog.Warn("auth: principal not authorized",
					"subject", principal.ID, "method", r.Method, "path", r.URL.Path)
				record(OutcomeForbidden)
				span.SetAttributes(attribute.String("auth.outcome", OutcomeForbidden))
				writeForbidden(w, "Access denied")
				return
			}

			slog.Debug("auth: principal attached", "subject", principal.ID, "tenant", principal.Tenant)
			record(OutcomeSuccess)
			span.SetAttributes(attribute.String("auth.outcome", OutcomeSuccess))
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, principal)))
		})
	}
}

// RequireRole creates a middleware that requires the principal to hold
// any of the given roles. Must run after Middleware in the chain.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				writeUnauthorized(w, "", "Authentication required")
				return
			}
			if !principal.HasAnyRole(roles...) {
				writeForbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant creates a middleware that requires the principal to
// belong to one of the given tenants. Must run after Middleware in the
// chain.
func RequireTenant(tenants ...string) func(http.Handler) http.Handler {
	tenantSet := make(map[string]bool, len(tenants))
	for _, t := range tenants {
		tenantSet[t] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				writeUnauthorized(w, "", "Authentication required")
				return
			}
			if !tenantSet[principal.Tenant] {
				writeForbidden(w, "Access denied for this tenant")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeUnauthorized writes a 401 response. The challenge, when present,
// goes into WWW-Authenticate; 401 means "unknown/unauthenticated".
func writeUnauthorized(w http.ResponseWriter, challenge, message string) {
	if challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	writeAuthError(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized", Message: message})
}

// writeForbidden writes a 403 response. No challenge header: 403 means
// "known but forbidden".
func writeForbidden(w http.ResponseWriter, message string) {
	writeAuthError(w, http.StatusForbidden, errorBody{Error: "Forbidden", Message: message})
}

func writeAuthError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
