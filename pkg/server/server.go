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

// Package server hosts the authentication engine behind HTTP and gRPC
// listeners.
//
// The server is one adapter among potentially many: every transport
// shares the provider and policy it is constructed with, and the
// decision logic lives entirely in pkg/auth.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kadirpekel/agentauth/pkg/auth"
	"github.com/kadirpekel/agentauth/pkg/config"
	"github.com/kadirpekel/agentauth/pkg/observability"
)

// Server hosts the auth engine.
type Server struct {
	cfg      *config.Config
	provider auth.Provider
	policy   *auth.Policy
	metrics  *observability.Metrics
}

// Option configures the server.
type Option func(*Server)

// WithMetrics sets the metrics collectors. A fresh set is created when
// not provided.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithPolicy replaces the default route policy.
func WithPolicy(p *auth.Policy) Option {
	return func(s *Server) {
		s.policy = p
	}
}

// New creates a server around an already-constructed provider. The
// provider is injected once; the server never re-resolves it.
func New(cfg *config.Config, provider auth.Provider, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		provider: provider,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}
	if s.policy == nil {
		s.policy = defaultPolicy(&cfg.Auth)
	}
	return s
}

// defaultPolicy builds the route policy: the configured public-route
// table first, then the built-in rules. First match wins; anything
// unmatched stays protected.
func defaultPolicy(cfg *config.AuthConfig) *auth.Policy {
	policy := auth.NewPolicy(auth.PublicRoutes(cfg.PublicRoutes...)...)
	policy.Add(auth.Rule{
		Pattern: "/v1/agents/*",
		Predicate: func(p *auth.Principal) bool {
			return p.HasAnyRole("admin", "system-user")
		},
	})
	return policy
}

// Handler builds the HTTP handler stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(logRequests)
	r.Use(s.metrics.HTTPMiddleware)
	r.Use(auth.Middleware(s.provider, s.policy, auth.WithMetrics(s.metrics)))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/v1/me", s.handleMe)
	r.Get("/v1/agents", s.handleAgents)

	return r
}

// Run starts the listeners and blocks until ctx is cancelled or a
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("HTTP server listening",
			"address", httpServer.Addr, "provider", s.provider.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		slog.Info("Shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})

	if s.cfg.Server.GRPCPort != 0 {
		grpcServer := grpc.NewServer(
			grpc.ChainUnaryInterceptor(auth.UnaryServerInterceptor(s.provider, s.policy)),
			grpc.ChainStreamInterceptor(auth.StreamServerInterceptor(s.provider, s.policy)),
		)
		healthpb.RegisterHealthServer(grpcServer, health.NewServer())

		g.Go(func() error {
			listener, err := net.Listen("tcp", s.cfg.Server.GRPCAddress())
			if err != nil {
				return fmt.Errorf("grpc listen: %w", err)
			}
			slog.Info("gRPC server listening", "address", s.cfg.Server.GRPCAddress())
			return grpcServer.Serve(listener)
		})

		g.Go(func() error {
			<-ctx.Done()
			slog.Info("Shutting down gRPC server")
			grpcServer.GracefulStop()
			return nil
		})
	}

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the authenticated principal, the canonical way for
// clients to inspect what the platform derived from their credential.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		// Unreachable on a protected route; guards against a
		// misconfigured policy placing this handler on a public path.
		http.Error(w, "no principal", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, principal)
}

// handleAgents lists the agents visible to the principal's tenant.
// A placeholder downstream surface demonstrating tenant-scoped access.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Error(w, "no principal", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant": principal.Tenant,
		"agents": []string{},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-Id"),
			"duration", time.Since(start))
	})
}

// requestID assigns a correlation id to each request unless the caller
// supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-Id", id)
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}
