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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kadirpekel/agentauth/pkg/auth"
	"github.com/kadirpekel/agentauth/pkg/config"
	"github.com/kadirpekel/agentauth/pkg/observability"
	"github.com/kadirpekel/agentauth/pkg/server"
)

// ServeCmd starts the auth server.
type ServeCmd struct {
	// Zero-config options
	Provider string `help:"Auth provider (dummy, mock, jwt, ias). Overrides config."`
	Secret   string `help:"HMAC secret for the jwt provider." env:"AGENTAUTH_JWT_SECRET"`

	// Server options
	Port     int  `help:"HTTP port to listen on." default:"0"`
	GRPCPort int  `name:"grpc-port" help:"gRPC port (0 disables the gRPC listener)." default:"0"`
	Watch    bool `help:"Watch config file for changes."`

	// Observability options
	Trace bool `help:"Emit debug trace spans to stderr."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := c.loadConfig(cli.Config)
	if err != nil {
		return err
	}

	if c.Watch && cli.Config != "" {
		go func() {
			if err := config.Watch(ctx, cli.Config); err != nil && ctx.Err() == nil {
				slog.Error("Config watch error", "error", err)
			}
		}()
	}

	shutdownTracer, err := observability.InitTracer("agentauth", c.Trace, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	metrics := observability.NewMetrics()

	provider, err := auth.NewProvider(ctx, &cfg.Auth, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to create auth provider: %w", err)
	}

	srv := server.New(cfg, provider, server.WithMetrics(metrics))

	fmt.Printf("\n🔐 agentauth server ready!\n")
	fmt.Printf("   Provider:   %s\n", provider.Name())
	fmt.Printf("   Health:     http://%s/healthz\n", cfg.Server.Address())
	fmt.Printf("   Metrics:    http://%s/metrics\n", cfg.Server.Address())
	fmt.Printf("   Who am I:   http://%s/v1/me\n", cfg.Server.Address())
	if cfg.Server.GRPCPort != 0 {
		fmt.Printf("   gRPC:       %s\n", cfg.Server.GRPCAddress())
	}
	fmt.Println()

	return srv.Run(ctx)
}

// loadConfig loads the config file when given, otherwise assembles a
// zero-config default. CLI flags override either source.
func (c *ServeCmd) loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.Auth.Provider = config.ProviderMock
		cfg.SetDefaults()
	}

	if c.Provider != "" {
		cfg.Auth.Provider = c.Provider
	}
	if c.Secret != "" {
		cfg.Auth.JWT.Secret = c.Secret
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.GRPCPort != 0 {
		cfg.Server.GRPCPort = c.GRPCPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
