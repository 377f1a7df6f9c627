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

// Package config defines the configuration surface of the agentauth server.
//
// Configuration is loaded from a YAML file, environment variables are
// expanded (${VAR}, ${VAR:-default}, $VAR) and the result is decoded into
// typed sections. Every section follows the same lifecycle:
// SetDefaults, then Validate.
package config

import "fmt"

// Environment values recognized by the server.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root configuration.
type Config struct {
	// Environment is the deployment environment.
	// Valid values: "development", "production". Default: "development"
	Environment string `yaml:"environment,omitempty"`

	// Server configures the HTTP (and optional gRPC) listeners.
	Server ServerConfig `yaml:"server,omitempty"`

	// Auth configures the active authentication provider.
	Auth AuthConfig `yaml:"auth"`

	// Logger configures logging output.
	Logger LoggerConfig `yaml:"logger,omitempty"`
}

// SetDefaults applies default values to all sections.
func (c *Config) SetDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	c.Server.SetDefaults()
	c.Auth.SetDefaults()
	c.Logger.SetDefaults()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("environment must be %q or %q, got %q",
			EnvDevelopment, EnvProduction, c.Environment)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// IsProduction returns true when the deployment environment is production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
