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
	"fmt"
	"time"

	"github.com/kadirpekel/agentauth/pkg/auth"
)

// TokenCmd mints a signed token accepted by the jwt provider, for local
// development and integration tests.
type TokenCmd struct {
	Secret string            `help:"HMAC secret to sign with." env:"AGENTAUTH_JWT_SECRET" default:"test-secret"`
	Sub    string            `help:"Subject claim." default:"test-user"`
	Roles  []string          `help:"Role claims (comma-separated)."`
	TTL    time.Duration     `help:"Token lifetime." default:"1h"`
	Claim  map[string]string `help:"Extra claims (key=value, repeatable)." mapsep:","`
}

func (c *TokenCmd) Run(cli *CLI) error {
	now := time.Now()
	claims := map[string]any{
		"sub": c.Sub,
		"iat": now.Unix(),
		"exp": now.Add(c.TTL).Unix(),
	}
	if len(c.Roles) > 0 {
		claims["roles"] = c.Roles
	}
	for key, value := range c.Claim {
		claims[key] = value
	}

	token, err := auth.CreateTestToken(claims, c.Secret)
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}
	fmt.Println(token)
	return nil
}
