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

	"github.com/kadirpekel/agentauth/pkg/config"
)

// NewProvider creates the active Provider from configuration.
//
// The provider is constructed exactly once at process start and injected
// into the pipeline; it is never resolved dynamically per request. Any
// error returned here must abort startup.
func NewProvider(ctx context.Context, cfg *config.AuthConfig, environment string) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}

	switch cfg.Provider {
	case config.ProviderDummy:
		// The dummy provider grants a privileged identity to every
		// request. Refusing it here keeps a leftover development
		// configuration from opening a production deployment.
		if environment == config.EnvProduction {
			return nil, fmt.Errorf("%w: dummy provider must not be selected in production",
				ErrProviderMisconfigured)
		}
		return NewDummyProvider(), nil

	case config.ProviderMock:
		return NewMockProvider(&cfg.Mock, cfg.Multitenancy), nil

	case config.ProviderJWT:
		provider, err := NewJWTProvider(&cfg.JWT)
		if err != nil {
			return nil, fmt.Errorf("failed to create jwt provider: %w", err)
		}
		return provider, nil

	case config.ProviderIAS:
		provider, err := NewIASProvider(ctx, &cfg.IAS)
		if err != nil {
			return nil, fmt.Errorf("failed to create ias provider: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrProviderMisconfigured, cfg.Provider)
	}
}
