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
	"net/http"
)

// Request is the framework-agnostic view of an incoming request that the
// engine consumes. Transport adapters build one from their native
// request object.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

// RequestFromHTTP builds a Request from a net/http request.
func RequestFromHTTP(r *http.Request) *Request {
	return &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header,
	}
}

// Provider is a pluggable strategy implementing authentication and
// authorization for one credential format.
//
// Providers are constructed once at process start and must be safe for
// concurrent use. Expected per-request failures (unknown user, wrong
// password, invalid or expired token, verification error) are reported
// as (nil, err) with one of the sentinel errors from this package;
// construction-time misconfiguration is the only fatal condition.
type Provider interface {
	// Name returns the provider's configuration discriminant.
	Name() string

	// Authenticate validates a credential and produces a Principal.
	Authenticate(ctx context.Context, cred Credential) (*Principal, error)

	// Authorize runs a secondary check on an already-authenticated
	// principal. The default policy is "any non-nil principal is
	// authorized"; providers exist so this can diverge without
	// touching the pipeline.
	Authorize(ctx context.Context, p *Principal, req *Request) bool

	// ChallengeScheme returns the WWW-Authenticate value advertised on
	// 401 rejections.
	ChallengeScheme() string
}
