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

import "errors"

// Common authentication errors.
//
// Providers return these for expected failure modes; the pipeline maps
// them to structured rejections and never lets them escape. The HTTP
// response carries only a generic message so that callers cannot
// distinguish an unknown user from a wrong password or an expired token
// from a malformed one.
var (
	// ErrMissingCredential is returned when no usable Authorization
	// header is present.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential is returned when a credential fails to
	// decode, look up or verify.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExpiredCredential is returned when a token's exp claim has
	// elapsed. Responds identically to ErrInvalidCredential; the
	// distinction exists for logging only.
	ErrExpiredCredential = errors.New("expired credential")

	// ErrForbidden is returned when an authenticated principal lacks
	// permission.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrProviderMisconfigured is returned at construction time when a
	// provider's required settings are absent. Fatal at startup, never
	// a per-request failure.
	ErrProviderMisconfigured = errors.New("provider misconfigured")
)
