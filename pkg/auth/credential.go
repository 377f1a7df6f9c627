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
	"encoding/base64"
	"regexp"
	"strings"
)

// Scheme identifies the Authorization scheme a credential arrived with.
type Scheme string

const (
	// SchemeNone means no usable credential was supplied.
	SchemeNone Scheme = ""

	// SchemeBasic is the HTTP Basic scheme.
	SchemeBasic Scheme = "Basic"

	// SchemeBearer is the HTTP Bearer scheme.
	SchemeBearer Scheme = "Bearer"
)

// Credential is a raw credential extracted once per request.
//
// Payload is normalized at this boundary so every provider receives the
// same post-scheme-stripping representation: for Bearer the token body,
// for Basic the base64-decoded "user:pass" plaintext.
type Credential struct {
	Scheme  Scheme
	Payload string
}

var schemePattern = regexp.MustCompile(`(?i)^(basic|bearer)\s+(.+)$`)

// ExtractCredential extracts a credential from an Authorization header
// value. The scheme match is case-insensitive. A missing header, an
// unrecognized scheme or an undecodable Basic digest all yield an absent
// credential; absence is a normal, expected state and never an error.
func ExtractCredential(header string) Credential {
	m := schemePattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return Credential{}
	}

	payload := strings.TrimSpace(m[2])
	switch strings.ToLower(m[1]) {
	case "basic":
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Credential{}
		}
		return Credential{Scheme: SchemeBasic, Payload: string(decoded)}
	default:
		return Credential{Scheme: SchemeBearer, Payload: payload}
	}
}

// Present reports whether a credential was supplied.
func (c Credential) Present() bool {
	return c.Scheme != SchemeNone
}

// BasicAuth splits a Basic credential payload into username and
// password. The password segment is optional.
func (c Credential) BasicAuth() (username, password string) {
	username, password, _ = strings.Cut(c.Payload, ":")
	return username, password
}

// String returns a loggable representation with the secret portion
// redacted. Credentials are never logged in cleartext.
func (c Credential) String() string {
	switch c.Scheme {
	case SchemeBasic:
		user, _ := c.BasicAuth()
		return "Basic " + user + ":***"
	case SchemeBearer:
		return "Bearer ***"
	default:
		return "<absent>"
	}
}
