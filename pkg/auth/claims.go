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

import "strings"

// stringClaim returns a claim as a string, or "" when absent or not a
// string.
func stringClaim(claims map[string]any, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

// stringSlice coerces a claim value into a string slice. Lists keep
// their string elements; a bare non-empty string becomes a single-element
// slice.
func stringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

// scopeSlice coerces a scope claim into role names. Scope claims arrive
// either as a list or as a single whitespace-delimited string.
func scopeSlice(v any) []string {
	if s, ok := v.(string); ok {
		return strings.Fields(s)
	}
	return stringSlice(v)
}

// rolesFromClaims derives roles from a claim bag: the roles claim when
// present, otherwise the whitespace-split scope claim.
func rolesFromClaims(claims map[string]any) []string {
	if roles := stringSlice(claims["roles"]); len(roles) > 0 {
		return roles
	}
	return scopeSlice(claims["scope"])
}
