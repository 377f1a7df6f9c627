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

// Rule classifies requests matching a path pattern.
//
// Patterns match exactly, tolerate a trailing slash, and support a
// trailing "/*" segment matching any sub-path.
type Rule struct {
	// Methods restricts the rule to specific HTTP methods. Empty
	// matches all methods.
	Methods []string

	// Pattern is the path pattern.
	Pattern string

	// Public marks the route as exempt from authentication. The
	// pipeline continues without invoking the provider at all.
	Public bool

	// Predicate is an optional fine-grained authorization check run on
	// the authenticated principal, beyond "is authenticated". Ignored
	// on public rules.
	Predicate func(*Principal) bool
}

// Policy maps a request's method and path onto a classification.
//
// Rules are evaluated in insertion order and the first match wins.
// Unmatched paths default to protected: forgetting to classify a route
// locks it, never opens it.
type Policy struct {
	rules []Rule
}

// NewPolicy creates a Policy from an ordered rule list.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// PublicRoutes builds public rules from path patterns, the shape the
// configured public-route table arrives in.
func PublicRoutes(patterns ...string) []Rule {
	rules := make([]Rule, 0, len(patterns))
	for _, pattern := range patterns {
		rules = append(rules, Rule{Pattern: pattern, Public: true})
	}
	return rules
}

// Add appends rules to the policy. Not safe for concurrent use with
// Match; policies are assembled at startup.
func (p *Policy) Add(rules ...Rule) *Policy {
	p.rules = append(p.rules, rules...)
	return p
}

// Match returns the first rule matching the method and path. The second
// return value reports whether any rule matched; an unmatched request is
// treated as protected by the caller.
func (p *Policy) Match(method, path string) (Rule, bool) {
	for _, rule := range p.rules {
		if !methodMatches(rule.Methods, method) {
			continue
		}
		if patternMatches(rule.Pattern, path) {
			return rule, true
		}
	}
	return Rule{}, false
}

func methodMatches(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func patternMatches(pattern, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}

	if pattern == path {
		return true
	}

	// Tolerate trailing-slash variants on both sides.
	return strings.TrimSuffix(pattern, "/") == strings.TrimSuffix(path, "/")
}
