package auth

import (
	"net/http"
	"testing"
)

func TestPolicyMatch(t *testing.T) {
	policy := NewPolicy(
		Rule{Pattern: "/healthz", Public: true},
		Rule{Pattern: "/public/*", Public: true},
		Rule{Methods: []string{http.MethodGet}, Pattern: "/docs", Public: true},
		Rule{Pattern: "/v1/admin/*"},
	)

	tests := []struct {
		name        string
		method      string
		path        string
		wantMatched bool
		wantPublic  bool
	}{
		{"exact public", "GET", "/healthz", true, true},
		{"trailing slash tolerated", "GET", "/healthz/", true, true},
		{"wildcard base path", "GET", "/public", true, true},
		{"wildcard sub-path", "GET", "/public/assets/app.js", true, true},
		{"wildcard does not match prefix siblings", "GET", "/publicish", false, false},
		{"method-scoped rule matches", "GET", "/docs", true, true},
		{"method-scoped rule mismatched method", "POST", "/docs", false, false},
		{"protected rule matches", "GET", "/v1/admin/users", true, false},
		{"unmatched path stays protected", "GET", "/v1/tasks", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, matched := policy.Match(tt.method, tt.path)
			if matched != tt.wantMatched {
				t.Fatalf("matched = %v, want %v", matched, tt.wantMatched)
			}
			if matched && rule.Public != tt.wantPublic {
				t.Errorf("public = %v, want %v", rule.Public, tt.wantPublic)
			}
		})
	}
}

func TestPolicyFirstMatchWins(t *testing.T) {
	// A broad public rule before a narrow protected one: order decides.
	policy := NewPolicy(
		Rule{Pattern: "/api/*", Public: true},
		Rule{Pattern: "/api/secret"},
	)
	rule, matched := policy.Match("GET", "/api/secret")
	if !matched || !rule.Public {
		t.Fatalf("expected first (public) rule to win, got matched=%v public=%v", matched, rule.Public)
	}

	// Reversed order protects the narrow path.
	policy = NewPolicy(
		Rule{Pattern: "/api/secret"},
		Rule{Pattern: "/api/*", Public: true},
	)
	rule, matched = policy.Match("GET", "/api/secret")
	if !matched || rule.Public {
		t.Fatalf("expected first (protected) rule to win, got matched=%v public=%v", matched, rule.Public)
	}
}

func TestPublicRoutes(t *testing.T) {
	rules := PublicRoutes("/healthz", "/metrics")
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	for _, rule := range rules {
		if !rule.Public {
			t.Errorf("rule %q not public", rule.Pattern)
		}
	}
}
