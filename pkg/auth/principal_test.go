package auth

import "testing"

func TestPrincipalIsAuthenticated(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		want      bool
	}{
		{"nil principal", nil, false},
		{"empty id", &Principal{}, false},
		{"wildcard placeholder id", &Principal{ID: "*"}, false},
		{"real subject", &Principal{ID: "alice"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.principal.IsAuthenticated(); got != tt.want {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrincipalRoles(t *testing.T) {
	p := &Principal{ID: "alice", Roles: []string{"admin", "viewer"}}

	if !p.HasRole("admin") {
		t.Error("expected HasRole(admin) to be true")
	}
	if p.HasRole("editor") {
		t.Error("expected HasRole(editor) to be false")
	}
	if !p.HasAnyRole("editor", "viewer") {
		t.Error("expected HasAnyRole(editor, viewer) to be true")
	}
	if p.HasAnyRole() {
		t.Error("expected HasAnyRole() with no roles to be false")
	}

	var nilP *Principal
	if nilP.HasRole("admin") || nilP.HasAnyRole("admin") {
		t.Error("nil principal must hold no roles")
	}
}

func TestPrincipalAttributes(t *testing.T) {
	p := &Principal{
		ID:         "alice",
		Attributes: map[string]any{"dept": "platform", "level": 3},
	}

	if got := p.StringAttribute("dept"); got != "platform" {
		t.Errorf("StringAttribute(dept) = %q, want platform", got)
	}
	// Non-string attributes stay reachable via Attribute but not
	// StringAttribute.
	if got := p.StringAttribute("level"); got != "" {
		t.Errorf("StringAttribute(level) = %q, want empty", got)
	}
	if _, ok := p.Attribute("level"); !ok {
		t.Error("expected Attribute(level) to exist")
	}
	if _, ok := p.Attribute("missing"); ok {
		t.Error("expected Attribute(missing) to be absent")
	}
}
