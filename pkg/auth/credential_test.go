package auth

import (
	"encoding/base64"
	"testing"
)

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestExtractCredential(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantScheme  Scheme
		wantPayload string
	}{
		{
			name:       "empty header",
			header:     "",
			wantScheme: SchemeNone,
		},
		{
			name:        "bearer token",
			header:      "Bearer abc.def.ghi",
			wantScheme:  SchemeBearer,
			wantPayload: "abc.def.ghi",
		},
		{
			name:        "bearer lowercase scheme",
			header:      "bearer tok",
			wantScheme:  SchemeBearer,
			wantPayload: "tok",
		},
		{
			name:        "basic decodes to user colon pass",
			header:      basicHeader("alice", "secret"),
			wantScheme:  SchemeBasic,
			wantPayload: "alice:secret",
		},
		{
			name:        "basic mixed case scheme",
			header:      "BASIC " + base64.StdEncoding.EncodeToString([]byte("bob:pw")),
			wantScheme:  SchemeBasic,
			wantPayload: "bob:pw",
		},
		{
			name:       "basic with invalid base64 is absent",
			header:     "Basic не-base64!!!",
			wantScheme: SchemeNone,
		},
		{
			name:       "unknown scheme is absent",
			header:     "Digest username=alice",
			wantScheme: SchemeNone,
		},
		{
			name:       "scheme without payload is absent",
			header:     "Bearer",
			wantScheme: SchemeNone,
		},
		{
			name:        "surrounding whitespace tolerated",
			header:      "  Bearer tok  ",
			wantScheme:  SchemeBearer,
			wantPayload: "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := ExtractCredential(tt.header)
			if cred.Scheme != tt.wantScheme {
				t.Fatalf("scheme = %q, want %q", cred.Scheme, tt.wantScheme)
			}
			if cred.Payload != tt.wantPayload {
				t.Errorf("payload = %q, want %q", cred.Payload, tt.wantPayload)
			}
			if cred.Present() != (tt.wantScheme != SchemeNone) {
				t.Errorf("Present() = %v, inconsistent with scheme %q", cred.Present(), cred.Scheme)
			}
		})
	}
}

func TestCredentialBasicAuth(t *testing.T) {
	cred := ExtractCredential(basicHeader("alice", "s3cret:with:colons"))
	user, pass := cred.BasicAuth()
	if user != "alice" {
		t.Errorf("user = %q, want alice", user)
	}
	if pass != "s3cret:with:colons" {
		t.Errorf("pass = %q, want s3cret:with:colons", pass)
	}

	// Password segment is optional.
	cred = Credential{Scheme: SchemeBasic, Payload: "solo"}
	user, pass = cred.BasicAuth()
	if user != "solo" || pass != "" {
		t.Errorf("got (%q, %q), want (solo, empty)", user, pass)
	}
}

func TestCredentialStringRedactsSecrets(t *testing.T) {
	tests := []struct {
		cred Credential
		want string
	}{
		{Credential{Scheme: SchemeBasic, Payload: "alice:secret"}, "Basic alice:***"},
		{Credential{Scheme: SchemeBearer, Payload: "raw-token"}, "Bearer ***"},
		{Credential{}, "<absent>"},
	}
	for _, tt := range tests {
		if got := tt.cred.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
