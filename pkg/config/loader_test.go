package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAML(t *testing.T) {
	cfg, err := Load([]byte(`
environment: production
server:
  port: 9090
  grpc_port: 9091
  shutdown_timeout: 5s
auth:
  provider: jwt
  public_routes:
    - /healthz
    - /docs/*
  jwt:
    secret: super-secret
    issuer: https://auth.example.com
    audience: my-app
logger:
  level: debug
  format: verbose
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != EnvProduction {
		t.Errorf("environment = %q, want production", cfg.Environment)
	}
	if cfg.Server.Port != 9090 || cfg.Server.GRPCPort != 9091 {
		t.Errorf("ports = %d/%d, want 9090/9091", cfg.Server.Port, cfg.Server.GRPCPort)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown_timeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Auth.Provider != ProviderJWT {
		t.Errorf("provider = %q, want jwt", cfg.Auth.Provider)
	}
	if cfg.Auth.JWT.Secret != "super-secret" {
		t.Errorf("jwt.secret = %q", cfg.Auth.JWT.Secret)
	}
	if len(cfg.Auth.PublicRoutes) != 2 || cfg.Auth.PublicRoutes[1] != "/docs/*" {
		t.Errorf("public_routes = %v", cfg.Auth.PublicRoutes)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "verbose" {
		t.Errorf("logger = %q/%q", cfg.Logger.Level, cfg.Logger.Format)
	}
}

func TestLoadJSONFallback(t *testing.T) {
	cfg, err := Load([]byte(`{"auth": {"provider": "mock"}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Provider != ProviderMock {
		t.Errorf("provider = %q, want mock", cfg.Auth.Provider)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "from-env")

	cfg, err := Load([]byte(`
auth:
  provider: jwt
  jwt:
    secret: "${TEST_JWT_SECRET}"
    issuer: "${TEST_UNSET_ISSUER:-https://default.example.com}"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWT.Secret != "from-env" {
		t.Errorf("secret = %q, want from-env", cfg.Auth.JWT.Secret)
	}
	if cfg.Auth.JWT.Issuer != "https://default.example.com" {
		t.Errorf("issuer = %q, want default fallback", cfg.Auth.JWT.Issuer)
	}
}

func TestLoadMockUsers(t *testing.T) {
	cfg, err := Load([]byte(`
auth:
  provider: mock
  multitenancy: true
  mock:
    users:
      alice: wonderland
      bob:
        password: builder
        roles: [authenticated-user]
        tenant: t1
      "*": {}
    tenants:
      t1:
        features: [beta]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Auth.Mock.Users) != 3 {
		t.Errorf("users = %v, want 3 entries", cfg.Auth.Mock.Users)
	}
	if _, ok := cfg.Auth.Mock.Users["alice"].(string); !ok {
		t.Errorf("alice entry = %T, want string shorthand preserved", cfg.Auth.Mock.Users["alice"])
	}
	if got := cfg.Auth.Mock.Tenants["t1"].Features; len(got) != 1 || got[0] != "beta" {
		t.Errorf("tenant features = %v, want [beta]", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", ":::: not yaml or json"},
		{"missing provider", "server:\n  port: 8080"},
		{"invalid provider config", "auth:\n  provider: jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  provider: mock\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Auth.Provider != ProviderMock {
		t.Errorf("provider = %q, want mock", cfg.Auth.Provider)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
