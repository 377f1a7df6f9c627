package auth

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func unaryInvoke(t *testing.T, provider Provider, policy *Policy, ctx context.Context, method string) (*Principal, error) {
	t.Helper()
	interceptor := UnaryServerInterceptor(provider, policy)
	var seen *Principal
	_, err := interceptor(ctx, nil,
		&grpc.UnaryServerInfo{FullMethod: method},
		func(ctx context.Context, req any) (any, error) {
			seen = PrincipalFromContext(ctx)
			return nil, nil
		})
	return seen, err
}

func TestUnaryInterceptorPublicMethod(t *testing.T) {
	spy := &spyProvider{}
	policy := NewPolicy(PublicRoutes("/grpc.health.v1.Health/*")...)

	_, err := unaryInvoke(t, spy, policy, context.Background(), "/grpc.health.v1.Health/Check")
	if err != nil {
		t.Fatalf("public method rejected: %v", err)
	}
	if spy.authenticateCalls != 0 {
		t.Errorf("provider invoked on public method")
	}
}

func TestUnaryInterceptorMissingCredential(t *testing.T) {
	spy := &spyProvider{}
	policy := NewPolicy()

	_, err := unaryInvoke(t, spy, policy, context.Background(), "/agentauth.v1.Agents/List")
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", status.Code(err))
	}
}

func TestUnaryInterceptorDummyProviderWithoutCredential(t *testing.T) {
	policy := NewPolicy()

	seen, err := unaryInvoke(t, NewDummyProvider(), policy, context.Background(),
		"/agentauth.v1.Agents/List")
	if err != nil {
		t.Fatalf("dummy without metadata rejected: %v", err)
	}
	if seen == nil || seen.ID != "anonymous" {
		t.Fatalf("principal = %+v, want anonymous", seen)
	}
}

func TestUnaryInterceptorInvalidCredential(t *testing.T) {
	spy := &spyProvider{err: ErrInvalidCredential}
	policy := NewPolicy()

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer bad"))
	_, err := unaryInvoke(t, spy, policy, ctx, "/agentauth.v1.Agents/List")
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", status.Code(err))
	}
}

func TestUnaryInterceptorForbidden(t *testing.T) {
	spy := &spyProvider{principal: &Principal{ID: "alice"}, authorize: false}
	policy := NewPolicy()

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer token"))
	_, err := unaryInvoke(t, spy, policy, ctx, "/agentauth.v1.Agents/List")
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("code = %v, want PermissionDenied", status.Code(err))
	}
}

func TestUnaryInterceptorAttachesPrincipal(t *testing.T) {
	spy := &spyProvider{principal: &Principal{ID: "alice"}, authorize: true}
	policy := NewPolicy()

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer token"))
	seen, err := unaryInvoke(t, spy, policy, ctx, "/agentauth.v1.Agents/List")
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen == nil || seen.ID != "alice" {
		t.Fatalf("principal = %+v, want alice", seen)
	}
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeServerStream) Context() context.Context { return s.ctx }

func TestStreamInterceptor(t *testing.T) {
	spy := &spyProvider{principal: &Principal{ID: "alice"}, authorize: true}
	policy := NewPolicy()
	interceptor := StreamServerInterceptor(spy, policy)

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer token"))

	var seen *Principal
	err := interceptor(nil, &fakeServerStream{ctx: ctx},
		&grpc.StreamServerInfo{FullMethod: "/agentauth.v1.Agents/Watch"},
		func(srv any, stream grpc.ServerStream) error {
			seen = PrincipalFromContext(stream.Context())
			return nil
		})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if seen == nil || seen.ID != "alice" {
		t.Fatalf("principal = %+v, want alice", seen)
	}

	// Unauthenticated stream is rejected before the handler runs.
	err = interceptor(nil, &fakeServerStream{ctx: context.Background()},
		&grpc.StreamServerInfo{FullMethod: "/agentauth.v1.Agents/Watch"},
		func(srv any, stream grpc.ServerStream) error {
			t.Fatal("handler must not run")
			return nil
		})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", status.Code(err))
	}
}
