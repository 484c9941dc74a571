package auth

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskapi/internal/testutil"
)

func TestUnaryAuthInterceptor(t *testing.T) {
	a := newTestAuthenticator()
	interceptor := NewUnaryAuthInterceptor(a, "/svc/Open")

	// 1) Allowlisted path: no header -> handler executes, no principal
	hCalled := false
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Open"}, func(ctx context.Context, req any) (any, error) {
		hCalled = true
		if _, ok := FromContext(ctx); ok {
			t.Fatalf("expected no principal on allowlisted path")
		}
		return 123, nil
	})
	if err != nil || !hCalled {
		t.Fatalf("allowlisted handler err=%v called=%v", err, hCalled)
	}

	// 2) Authenticated path: with token -> principal injected
	tok := testutil.GenerateJWTHS256(t, testSecret, 9, "bob@example.com", time.Hour)
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		p, err := RequirePrincipal(ctx)
		if err != nil || p.UserID != 9 {
			t.Fatalf("principal not injected: %+v err=%v", p, err)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor auth path: %v", err)
	}

	// 3) Revoked token -> Unauthenticated, handler not called
	a.Revoked.Revoke(tok, time.Now().Add(time.Hour))
	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run for a revoked token")
		return nil, nil
	})
	if st := status.Convert(err); st.Code() != codes.Unauthenticated || st.Message() != MsgInvalidToken {
		t.Fatalf("got %v %q, want Unauthenticated %q", st.Code(), st.Message(), MsgInvalidToken)
	}

	// 4) No metadata at all -> the missing-token message
	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run without a token")
		return nil, nil
	})
	if st := status.Convert(err); st.Message() != MsgTokenRequired {
		t.Fatalf("message=%q want %q", st.Message(), MsgTokenRequired)
	}
}

func TestRequirePrincipal_Missing(t *testing.T) {
	if _, err := RequirePrincipal(context.Background()); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code=%v want Unauthenticated", status.Code(err))
	}
}
