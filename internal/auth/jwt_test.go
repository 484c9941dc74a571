package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskapi/internal/testutil"
)

const testSecret = "test-secret"

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(NewTokenCodec(testSecret, time.Hour), NewRevocations())
}

func TestSignVerify_RoundTrip(t *testing.T) {
	c := NewTokenCodec(testSecret, 7*24*time.Hour)
	tok, exp, err := c.Sign(42, "alice@example.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if d := time.Until(exp); d < 7*24*time.Hour-time.Minute || d > 7*24*time.Hour {
		t.Fatalf("expiry not ~7d away: %s", d)
	}
	p, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != 42 || p.Email != "alice@example.com" || p.Token != tok {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestSign_TokensAreDistinct(t *testing.T) {
	c := NewTokenCodec(testSecret, time.Hour)
	a, _, _ := c.Sign(1, "a@example.com")
	b, _, _ := c.Sign(1, "a@example.com")
	if a == b {
		t.Fatalf("two logins produced the same token")
	}
}

func TestVerify_Rejects(t *testing.T) {
	c := NewTokenCodec(testSecret, time.Hour)
	cases := map[string]string{
		"wrong secret": testutil.GenerateJWTHS256(t, "other", 1, "a@example.com", time.Hour),
		"expired":      testutil.GenerateJWTHS256(t, testSecret, 1, "a@example.com", -time.Minute),
		"no user id":   testutil.GenerateJWTHS256(t, testSecret, 0, "a@example.com", time.Hour),
		"garbage":      "not.a.jwt",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err=%v want ErrInvalidToken", err)
			}
		})
	}
	if _, err := c.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("empty token err=%v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("got %q %v", tok, err)
	}
	if tok, err := BearerToken("bearer  abc "); err != nil || tok != "abc" {
		t.Fatalf("case-insensitive scheme: got %q %v", tok, err)
	}
	for h, want := range map[string]string{
		"":          MsgTokenRequired,
		"Bearer":    MsgTokenRequired,
		"Bearer   ": MsgTokenRequired,
		"Basic abc": MsgInvalidToken,
	} {
		_, err := BearerToken(h)
		if err == nil {
			t.Fatalf("expected error for %q", h)
		}
		if got := FailureMessage(err); got != want {
			t.Fatalf("%q: message=%q want %q", h, got, want)
		}
	}
}

func TestParseFromMD_ValidBearer(t *testing.T) {
	a := newTestAuthenticator()
	tok := testutil.GenerateJWTHS256(t, testSecret, 7, "alice@example.com", time.Hour)
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	p, err := ParseFromMD(ctx, a)
	if err != nil {
		t.Fatalf("ParseFromMD: %v", err)
	}
	if p.UserID != 7 || p.Email != "alice@example.com" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromMD_MissingHeader(t *testing.T) {
	if _, err := ParseFromMD(context.Background(), newTestAuthenticator()); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err=%v want ErrMissingToken", err)
	}
}

func TestRevocation_RejectsUntilRestart(t *testing.T) {
	a := newTestAuthenticator()
	tok, _, err := a.Codec.Sign(3, "c@example.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := a.Revoke(tok); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := a.Authenticate(tok); !errors.Is(err, ErrRevoked) {
		t.Fatalf("revoked token accepted: %v", err)
	}
	if _, err := a.Revoke(tok); !errors.Is(err, ErrRevoked) {
		t.Fatalf("second revoke err=%v want ErrRevoked", err)
	}

	// A fresh process starts with an empty set and accepts the token again.
	restarted := NewAuthenticator(a.Codec, NewRevocations())
	if _, err := restarted.Authenticate(tok); err != nil {
		t.Fatalf("restarted process should accept token: %v", err)
	}
}
