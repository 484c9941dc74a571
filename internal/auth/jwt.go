package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("token revoked")
)

// Caller-facing messages for failed bearer authentication, shared by both
// transports.
const (
	MsgTokenRequired = "Token is required"
	MsgInvalidToken  = "Invalid or expired token"
)

// FailureMessage maps an authentication error onto its caller-facing message.
func FailureMessage(err error) string {
	if errors.Is(err, ErrMissingToken) {
		return MsgTokenRequired
	}
	return MsgInvalidToken
}

// Principal represents the authenticated caller from JWT.
type Principal struct {
	UserID    int64
	Email     string
	Token     string
	ExpiresAt time.Time
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// Claims is the session token payload.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for the user valid for the codec's TTL. Each token gets
// a random jti so two logins within the same second are distinguishable.
func (c *TokenCodec) Sign(userID int64, email string) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	now := time.Now()
	exp := now.Add(c.ttl)
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Verify validates the signature and expiry and returns the caller.
func (c *TokenCodec) Verify(tokenStr string) (*Principal, error) {
	if len(c.secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	cl, _ := tok.Claims.(*Claims)
	if cl == nil || cl.UserID <= 0 || cl.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: cl.UserID, Email: cl.Email, Token: tokenStr, ExpiresAt: cl.ExpiresAt.Time}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
// A header without a token yields ErrMissingToken; another scheme yields
// ErrInvalidToken.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, tok, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: unsupported authorization scheme", ErrInvalidToken)
	}
	if tok = strings.TrimSpace(tok); tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}

// ParseFromMD extracts a Bearer JWT from gRPC metadata and authenticates it.
func ParseFromMD(ctx context.Context, a *Authenticator) (*Principal, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return nil, ErrMissingToken
	}
	tok, err := BearerToken(vals[0])
	if err != nil {
		return nil, err
	}
	return a.Authenticate(tok)
}
