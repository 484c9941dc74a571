package auth

import (
	"sync"
	"time"
)

// Revocations is the process-lifetime set of logged-out tokens. It is never
// persisted, so a restart accepts every previously revoked token again until
// it expires on its own. Entries are only ever added.
type Revocations struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> its own expiry
}

func NewRevocations() *Revocations {
	return &Revocations{tokens: make(map[string]time.Time)}
}

// Revoke adds token. It returns false if the token was already revoked.
func (r *Revocations) Revoke(token string, expiresAt time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; ok {
		return false
	}
	r.tokens[token] = expiresAt
	return true
}

func (r *Revocations) Revoked(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tokens[token]
	return ok
}

func (r *Revocations) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Authenticator verifies tokens and consults the revocation set. Both
// transports share one instance per process.
type Authenticator struct {
	Codec   *TokenCodec
	Revoked *Revocations
}

func NewAuthenticator(codec *TokenCodec, revoked *Revocations) *Authenticator {
	return &Authenticator{Codec: codec, Revoked: revoked}
}

// Authenticate returns the caller for a valid, unrevoked token.
func (a *Authenticator) Authenticate(token string) (*Principal, error) {
	p, err := a.Codec.Verify(token)
	if err != nil {
		return nil, err
	}
	if a.Revoked.Revoked(token) {
		return nil, ErrRevoked
	}
	return p, nil
}

// Revoke authenticates token and then adds it to the revocation set.
func (a *Authenticator) Revoke(token string) (*Principal, error) {
	p, err := a.Authenticate(token)
	if err != nil {
		return nil, err
	}
	if !a.Revoked.Revoke(token, p.ExpiresAt) {
		return nil, ErrRevoked
	}
	return p, nil
}
