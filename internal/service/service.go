// Package service holds the user, session and task rules shared by the REST
// and gRPC adapters. Every failure it returns is a *Error.
package service

import (
	"context"
	"errors"
	"sync"

	"taskapi/internal/auth"
	"taskapi/internal/logging"
	"taskapi/repository"
)

// Service implements the resource operations over a repository.Store.
type Service struct {
	users  repository.UserRepositoryI
	tasks  repository.TaskRepositoryI
	hasher auth.PasswordHasher
	authn  *auth.Authenticator
	log    logging.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func New(store *repository.Store, hasher auth.PasswordHasher, authn *auth.Authenticator, log logging.Logger) *Service {
	return &Service{
		users:  store.Users,
		tasks:  store.Tasks,
		hasher: hasher,
		authn:  authn,
		log:    log.With("component", "service"),
	}
}

// internal logs the cause and hides it behind a generic message.
func (s *Service) internal(ctx context.Context, op string, err error) *Error {
	s.log.Error(ctx, "store failure", "op", op, "error", err)
	return &Error{Code: CodeInternal, Message: msgInternal, Err: err}
}

// storeErr translates repository sentinels; anything else is Internal.
func (s *Service) storeErr(ctx context.Context, op string, err error, notFoundMsg string) *Error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Code: CodeAlreadyExists, Message: msgEmailTaken}
	default:
		return s.internal(ctx, op, err)
	}
}

// hashPassword maps hasher failures onto the taxonomy.
func (s *Service) hashPassword(ctx context.Context, op, plain string) (string, error) {
	digest, err := s.hasher.Hash(plain)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", invalid(msgPasswordLong)
	}
	if err != nil {
		return "", s.internal(ctx, op, err)
	}
	return digest, nil
}
