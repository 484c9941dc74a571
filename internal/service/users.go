package service

import (
	"context"
	"errors"
	"strings"

	"taskapi/internal/auth"
	"taskapi/models"
	"taskapi/repository"
)

// CreateUser registers email with a hashed password.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid(msgCredsRequired)
	}
	if len(password) < minPasswordLength {
		return nil, invalid(msgPasswordShort)
	}
	if _, err := s.users.GetByUsername(ctx, email); err == nil {
		return nil, &Error{Code: CodeAlreadyExists, Message: msgEmailTaken}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.internal(ctx, "create user", err)
	}
	digest, err := s.hashPassword(ctx, "create user", password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, email, digest)
	if err != nil {
		return nil, s.storeErr(ctx, "create user", err, msgUserNotFound)
	}
	return u, nil
}

// Authenticate checks the credentials and issues a session token. Unknown
// emails and wrong passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", invalid(msgCredsRequired)
	}
	u, err := s.users.GetByUsername(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// spend the same bcrypt work as a real comparison
		s.hasher.Verify(password, s.dummy())
		return "", unauthenticated(msgBadCredentials, nil)
	}
	if err != nil {
		return "", s.internal(ctx, "authenticate", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", unauthenticated(msgBadCredentials, nil)
	}
	tok, _, err := s.authn.Codec.Sign(u.ID, u.Username)
	if err != nil {
		return "", s.internal(ctx, "sign token", err)
	}
	return tok, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyDigest
}

// Logout adds token to the process-wide revocation set.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return invalid(auth.MsgTokenRequired)
	}
	if _, err := s.authn.Revoke(token); err != nil {
		return unauthenticated(auth.FailureMessage(err), err)
	}
	return nil
}

// ListUsers returns all users in insertion order.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list users", err)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, invalid(msgInvalidUserID)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(ctx, "get user", err, msgUserNotFound)
	}
	return u, nil
}

// UpdateUser replaces the password, the only mutable user field.
func (s *Service) UpdateUser(ctx context.Context, id int64, password string) (*models.User, error) {
	if id <= 0 {
		return nil, invalid(msgInvalidUserID)
	}
	if len(password) < minPasswordLength {
		return nil, invalid(msgPasswordShort)
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, s.storeErr(ctx, "update user", err, msgUserNotFound)
	}
	digest, err := s.hashPassword(ctx, "update user", password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdatePassword(ctx, id, digest)
	if err != nil {
		return nil, s.storeErr(ctx, "update user", err, msgUserNotFound)
	}
	return u, nil
}

// DeleteUser removes the user and its tasks.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid(msgInvalidUserID)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return s.storeErr(ctx, "delete user", err, msgUserNotFound)
	}
	return nil
}
