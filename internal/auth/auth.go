package auth

import (
	"context"
	"errors"

	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/model"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store"
)

const (
	msgMissingCredentials = "Missing username or password"
	msgInvalidCredentials = "Invalid credentials"
	msgUsernameTaken      = "Username already exists"
	msgDatabaseError      = "Database error occurred"
)

type Service struct {
	bcryptCost int
}

// NewService returns a Service hashing new passwords at the given bcrypt
// cost; zero selects bcrypt's default.
func NewService(bcryptCost int) *Service {
	return &Service{bcryptCost: bcryptCost}
}

type Credentials struct {
	Username string
	Password string
}

// ParseCredentials requires both username and password to be present as
// strings. Empty strings are accepted.
func ParseCredentials(obj payload.Object) (Credentials, error) {
	if !obj.HasAll("username", "password") {
		return Credentials{}, apperrors.ValidationError(msgMissingCredentials)
	}
	username, err := obj.String("username")
	if err != nil {
		return Credentials{}, apperrors.ValidationError(msgMissingCredentials)
	}
	password, err := obj.String("password")
	if err != nil {
		return Credentials{}, apperrors.ValidationError(msgMissingCredentials)
	}
	return Credentials{Username: username, Password: password}, nil
}

// Signup creates a non-admin user. Concurrent signups for the same name are
// settled by the unique index: one insert wins, the rest get a conflict.
func (s *Service) Signup(ctx context.Context, q store.UserStore, c Credentials) (int64, error) {
	hash, err := HashPassword(c.Password, s.bcryptCost)
	if err != nil {
		return 0, apperrors.StorageError("Failed to hash password", err)
	}
	id, err := q.CreateUser(ctx, c.Username, hash, false)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return 0, apperrors.ConflictError(msgUsernameTaken).WithField("username", c.Username)
		}
		return 0, apperrors.StorageError(msgDatabaseError, err)
	}
	return id, nil
}

// Login checks the credentials and returns the matching user. No session or
// token is issued.
func (s *Service) Login(ctx context.Context, q store.UserStore, c Credentials) (model.User, error) {
	user, err := q.GetUserByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, apperrors.AuthError(msgInvalidCredentials)
		}
		return model.User{}, apperrors.StorageError(err.Error(), err)
	}
	ok, err := CheckPassword(user.PasswordHash, c.Password)
	if err != nil || !ok {
		return model.User{}, apperrors.AuthError(msgInvalidCredentials).WithField("user_id", user.ID)
	}
	return user, nil
}

// EnsureAdmin creates username as an admin, or promotes an existing account
// with that name. An existing account keeps its password.
func (s *Service) EnsureAdmin(ctx context.Context, conn store.UserStore, c Credentials) (int64, error) {
	hash, err := HashPassword(c.Password, s.bcryptCost)
	if err != nil {
		return 0, err
	}
	id, err := conn.CreateUser(ctx, c.Username, hash, true)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrDuplicateUsername) {
		return 0, err
	}
	user, err := conn.GetUserByUsername(ctx, c.Username)
	if err != nil {
		return 0, err
	}
	if err := conn.SetUserAdmin(ctx, user.ID, true); err != nil {
		return 0, err
	}
	return user.ID, nil
}
