package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/gogotex/admin-service/internal/models"
	"github.com/gogotex/admin-service/pkg/logger"
)

// PasswordMinLength is the shortest plaintext the HTTP layer accepts.
// Register does not re-check it.
const PasswordMinLength = 7

// Hasher is the password hashing primitive the store depends on.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
	NeedsRehash(hash string) bool
}

// Service is the account store: credential verification with transparent
// rehash, and insertion guarded by the storage unique indexes.
type Service struct {
	repo     Repository
	hasher   Hasher
	validate *validator.Validate
}

func NewService(r Repository, h Hasher) *Service {
	return &Service{repo: r, hasher: h, validate: validator.New()}
}

// Authenticate checks username/password and returns the identity.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	u, err := s.repo.FindBy(ctx, ColumnUsername, username)
	if err != nil {
		return Identity{}, err
	}
	if u == nil {
		return Identity{}, ErrUserNotFound
	}

	ok, err := s.hasher.Verify(password, u.Password)
	if err != nil {
		return Identity{}, fmt.Errorf("verify password for user %d: %w", u.ID, err)
	}
	if !ok {
		return Identity{}, ErrInvalidCredential
	}

	if s.hasher.NeedsRehash(u.Password) {
		s.rehash(ctx, u, password)
	}
	return identityOf(u), nil
}

// rehash upgrades the stored hash. Failures are logged only: the login has
// already succeeded.
func (s *Service) rehash(ctx context.Context, u *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		logger.Warnf("rehash user %d: %v", u.ID, err)
		return
	}
	if err := s.repo.Update(ctx, u, map[string]interface{}{"password": hash}); err != nil {
		logger.Warnf("persist rehash for user %d: %v", u.ID, err)
		return
	}
	u.Password = hash
	logger.Debugf("rehashed password for user %d", u.ID)
}

// Register adds a local account. The plaintext must already satisfy
// PasswordMinLength.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	u := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return ErrDuplicateName
		}
		return err
	}
	return nil
}

// FindByGoogleID returns the identity linked to a Google subject, or nil.
func (s *Service) FindByGoogleID(ctx context.Context, googleID string) (*Identity, error) {
	return s.find(ctx, ColumnGoogleID, googleID)
}

// FindByEmail returns the identity registered under email, or nil.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	return s.find(ctx, ColumnEmail, email)
}

func (s *Service) find(ctx context.Context, column Column, value string) (*Identity, error) {
	if value == "" {
		return nil, nil
	}
	u, err := s.repo.FindBy(ctx, column, value)
	if err != nil || u == nil {
		return nil, err
	}
	id := identityOf(u)
	return &id, nil
}

// ProvisionExternal creates an account for a Google identity. The email is
// used as username and the local password is random: the account signs in
// through its google id, not a password.
func (s *Service) ProvisionExternal(ctx context.Context, googleID, email string) (Identity, error) {
	if googleID == "" {
		return Identity{}, errors.New("missing google id")
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return Identity{}, ErrInvalidEmail
	}
	secret, err := randomSecret()
	if err != nil {
		return Identity{}, err
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return Identity{}, err
	}
	gid := googleID
	u := &models.User{
		Username: email,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		GoogleID: &gid,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return Identity{}, ErrDuplicateName
		}
		return Identity{}, err
	}
	return identityOf(u), nil
}

// SetRole changes a user's role. It is an administrative action.
func (s *Service) SetRole(ctx context.Context, username, role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return ErrInvalidRole
	}
	u, err := s.repo.FindBy(ctx, ColumnUsername, username)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if u.Role == role {
		return nil
	}
	if err := s.repo.Update(ctx, u, map[string]interface{}{"role": role}); err != nil {
		return err
	}
	u.Role = role
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
