package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"greek-row/chapterhouse/internal/db/repositories"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// IdentityProvider owns login credentials. Profiles live elsewhere and
// reference the provider's user id.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string) (*gormModels.AuthUser, error)
	DeleteUser(ctx context.Context, id string) error
	Authenticate(ctx context.Context, email, password string) (*gormModels.AuthUser, error)
	FindByEmail(ctx context.Context, email string) (*gormModels.AuthUser, error)
}

// LocalIdentityProvider stores argon2id hashes in auth_users
type LocalIdentityProvider struct {
	users *repositories.AuthUserRepository
}

func NewLocalIdentityProvider(users *repositories.AuthUserRepository) *LocalIdentityProvider {
	return &LocalIdentityProvider{users: users}
}

func (p *LocalIdentityProvider) CreateUser(ctx context.Context, email, password string) (*gormModels.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &gormModels.AuthUser{Email: email, PasswordHash: hash}
	if err := p.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser is idempotent
func (p *LocalIdentityProvider) DeleteUser(ctx context.Context, id string) error {
	return p.users.Delete(ctx, id)
}

func (p *LocalIdentityProvider) Authenticate(ctx context.Context, email, password string) (*gormModels.AuthUser, error) {
	u, err := p.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(password, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	_ = p.users.TouchLogin(ctx, u.ID, time.Now().UTC())
	return u, nil
}

func (p *LocalIdentityProvider) FindByEmail(ctx context.Context, email string) (*gormModels.AuthUser, error) {
	return p.users.GetByEmail(ctx, strings.TrimSpace(email))
}
