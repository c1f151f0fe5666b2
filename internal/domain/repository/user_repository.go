package repository

import (
	"context"
	"errors"

	"github.com/whispr-app/whispr/internal/domain/entity"
)

// Provider identifies a federated identity source.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when an insert or link would violate a
	// uniqueness constraint (email or provider id). The database enforces
	// these, so concurrent check-then-insert races still surface here.
	ErrDuplicate = errors.New("duplicate user")
)

// UserRepository defines the persistence operations the auth core depends on.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByProviderID(ctx context.Context, provider Provider, providerID string) (*entity.User, error)
	LinkProvider(ctx context.Context, userID string, provider Provider, providerID string) error
	UpdateSecret(ctx context.Context, userID string, secret string) error
	ListSecrets(ctx context.Context) ([]string, error)
}
