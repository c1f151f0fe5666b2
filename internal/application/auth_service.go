package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/internal/domain/repository"
	"github.com/whispr-app/whispr/pkg/helpers"
)

// dummyDigest is a valid bcrypt digest used to equalize work when the email
// is unknown or the account has no local credential, so response timing does
// not reveal whether the account exists.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService resolves authentication attempts against the credential store.
type AuthService struct {
	Repo   repository.UserRepository
	Logger *logrus.Logger
}

func NewAuthService(repo repository.UserRepository, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: repo, Logger: logger}
}

// Register creates a local account. A duplicate email fails with
// ErrDuplicateAccount whether it is found up front or appears between the
// existence check and the insert; the database settles the race.
func (s *AuthService) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Email: email, PasswordHash: &hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Login verifies a local credential. Unknown email, provider-only account,
// and wrong password all yield the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn a comparison anyway to keep timing flat
			_, _ = helpers.VerifyPassword(dummyDigest, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.HasLocalCredential() {
		_, _ = helpers.VerifyPassword(dummyDigest, password)
		return nil, ErrInvalidCredentials
	}

	ok, err := helpers.VerifyPassword(*u.PasswordHash, password)
	if err != nil {
		s.Logger.WithField("user_id", u.ID).Error("stored password hash is unreadable")
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredentialRecord, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// FederatedLogin resolves a provider identity. A known provider id wins
// outright. An unseen provider id is linked to the existing account sharing
// the profile email when there is one, otherwise a new account is created.
// This path never rejects; it only fails on store faults.
func (s *AuthService) FederatedLogin(ctx context.Context, provider repository.Provider, providerID, profileEmail string) (*entity.User, error) {
	u, err := s.Repo.GetByProviderID(ctx, provider, providerID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if profileEmail != "" {
		existing, err := s.Repo.GetByEmail(ctx, profileEmail)
		if err == nil {
			if err := s.Repo.LinkProvider(ctx, existing.ID, provider, providerID); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					// lost a link race; the provider id landed on another row
					return s.Repo.GetByProviderID(ctx, provider, providerID)
				}
				return nil, err
			}
			s.Logger.WithFields(logrus.Fields{"user_id": existing.ID, "provider": provider}).Info("linked provider to existing account")
			return s.Repo.GetByID(ctx, existing.ID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	nu := &entity.User{Email: profileEmail}
	switch provider {
	case repository.ProviderGoogle:
		nu.GoogleID = &providerID
	case repository.ProviderFacebook:
		nu.FacebookID = &providerID
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err := s.Repo.Create(ctx, nu); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.settleFederatedRace(ctx, provider, providerID, profileEmail)
		}
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": nu.ID, "provider": provider}).Info("federated account created")
	return nu, nil
}

// settleFederatedRace resolves an insert that lost a uniqueness race. The
// winning row either already carries the provider id, or it matched on email
// and still needs the link.
func (s *AuthService) settleFederatedRace(ctx context.Context, provider repository.Provider, providerID, profileEmail string) (*entity.User, error) {
	if u, err := s.Repo.GetByProviderID(ctx, provider, providerID); err == nil {
		return u, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	existing, err := s.Repo.GetByEmail(ctx, profileEmail)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.LinkProvider(ctx, existing.ID, provider, providerID); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}
	return s.Repo.GetByProviderID(ctx, provider, providerID)
}
