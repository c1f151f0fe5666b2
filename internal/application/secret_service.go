package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/whispr-app/whispr/internal/domain/repository"
)

// SecretService reads and writes the per-user secret. Callers must pass the
// id of an authenticated principal; a vanished row maps to ErrNotAuthenticated
// so the client falls back to logged out.
type SecretService struct {
	Repo   repository.UserRepository
	Logger *logrus.Logger
}

func NewSecretService(repo repository.UserRepository, logger *logrus.Logger) *SecretService {
	return &SecretService{Repo: repo, Logger: logger}
}

func (s *SecretService) GetSecret(ctx context.Context, userID string) (string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", err
	}
	if u.Secret == nil {
		return "", nil
	}
	return *u.Secret, nil
}

func (s *SecretService) SubmitSecret(ctx context.Context, userID, text string) error {
	if err := s.Repo.UpdateSecret(ctx, userID, text); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAuthenticated
		}
		return err
	}
	s.Logger.WithField("user_id", userID).Debug("secret updated")
	return nil
}

// ListSecrets returns every stored secret, anonymously, for the shared feed.
func (s *SecretService) ListSecrets(ctx context.Context) ([]string, error) {
	return s.Repo.ListSecrets(ctx)
}
