package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/internal/domain/repository"
)

func newMockRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewUserRepository(mock), mock
}

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
}

func TestCreateReturnsGeneratedFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	hash := "$2a$10$digest"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ada@example.com", &hash, nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("u-1", now, now))

	u := &entity.User{Email: "ada@example.com", PasswordHash: &hash}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "u-1", u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	hash := "$2a$10$digest"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ada@example.com", &hash, nil, nil).
		WillReturnError(uniqueViolation())

	err := repo.Create(context.Background(), &entity.User{Email: "ada@example.com", PasswordHash: &hash})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email =")).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByProviderIDScansRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	gid := "g-123"

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE google_id =")).
		WithArgs("g-123").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "google_id", "facebook_id", "secret", "created_at", "updated_at",
		}).AddRow("u-1", "ada@example.com", nil, &gid, nil, nil, now, now))

	u, err := repo.GetByProviderID(context.Background(), repository.ProviderGoogle, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Nil(t, u.PasswordHash)
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "g-123", *u.GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByProviderIDUnsupportedProvider(t *testing.T) {
	repo, _ := newMockRepo(t)
	_, err := repo.GetByProviderID(context.Background(), repository.Provider("myspace"), "x")
	assert.Error(t, err)
}

func TestLinkProviderMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET facebook_id =")).
		WithArgs("fb-1", "u-1").
		WillReturnError(uniqueViolation())

	err := repo.LinkProvider(context.Background(), "u-1", repository.ProviderFacebook, "fb-1")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSecretMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET secret =")).
		WithArgs("hi", "u-missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateSecret(context.Background(), "u-missing", "hi")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSecrets(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT secret FROM users WHERE secret IS NOT NULL")).
		WillReturnRows(pgxmock.NewRows([]string{"secret"}).AddRow("one").AddRow("two"))

	out, err := repo.ListSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}
