package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/internal/domain/repository"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, COALESCE(email, ''), password_hash, google_id, facebook_id, secret, created_at, updated_at`

// Create inserts the user. The unique indexes on email and the provider id
// columns settle concurrent registrations; a violation surfaces as
// repository.ErrDuplicate regardless of which caller lost the race.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, google_id, facebook_id)
		VALUES (NULLIF($1, ''), $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.GoogleID, u.FacebookID)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByProviderID(ctx context.Context, provider repository.Provider, providerID string) (*entity.User, error) {
	col, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE `+col+` = $1`, providerID)
}

func (r *UserRepository) LinkProvider(ctx context.Context, userID string, provider repository.Provider, providerID string) error {
	col, err := providerColumn(provider)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(ctx, `UPDATE users SET `+col+` = $1, updated_at = now() WHERE id = $2`, providerID, userID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateSecret(ctx context.Context, userID string, secret string) error {
	res, err := r.db.Exec(ctx, `UPDATE users SET secret = $1, updated_at = now() WHERE id = $2`, secret, userID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListSecrets(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT secret FROM users WHERE secret IS NOT NULL ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.FacebookID,
		&u.Secret, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func providerColumn(p repository.Provider) (string, error) {
	switch p {
	case repository.ProviderGoogle:
		return "google_id", nil
	case repository.ProviderFacebook:
		return "facebook_id", nil
	default:
		return "", errors.New("unsupported provider: " + string(p))
	}
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
