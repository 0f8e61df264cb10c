package userrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunarfit/coach-api/internal/domain/auth"
)

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, email, displayName, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, password_hash, calorie_target, weight_unit, created_at
	`, email, displayName, passwordHash)
	return scanUser(row)
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, display_name, password_hash, calorie_target, weight_unit, created_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`, email)
	if err != nil {
		return auth.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.User{}, false, rows.Err()
	}
	user, err := scanUser(rows)
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, rows.Err()
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, display_name, password_hash, calorie_target, weight_unit, created_at
		FROM users
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return auth.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.User{}, false, rows.Err()
	}
	user, err := scanUser(rows)
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, rows.Err()
}

// UpdateProfile persists mutable profile fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, user auth.User) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET display_name = $2, calorie_target = $3, weight_unit = $4
		WHERE id = $1
		RETURNING id, email, display_name, password_hash, calorie_target, weight_unit, created_at
	`, user.ID, user.DisplayName, user.CalorieTarget, user.WeightUnit)
	return scanUser(row)
}

// GetIdentity returns an identity by provider and subject.
func (r *PostgresRepository) GetIdentity(ctx context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at
		FROM user_identities
		WHERE provider = $1 AND provider_subject = $2
		LIMIT 1
	`, provider, providerSubject)
	if err != nil {
		return auth.Identity{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.Identity{}, false, rows.Err()
	}
	identity, err := scanIdentity(rows)
	if err != nil {
		return auth.Identity{}, false, err
	}
	return identity, true, rows.Err()
}

// GetIdentityByUser returns an identity by user and provider.
func (r *PostgresRepository) GetIdentityByUser(ctx context.Context, userID int64, provider string) (auth.Identity, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at
		FROM user_identities
		WHERE user_id = $1 AND provider = $2
		LIMIT 1
	`, userID, provider)
	if err != nil {
		return auth.Identity{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.Identity{}, false, rows.Err()
	}
	identity, err := scanIdentity(rows)
	if err != nil {
		return auth.Identity{}, false, err
	}
	return identity, true, rows.Err()
}

// UpsertIdentity stores or updates the identity mapping.
func (r *PostgresRepository) UpsertIdentity(ctx context.Context, identity auth.Identity) (auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_identities (user_id, provider, provider_subject, provider_email, refresh_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_subject) DO UPDATE
		SET provider_email = EXCLUDED.provider_email,
		    refresh_token = CASE WHEN EXCLUDED.refresh_token <> '' THEN EXCLUDED.refresh_token ELSE user_identities.refresh_token END,
		    updated_at = now()
		RETURNING id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at
	`, identity.UserID, identity.Provider, identity.ProviderSubject, identity.ProviderEmail, identity.RefreshToken)
	return scanIdentity(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.User, error) {
	var user auth.User
	var created time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CalorieTarget, &user.WeightUnit, &created); err != nil {
		return auth.User{}, err
	}
	user.CreatedAt = created.UTC()
	return user, nil
}

func scanIdentity(row rowScanner) (auth.Identity, error) {
	var identity auth.Identity
	var created, updated time.Time
	if err := row.Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderSubject, &identity.ProviderEmail, &identity.RefreshToken, &created, &updated); err != nil {
		return auth.Identity{}, err
	}
	identity.CreatedAt = created.UTC()
	identity.UpdatedAt = updated.UTC()
	return identity, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
