package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

// RegistrantRepository is the PostgreSQL registrant store.
type RegistrantRepository struct {
	db DB
}

// NewRegistrantRepository creates a registrant repository over db.
func NewRegistrantRepository(db DB) *RegistrantRepository {
	return &RegistrantRepository{db: db}
}

const registrantColumns = `id, email, password_hash, first_name, last_name, role, active, last_login_at, created_at, updated_at`

func (r *RegistrantRepository) Create(ctx context.Context, reg *domain.Registrant) error {
	query := `
		INSERT INTO registrants (id, email, password_hash, first_name, last_name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		reg.ID, reg.Email, reg.PasswordHash, reg.FirstName, reg.LastName, reg.Role, reg.Active,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("registrant", "email", reg.Email)
		}
		return fmt.Errorf("insert registrant: %w", err)
	}
	return nil
}

func (r *RegistrantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE id = $1`
	return r.scanRegistrant(r.db.QueryRow(ctx, query, id), id.String())
}

func (r *RegistrantRepository) GetByEmail(ctx context.Context, email string) (*domain.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE email = $1`
	return r.scanRegistrant(r.db.QueryRow(ctx, query, email), email)
}

func (r *RegistrantRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `UPDATE registrants SET email = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, email)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("registrant", "email", email)
		}
		return fmt.Errorf("update registrant email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("registrant", id.String())
	}
	return nil
}

func (r *RegistrantRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE registrants SET password_hash = $2, active = true, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update registrant password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("registrant", id.String())
	}
	return nil
}

func (r *RegistrantRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE registrants SET last_login_at = now() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *RegistrantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registrants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registrant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("registrant", id.String())
	}
	return nil
}

func (r *RegistrantRepository) scanRegistrant(row pgx.Row, key string) (*domain.Registrant, error) {
	var reg domain.Registrant
	err := row.Scan(
		&reg.ID, &reg.Email, &reg.PasswordHash, &reg.FirstName, &reg.LastName,
		&reg.Role, &reg.Active, &reg.LastLoginAt, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("registrant", key)
		}
		return nil, fmt.Errorf("scan registrant: %w", err)
	}
	return &reg, nil
}
