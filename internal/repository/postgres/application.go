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

// ApplicationRepository is the PostgreSQL application store.
type ApplicationRepository struct {
	db DB
}

// NewApplicationRepository creates an application repository over db.
func NewApplicationRepository(db DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, registrant_id, name, url, secret_hash, permissions, active, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, registrant_id, name, url, secret_hash, permissions, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		app.ID, app.RegistrantID, app.Name, app.URL, app.SecretHash, app.Permissions, app.Active,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("application", "url", app.URL)
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return r.scanApplication(r.db.QueryRow(ctx, query, id), id.String())
}

func (r *ApplicationRepository) GetByURL(ctx context.Context, url string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE url = $1`
	return r.scanApplication(r.db.QueryRow(ctx, query, url), url)
}

func (r *ApplicationRepository) ListByRegistrant(ctx context.Context, registrantID uuid.UUID) ([]*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE registrant_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, registrantID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*domain.Application
	for rows.Next() {
		var app domain.Application
		err := rows.Scan(
			&app.ID, &app.RegistrantID, &app.Name, &app.URL, &app.SecretHash,
			&app.Permissions, &app.Active, &app.CreatedAt, &app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("application", id.String())
	}
	return nil
}

func (r *ApplicationRepository) scanApplication(row pgx.Row, key string) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.RegistrantID, &app.Name, &app.URL, &app.SecretHash,
		&app.Permissions, &app.Active, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("application", key)
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	return &app, nil
}
