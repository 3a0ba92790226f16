package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

func newApplicationRepo(t *testing.T) (*ApplicationRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewApplicationRepository(mockPool), mockPool
}

var applicationColumnNames = []string{
	"id", "registrant_id", "name", "url", "secret_hash", "permissions", "active", "created_at", "updated_at",
}

func TestApplicationRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	app := &domain.Application{
		ID:           uuid.New(),
		RegistrantID: uuid.New(),
		Name:         "Example App",
		URL:          "https://app.example.com",
		SecretHash:   domain.HashSecret("s"),
		Permissions:  []string{"profile.read"},
		Active:       true,
	}

	t.Run("inserts application", func(t *testing.T) {
		repo, mockPool := newApplicationRepo(t)
		now := time.Now().UTC()

		mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO applications`)).
			WithArgs(app.ID, app.RegistrantID, app.Name, app.URL, app.SecretHash, app.Permissions, app.Active).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, repo.Create(ctx, app))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("duplicate url maps to already exists", func(t *testing.T) {
		repo, mockPool := newApplicationRepo(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO applications`)).
			WithArgs(app.ID, app.RegistrantID, app.Name, app.URL, app.SecretHash, app.Permissions, app.Active).
			WillReturnError(errors.New("SQLSTATE 23505"))

		err := repo.Create(ctx, app)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestApplicationRepositoryGetByURL(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mockPool := newApplicationRepo(t)
		id := uuid.New()
		ownerID := uuid.New()
		now := time.Now().UTC()

		mockPool.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE url = $1`)).
			WithArgs("https://app.example.com").
			WillReturnRows(pgxmock.NewRows(applicationColumnNames).
				AddRow(id, ownerID, "Example App", "https://app.example.com", domain.HashSecret("s"),
					[]string{"profile.read"}, true, now, now))

		app, err := repo.GetByURL(ctx, "https://app.example.com")
		require.NoError(t, err)
		assert.Equal(t, id, app.ID)
		assert.Equal(t, "Example App", app.Name)
		assert.True(t, app.CheckSecret("s"))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repo, mockPool := newApplicationRepo(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE url = $1`)).
			WithArgs("https://nobody.example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByURL(ctx, "https://nobody.example.com")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestApplicationRepositoryListByRegistrant(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newApplicationRepo(t)
	ownerID := uuid.New()
	now := time.Now().UTC()

	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE registrant_id = $1`)).
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows(applicationColumnNames).
			AddRow(uuid.New(), ownerID, "App A", "https://a.example.com", "hash-a", []string{"x"}, true, now, now).
			AddRow(uuid.New(), ownerID, "App B", "https://b.example.com", "hash-b", []string{"y"}, false, now, now))

	apps, err := repo.ListByRegistrant(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "https://a.example.com", apps[0].URL)
	assert.False(t, apps[1].Active)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestApplicationRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := newApplicationRepo(t)
	id := uuid.New()

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM applications WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mockPool.ExpectationsWereMet())
}
