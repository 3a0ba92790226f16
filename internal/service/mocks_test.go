package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/klink-asia/registry/internal/domain"
)

type mockRegistrantRepo struct {
	mock.Mock
}

func (m *mockRegistrantRepo) Create(ctx context.Context, r *domain.Registrant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRegistrantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Registrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registrant), args.Error(1)
}

func (m *mockRegistrantRepo) GetByEmail(ctx context.Context, email string) (*domain.Registrant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registrant), args.Error(1)
}

func (m *mockRegistrantRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return m.Called(ctx, id, email).Error(0)
}

func (m *mockRegistrantRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockRegistrantRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRegistrantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetByURL(ctx context.Context, url string) (*domain.Application, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationRepo) ListByRegistrant(ctx context.Context, registrantID uuid.UUID) ([]*domain.Application, error) {
	args := m.Called(ctx, registrantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Application), args.Error(1)
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Replace(ctx context.Context, t *domain.VerificationToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTokenRepo) Consume(ctx context.Context, registrantID uuid.UUID, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error) {
	args := m.Called(ctx, registrantID, purpose, token, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationToken), args.Error(1)
}

func (m *mockTokenRepo) FindByToken(ctx context.Context, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error) {
	args := m.Called(ctx, purpose, token, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationToken), args.Error(1)
}

func (m *mockTokenRepo) DeleteByRegistrant(ctx context.Context, registrantID uuid.UUID) error {
	return m.Called(ctx, registrantID).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, recipient, template string, vars map[string]string) error {
	return m.Called(ctx, recipient, template, vars).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) RegistrantRegistered(ctx context.Context, r *domain.Registrant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) PasswordResetRequested(ctx context.Context, registrantID uuid.UUID) error {
	return m.Called(ctx, registrantID).Error(0)
}

func (m *mockPublisher) EmailChanged(ctx context.Context, registrantID uuid.UUID, newEmail string) error {
	return m.Called(ctx, registrantID, newEmail).Error(0)
}

func (m *mockPublisher) ApplicationRegistered(ctx context.Context, a *domain.Application) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockPublisher) ApplicationDeregistered(ctx context.Context, applicationID uuid.UUID) error {
	return m.Called(ctx, applicationID).Error(0)
}
