package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	apperrors "github.com/klink-asia/registry/pkg/errors"
)

// In-memory repository fakes backing the end-to-end handler tests.

type fakeRegistrants struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Registrant
}

func newFakeRegistrants() *fakeRegistrants {
	return &fakeRegistrants{rows: make(map[uuid.UUID]*domain.Registrant)}
}

func (f *fakeRegistrants) Create(_ context.Context, r *domain.Registrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == r.Email {
			return apperrors.AlreadyExists("registrant", "email", r.Email)
		}
	}
	cp := *r
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeRegistrants) GetByID(_ context.Context, id uuid.UUID) (*domain.Registrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("registrant", id.String())
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRegistrants) GetByEmail(_ context.Context, email string) (*domain.Registrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("registrant", email)
}

func (f *fakeRegistrants) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("registrant", id.String())
	}
	row.Email = email
	return nil
}

func (f *fakeRegistrants) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("registrant", id.String())
	}
	row.PasswordHash = &passwordHash
	row.Active = true
	return nil
}

func (f *fakeRegistrants) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok {
		now := time.Now().UTC()
		row.LastLoginAt = &now
	}
	return nil
}

func (f *fakeRegistrants) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return apperrors.NotFound("registrant", id.String())
	}
	delete(f.rows, id)
	return nil
}

type fakeApplications struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Application
}

func newFakeApplications() *fakeApplications {
	return &fakeApplications{rows: make(map[uuid.UUID]*domain.Application)}
}

func (f *fakeApplications) Create(_ context.Context, a *domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.URL == a.URL {
			return apperrors.AlreadyExists("application", "url", a.URL)
		}
	}
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeApplications) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("application", id.String())
	}
	cp := *row
	return &cp, nil
}

func (f *fakeApplications) GetByURL(_ context.Context, url string) (*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.URL == url {
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("application", url)
}

func (f *fakeApplications) ListByRegistrant(_ context.Context, registrantID uuid.UUID) ([]*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Application
	for _, row := range f.rows {
		if row.RegistrantID == registrantID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeApplications) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return apperrors.NotFound("application", id.String())
	}
	delete(f.rows, id)
	return nil
}

type tokenKey struct {
	registrantID uuid.UUID
	purpose      string
}

type fakeTokens struct {
	mu   sync.Mutex
	rows map[tokenKey]*domain.VerificationToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{rows: make(map[tokenKey]*domain.VerificationToken)}
}

func (f *fakeTokens) Replace(_ context.Context, t *domain.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.rows[tokenKey{t.RegistrantID, t.Purpose}] = &cp
	return nil
}

func (f *fakeTokens) Consume(_ context.Context, registrantID uuid.UUID, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := tokenKey{registrantID, purpose}
	row, ok := f.rows[key]
	if !ok || row.Token != token || !row.IssuedAt.After(cutoff) {
		return nil, apperrors.NotFound("verification token", purpose)
	}
	delete(f.rows, key)
	return row, nil
}

func (f *fakeTokens) FindByToken(_ context.Context, purpose, token string, cutoff time.Time) (*domain.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Purpose == purpose && row.Token == token && row.IssuedAt.After(cutoff) {
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("verification token", purpose)
}

func (f *fakeTokens) DeleteByRegistrant(_ context.Context, registrantID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.rows {
		if key.registrantID == registrantID {
			delete(f.rows, key)
		}
	}
	return nil
}

// capturingNotifier records outgoing mail so tests can pull tokens out of
// the links.
type capturingNotifier struct {
	mu   sync.Mutex
	sent []capturedMail
}

type capturedMail struct {
	Recipient string
	Template  string
	Vars      map[string]string
}

func (n *capturingNotifier) Send(_ context.Context, recipient, template string, vars map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, capturedMail{Recipient: recipient, Template: template, Vars: vars})
	return nil
}

func (n *capturingNotifier) last() capturedMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

// noopPublisher drops all events.
type noopPublisher struct{}

func (noopPublisher) RegistrantRegistered(context.Context, *domain.Registrant) error { return nil }
func (noopPublisher) PasswordResetRequested(context.Context, uuid.UUID) error        { return nil }
func (noopPublisher) EmailChanged(context.Context, uuid.UUID, string) error          { return nil }

func (noopPublisher) ApplicationRegistered(context.Context, *domain.Application) error { return nil }
func (noopPublisher) ApplicationDeregistered(context.Context, uuid.UUID) error         { return nil }
