// Package event publishes registry domain events to Kafka.
package event

import (
	"context"

	"github.com/google/uuid"

	"github.com/klink-asia/registry/internal/domain"
	"github.com/klink-asia/registry/pkg/kafka"
	"github.com/klink-asia/registry/pkg/logger"
)

// Event types emitted by the registry.
const (
	TypeRegistrantRegistered    = "registrant.registered"
	TypePasswordResetRequested  = "registrant.password_reset"
	TypeEmailChanged            = "registrant.email_changed"
	TypeApplicationRegistered   = "application.registered"
	TypeApplicationDeregistered = "application.deregistered"
)

const source = "registry"

// Publisher emits domain events. Implementations must never block request
// handling beyond the producer's own timeout.
type Publisher interface {
	RegistrantRegistered(ctx context.Context, r *domain.Registrant) error
	PasswordResetRequested(ctx context.Context, registrantID uuid.UUID) error
	EmailChanged(ctx context.Context, registrantID uuid.UUID, newEmail string) error
	ApplicationRegistered(ctx context.Context, a *domain.Application) error
	ApplicationDeregistered(ctx context.Context, applicationID uuid.UUID) error
}

type registrantPayload struct {
	RegistrantID string `json:"registrant_id"`
	Email        string `json:"email,omitempty"`
}

type applicationPayload struct {
	ApplicationID string   `json:"application_id"`
	RegistrantID  string   `json:"registrant_id,omitempty"`
	URL           string   `json:"url,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
}

// Producer publishes events through the shared Kafka producer.
type Producer struct {
	producer *kafka.Producer
}

// NewProducer wraps the Kafka producer.
func NewProducer(p *kafka.Producer) *Producer {
	return &Producer{producer: p}
}

func (p *Producer) publish(ctx context.Context, eventType, key string, payload any) error {
	evt := kafka.NewEvent(eventType, source, payload)
	evt.CorrelationID = logger.CorrelationIDFromContext(ctx)
	return p.producer.Publish(ctx, key, evt)
}

func (p *Producer) RegistrantRegistered(ctx context.Context, r *domain.Registrant) error {
	return p.publish(ctx, TypeRegistrantRegistered, r.ID.String(), registrantPayload{
		RegistrantID: r.ID.String(),
		Email:        r.Email,
	})
}

func (p *Producer) PasswordResetRequested(ctx context.Context, registrantID uuid.UUID) error {
	return p.publish(ctx, TypePasswordResetRequested, registrantID.String(), registrantPayload{
		RegistrantID: registrantID.String(),
	})
}

func (p *Producer) EmailChanged(ctx context.Context, registrantID uuid.UUID, newEmail string) error {
	return p.publish(ctx, TypeEmailChanged, registrantID.String(), registrantPayload{
		RegistrantID: registrantID.String(),
		Email:        newEmail,
	})
}

func (p *Producer) ApplicationRegistered(ctx context.Context, a *domain.Application) error {
	return p.publish(ctx, TypeApplicationRegistered, a.ID.String(), applicationPayload{
		ApplicationID: a.ID.String(),
		RegistrantID:  a.RegistrantID.String(),
		URL:           a.URL,
		Permissions:   a.Permissions,
	})
}

func (p *Producer) ApplicationDeregistered(ctx context.Context, applicationID uuid.UUID) error {
	return p.publish(ctx, TypeApplicationDeregistered, applicationID.String(), applicationPayload{
		ApplicationID: applicationID.String(),
	})
}
