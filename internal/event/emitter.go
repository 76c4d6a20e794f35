package event

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink-api/pkg/messaging"
)

// Event types published on entity changes.
const (
	PatientCreated = "PATIENT_CREATED"
	PatientUpdated = "PATIENT_UPDATED"
	PatientDeleted = "PATIENT_DELETED"
	DoctorCreated  = "DOCTOR_CREATED"
	DoctorUpdated  = "DOCTOR_UPDATED"
	DoctorDeleted  = "DOCTOR_DELETED"
	MappingCreated = "MAPPING_CREATED"
	MappingDeleted = "MAPPING_DELETED"
	UserRegistered = "USER_REGISTERED"
)

type Message struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Emitter publishes domain events to a broker channel. A nil Emitter or a
// nil broker is a no-op, so handlers never need to branch on whether
// eventing is configured. Publishing is fire-and-forget: failures are
// logged, never surfaced to the request.
type Emitter struct {
	broker  messaging.Broker
	channel string
}

func NewEmitter(broker messaging.Broker, channel string) *Emitter {
	return &Emitter{broker: broker, channel: channel}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, payload interface{}) {
	if e == nil || e.broker == nil {
		return
	}

	msg := Message{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := e.broker.Publish(ctx, e.channel, msg); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}
