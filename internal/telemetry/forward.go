package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/itxrex07/x/internal/events"
)

// Publisher is the outbound broker boundary the forwarder writes to.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Envelope is the versioned wrapper every forwarded record is published in.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	EventName     string `json:"event_name"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	Payload       any    `json:"payload"`
}

// Forwarder republishes domain events and audit records to the broker.
type Forwarder struct {
	publisher   Publisher
	service     string
	environment string
}

// NewForwarder builds a Forwarder.
func NewForwarder(publisher Publisher, service, environment string) *Forwarder {
	return &Forwarder{
		publisher:   publisher,
		service:     service,
		environment: environment,
	}
}

// BindAll subscribes the forwarder to every event the engine emits.
func (f *Forwarder) BindAll(emitter *events.Emitter) {
	if f == nil || f.publisher == nil {
		return
	}
	for _, name := range events.AllNames {
		name := name
		emitter.On(name, func(payload any) {
			f.publish("engine_event", string(name), payload)
		})
	}
}

// Audit records an input the engine absorbed without effect. The engine
// boundary stays silent about these; the broker trail is where they surface.
func (f *Forwarder) Audit(reason, detail string) {
	if f == nil || f.publisher == nil {
		return
	}
	f.publish("engine_audit", reason, map[string]string{"detail": detail})
}

func (f *Forwarder) publish(eventType, eventName string, payload any) {
	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		EventName:     eventName,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       f.service,
		Environment:   f.environment,
		Payload:       payload,
	}

	routingKey := "engine_events." + eventName
	if err := f.publisher.Publish(context.Background(), routingKey, envelope); err != nil {
		log.Printf("event forward failed routing_key=%s: %v", routingKey, err)
	}
}
