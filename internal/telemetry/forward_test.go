package telemetry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itxrex07/x/internal/events"
	"github.com/itxrex07/x/internal/mocks"
	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/telemetry"
)

func TestBindAllForwardsEvents(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	forwarder := telemetry.NewForwarder(publisher, "x-client", "test")
	emitter := events.NewEmitter()
	forwarder.BindAll(emitter)

	var got telemetry.Envelope
	publisher.On("Publish", mock.Anything, "engine_events.messageCreate", mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(telemetry.Envelope) }).
		Return(nil).Once()

	emitter.Emit(events.MessageCreate, events.MessagePayload{
		Message: &models.Message{ItemID: "m1"},
	})

	publisher.AssertExpectations(t)
	require.Equal(t, 1, got.SchemaVersion)
	require.Equal(t, "engine_event", got.EventType)
	require.Equal(t, "messageCreate", got.EventName)
	require.Equal(t, "x-client", got.Service)
	require.Equal(t, "test", got.Environment)
	require.NotEmpty(t, got.OccurredAt)
}

func TestAuditPublishesReason(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	forwarder := telemetry.NewForwarder(publisher, "x-client", "test")

	var got telemetry.Envelope
	publisher.On("Publish", mock.Anything, "engine_events.unmatched_patch_path", mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(telemetry.Envelope) }).
		Return(nil).Once()

	forwarder.Audit("unmatched_patch_path", "/direct_v2/unknown")

	publisher.AssertExpectations(t)
	require.Equal(t, "engine_audit", got.EventType)
	require.Equal(t, map[string]string{"detail": "/direct_v2/unknown"}, got.Payload)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	forwarder := telemetry.NewForwarder(publisher, "x-client", "test")

	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Once()

	require.NotPanics(t, func() {
		forwarder.Audit("malformed_sync_payload", "bad json")
	})
	publisher.AssertExpectations(t)
}

func TestNilForwarderIsSafe(t *testing.T) {
	var forwarder *telemetry.Forwarder
	require.NotPanics(t, func() {
		forwarder.Audit("reason", "detail")
		forwarder.BindAll(events.NewEmitter())
	})
}
