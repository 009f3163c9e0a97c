package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*headerCarrier)(msg)

	assert.Equal(t, "", carrier.Get("traceparent"))
	assert.Nil(t, carrier.Keys())

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Len(t, carrier.Keys(), 1)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "fleet.rental.started", Subject("fleet", RentalStarted))
	assert.Equal(t, "vehicle.status_changed", Subject("", VehicleStatusChanged))
}

func TestNewMessage(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	rentalID := uuid.New()
	e := New(RentalCompleted, rentalID, StatusChange{From: "ACTIVE", To: "COMPLETED"})

	msg, err := newMessage(ctx, "fleet", e)
	require.NoError(t, err)

	assert.Equal(t, "fleet.rental.completed", msg.Subject)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Header.Get("traceparent"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "rental.completed", decoded["type"])
	assert.Equal(t, rentalID.String(), decoded["entity_id"])
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "COMPLETED", data["to"])
}

func TestNewMessage_WithoutTrace(t *testing.T) {
	msg, err := newMessage(context.Background(), "fleet", New(ProtocolCreated, uuid.New(), nil))
	require.NoError(t, err)
	assert.Empty(t, msg.Header.Get("traceparent"))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Publish(context.Background(), New(RentalCreated, uuid.New(), nil)))
	require.NoError(t, r.Publish(context.Background(), New(RentalStarted, uuid.New(), nil)))

	assert.Equal(t, []Type{RentalCreated, RentalStarted}, r.Types())
	assert.NoError(t, Noop{}.Publish(context.Background(), Event{}))
}
