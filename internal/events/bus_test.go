package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, value []byte) error {
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, value)
	return p.err
}

func TestBus(t *testing.T) {
	out := &recordingPublisher{}
	bus := NewBus(out, logger.NewNop())

	var order []string
	unsubA := bus.Subscribe(func(_ context.Context, e Event) { order = append(order, "a:"+e.ProductID) })
	bus.Subscribe(func(_ context.Context, e Event) { order = append(order, "b:"+e.ProductID) })
	require.Equal(t, 2, bus.Subscribers())

	bus.Publish(context.Background(), NewProductEvent(ActionCreated, "m1", "p1", ""))
	assert.Equal(t, []string{"a:p1", "b:p1"}, order)
	require.Len(t, out.payloads, 1)
	assert.Equal(t, "p1", out.keys[0])

	var decoded Event
	require.NoError(t, json.Unmarshal(out.payloads[0], &decoded))
	assert.Equal(t, ProductDataUpdated, decoded.EventType)
	assert.Equal(t, ActionCreated, decoded.Action)

	unsubA()
	unsubA()
	assert.Equal(t, 1, bus.Subscribers())

	order = nil
	bus.Publish(context.Background(), NewProductEvent(ActionDeleted, "m1", "p2", ""))
	assert.Equal(t, []string{"b:p2"}, order)
}

func TestBusPublisherFailureIsSwallowed(t *testing.T) {
	bus := NewBus(&recordingPublisher{err: errors.New("broker down")}, logger.NewNop())
	called := false
	bus.Subscribe(func(context.Context, Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), NewProductEvent(ActionUpdated, "m1", "p1", "v1"))
	})
	assert.True(t, called)

	assert.NotPanics(t, func() {
		NewBus(nil, logger.NewNop()).Publish(context.Background(), NewProductEvent(ActionUpdated, "m1", "p1", ""))
	})
}
