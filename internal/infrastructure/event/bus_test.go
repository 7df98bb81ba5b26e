package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	block      chan struct{}
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event := newTestEvent("TestEvent")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_SubscribeUsesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent"), newTestEvent("OtherEvent")))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcard := newTestHandler()
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Len(t, wildcard.getHandled(), 2)
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("TestEvent")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("TestEvent")
	panicking.panics = true
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, panicking.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("TestEvent"))

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("TestEvent"))

	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_AsyncDeliversOnWorker(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(8))
	handler := newTestHandler("TestEvent")
	handler.block = make(chan struct{})
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))

	// Publish returns while the handler is still blocked
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent"), newTestEvent("TestEvent")))
	assert.Empty(t, handler.getHandled())

	close(handler.block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	// Stop drains the queue
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_AsyncSurvivesCancelledPublisher(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(4))
	handler := &ctxHandler{}
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("TestEvent")))
	cancel()
	require.NoError(t, bus.Stop(context.Background()))

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.True(t, handler.called)
	assert.NoError(t, handler.err)
}

func TestInMemoryEventBus_AsyncBeforeStartIsInline(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(4))
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStopRestart(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(1))
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	for i := 0; i < 2; i++ {
		require.NoError(t, bus.Start(context.Background()))
		require.NoError(t, bus.Start(context.Background()), "start is idempotent")
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
		require.NoError(t, bus.Stop(context.Background()))
	}
	assert.Len(t, handler.getHandled(), 2)
}

// ctxHandler records the context error seen by the handler
type ctxHandler struct {
	mu     sync.Mutex
	called bool
	err    error
}

func (h *ctxHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.called = true
	h.err = ctx.Err()
	return nil
}

func (h *ctxHandler) EventTypes() []string { return nil }
