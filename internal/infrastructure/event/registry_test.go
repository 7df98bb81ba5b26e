package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_RegisterSpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler("CaptureCompleted", "CaptureFailed")

	registry.Register(handler, "CaptureCompleted", "CaptureFailed")

	assert.Equal(t, []any{handler}, toAny(registry.GetHandlers("CaptureCompleted")))
	assert.Len(t, registry.GetHandlers("CaptureFailed"), 1)
	assert.Empty(t, registry.GetHandlers("CaptureStageChanged"))
}

func TestHandlerRegistry_WildcardAfterSpecific(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := newTestHandler("CaptureCompleted")
	wildcard := newTestHandler()

	registry.Register(wildcard)
	registry.Register(specific, "CaptureCompleted")

	handlers := registry.GetHandlers("CaptureCompleted")
	assert.Equal(t, []any{specific, wildcard}, toAny(handlers))
	assert.Equal(t, []any{wildcard}, toAny(registry.GetHandlers("Other")))
}

func TestHandlerRegistry_NoDuplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "CaptureCompleted")
	registry.Register(handler, "CaptureCompleted")
	registry.Register(handler)

	assert.Len(t, registry.GetHandlers("CaptureCompleted"), 1)
	assert.Equal(t, 1, registry.Len())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newTestHandler("CaptureCompleted")
	second := newTestHandler("CaptureCompleted")
	wildcard := newTestHandler()

	registry.Register(first, "CaptureCompleted")
	registry.Register(second, "CaptureCompleted")
	registry.Register(wildcard)
	assert.Equal(t, 3, registry.Len())

	registry.Unregister(first)
	registry.Unregister(wildcard)

	assert.Equal(t, []any{second}, toAny(registry.GetHandlers("CaptureCompleted")))
	assert.Equal(t, 1, registry.Len())

	registry.Unregister(second)
	assert.Empty(t, registry.GetHandlers("CaptureCompleted"))
	assert.Equal(t, 0, registry.Len())
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
