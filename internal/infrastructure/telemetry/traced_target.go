package telemetry

import (
	"context"
	"fmt"
	"image"

	"github.com/chitosepg/cameracapture/internal/infrastructure/render"
)

// TracedTarget wraps a render target so that the slow calls show up as spans.
// Surface bookkeeping is passed straight through.
type TracedTarget struct {
	inner render.Target
	name  string
}

// NewTracedTarget decorates target; name is recorded as render.target.
func NewTracedTarget(target render.Target, name string) *TracedTarget {
	return &TracedTarget{inner: target, name: name}
}

// Unwrap returns the decorated target
func (t *TracedTarget) Unwrap() render.Target { return t.inner }

// IsActive reports whether the inner target can render
func (t *TracedTarget) IsActive() bool { return t.inner.IsActive() }

// BoundSurface returns the inner target's bound surface
func (t *TracedTarget) BoundSurface() render.Surface { return t.inner.BoundSurface() }

// BindOffscreenSurface binds s on the inner target
func (t *TracedTarget) BindOffscreenSurface(s render.Surface) { t.inner.BindOffscreenSurface(s) }

// NewSurface allocates through the inner target. Allocation has no ctx so
// it is recorded as a detached span.
func (t *TracedTarget) NewSurface(width, height int) (render.Surface, error) {
	_, span := StartSpan(context.Background(), "render_target.allocate",
		WithAttribute(SpanAttrTarget, t.name),
		WithAttribute(SpanAttrWidth, width),
		WithAttribute(SpanAttrHeight, height),
	)
	defer span.End()

	s, err := t.inner.NewSurface(width, height)
	if err != nil {
		RecordError(span, err)
		return nil, err
	}
	SetOK(span)
	return s, nil
}

// Render renders the inner target inside a span
func (t *TracedTarget) Render(ctx context.Context) error {
	ctx, span := StartSpan(ctx, "render_target.render", WithAttribute(SpanAttrTarget, t.name))
	defer span.End()

	if s := t.inner.BoundSurface(); s != nil {
		SetAttributes(span, SpanAttrWidth, s.Width(), SpanAttrHeight, s.Height())
	}
	if err := t.inner.Render(ctx); err != nil {
		RecordError(span, err)
		return err
	}
	SetOK(span)
	return nil
}

// ReadPixels reads back from the inner target inside a span
func (t *TracedTarget) ReadPixels(ctx context.Context, dst *image.NRGBA) error {
	opts := []SpanOption{WithAttribute(SpanAttrTarget, t.name)}
	if dst != nil {
		opts = append(opts,
			WithAttribute(SpanAttrWidth, dst.Rect.Dx()),
			WithAttribute(SpanAttrHeight, dst.Rect.Dy()),
		)
	}
	ctx, span := StartSpan(ctx, "render_target.read_pixels", opts...)
	defer span.End()

	if err := t.inner.ReadPixels(ctx, dst); err != nil {
		RecordError(span, err)
		return err
	}
	SetAttributes(span, "render.bytes", len(dst.Pix))
	SetOK(span)
	return nil
}

func (t *TracedTarget) String() string {
	return fmt.Sprintf("traced(%s)", t.name)
}

var _ render.Target = (*TracedTarget)(nil)
