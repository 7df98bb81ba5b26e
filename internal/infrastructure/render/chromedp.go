package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	xdraw "golang.org/x/image/draw"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 60 * time.Second
	blankPage            = "about:blank"
)

// ChromedpConfig contains configuration for the headless Chrome target
type ChromedpConfig struct {
	// URL of the scene to render. Takes precedence over HTML.
	URL string
	// HTML content rendered when URL is empty
	HTML string
	// DefaultTimeout for one render
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpTarget renders a web page at the bound surface's size using the
// Chrome DevTools Protocol. Each render emulates a viewport of exactly the
// surface size and stores the screenshot in the surface.
type ChromedpTarget struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
	closed      atomic.Bool
	paused      atomic.Bool
	bound       *MemorySurface
}

// NewChromedpTarget creates a Chrome-backed target. The browser is started
// lazily on the first render.
func NewChromedpTarget(config *ChromedpConfig) (*ChromedpTarget, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	applyChromedpDefaults(config)
	if config.URL == "" && strings.TrimSpace(config.HTML) == "" {
		return nil, NewRenderError(ErrCodeRenderFailed, "either URL or HTML must be configured", nil)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &ChromedpTarget{
		config: config,
		logger: logger,
	}
	t.initAllocator()
	return t, nil
}

func applyChromedpDefaults(config *ChromedpConfig) {
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
}

// initAllocator initializes the Chrome allocator
func (t *ChromedpTarget) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
	)
	if t.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if t.config.RemoteURL != "" {
		t.allocCtx, t.allocCancel = chromedp.NewRemoteAllocator(context.Background(), t.config.RemoteURL)
	} else {
		t.allocCtx, t.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// SetActive pauses or resumes the target without closing the browser
func (t *ChromedpTarget) SetActive(active bool) {
	t.paused.Store(!active)
}

// IsActive reports whether the target is not paused and its browser allocator is still open
func (t *ChromedpTarget) IsActive() bool {
	return !t.paused.Load() && !t.closed.Load() && t.allocCtx != nil && t.allocCtx.Err() == nil
}

// BoundSurface returns the bound surface, or nil
func (t *ChromedpTarget) BoundSurface() Surface {
	if t.bound == nil {
		return nil
	}
	return t.bound
}

// NewSurface allocates the in-memory surface screenshots are stored in
func (t *ChromedpTarget) NewSurface(width, height int) (Surface, error) {
	return NewMemorySurface(width, height)
}

// BindOffscreenSurface binds s. Surfaces from other targets are ignored.
func (t *ChromedpTarget) BindOffscreenSurface(s Surface) {
	if s == nil {
		t.bound = nil
		return
	}
	if ms, ok := s.(*MemorySurface); ok {
		t.bound = ms
		return
	}
	t.logger.Warn("ignoring foreign surface", zap.String("type", fmt.Sprintf("%T", s)))
}

// Render loads the scene with a viewport of the surface size and screenshots it
func (t *ChromedpTarget) Render(ctx context.Context) error {
	if !t.IsActive() {
		return NewRenderError(ErrCodeRenderFailed, "browser is closed", nil)
	}
	if t.bound == nil {
		return NewRenderError(ErrCodeNotBound, "no surface is bound", nil)
	}
	dst := t.bound.Image()
	if dst == nil {
		return NewRenderError(ErrCodeSurfaceReleased, "surface has been released", nil)
	}

	startTime := time.Now()
	width, height := dst.Rect.Dx(), dst.Rect.Dy()

	ctx, cancel := context.WithTimeout(ctx, t.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(t.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			t.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Tie the browser tab to the caller's deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var shot []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		t.loadScene(),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("render timed out after %v", t.config.DefaultTimeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return NewRenderError(ErrCodeRenderTimeout, "render was cancelled", err)
		}
		t.logger.Error("chromedp rendering failed", zap.Error(err))
		return NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}

	if err := drawScreenshot(dst, shot); err != nil {
		return err
	}

	t.logger.Debug("page rendered",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("bytes", len(shot)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// loadScene navigates to the configured URL or injects the configured HTML
func (t *ChromedpTarget) loadScene() chromedp.Action {
	if t.config.URL != "" {
		return chromedp.Navigate(t.config.URL)
	}
	html := buildDocument(t.config.HTML)
	return chromedp.Tasks{
		chromedp.Navigate(blankPage),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
	}
}

// ReadPixels copies the last screenshot
func (t *ChromedpTarget) ReadPixels(ctx context.Context, dst *image.NRGBA) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeReadbackFailed, "readback was cancelled", err)
	}
	if t.bound == nil {
		return NewRenderError(ErrCodeNotBound, "no surface is bound", nil)
	}
	return readPixels(t.bound, t.bound.Image(), dst)
}

// Close shuts the browser down
func (t *ChromedpTarget) Close() error {
	t.closed.Store(true)
	if t.allocCancel != nil {
		t.allocCancel()
	}
	return nil
}

// drawScreenshot decodes a PNG screenshot into dst, scaling when the browser
// returned a different size (e.g. a device scale factor other than 1)
func drawScreenshot(dst *image.NRGBA, shot []byte) error {
	if len(shot) == 0 {
		return NewRenderError(ErrCodeRenderFailed, "screenshot is empty", nil)
	}
	src, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return NewRenderError(ErrCodeRenderFailed, "invalid screenshot", err)
	}
	if src.Bounds().Size() == dst.Rect.Size() {
		xdraw.Draw(dst, dst.Rect, src, src.Bounds().Min, xdraw.Src)
		return nil
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	return nil
}

// buildDocument wraps an HTML fragment in a complete document with no margins
func buildDocument(html string) string {
	lower := strings.ToLower(html)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return html
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><head>")
	buf.WriteString("<meta charset=\"UTF-8\">")
	buf.WriteString("<style>html,body{margin:0;padding:0;width:100%;height:100%;overflow:hidden}</style>")
	buf.WriteString("</head><body>")
	buf.WriteString(html)
	buf.WriteString("</body></html>")
	return buf.String()
}

// Ensure ChromedpTarget implements Target
var _ Target = (*ChromedpTarget)(nil)
