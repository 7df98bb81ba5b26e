package capture

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Status message keys; the English text doubles as the key.
// Numbers are passed preformatted so the printer does not group digits.
const (
	msgValidating    = "Checking capture target"
	msgInactive      = "Cannot capture while the target is inactive"
	msgResolving     = "Resolving print resolution"
	msgOverBudget    = "Resolution %s exceeds maximum pixel count %s"
	msgInvalidConfig = "Invalid capture configuration: %s"
	msgAllocating    = "Allocating %s surface"
	msgRendering     = "Rendering"
	msgReadingBack   = "Reading back pixels"
	msgEncoding      = "Encoding PNG"
	msgPersisting    = "Saving capture"
	msgIOFailed      = "Failed to save capture: %s"
	msgRenderFailed  = "Render target failed: %s"
	msgCancelled     = "Capture cancelled"
	msgInternal      = "Capture stopped on an internal error: %s"
	msgCompleted     = "Captured! width: %s height: %s"
)

var japanese = map[string]string{
	msgValidating:    "キャプチャ対象を確認しています",
	msgInactive:      "プレイ中ではないのでキャプチャできません！",
	msgResolving:     "解像度を計算しています",
	msgOverBudget:    "解像度 %s が最大ピクセル数 %s を超えています",
	msgInvalidConfig: "キャプチャ設定が不正です: %s",
	msgAllocating:    "%s のレンダーテクスチャを確保しています",
	msgRendering:     "レンダリングしています",
	msgReadingBack:   "ピクセルを読み込んでいます",
	msgEncoding:      "PNG に変換しています",
	msgPersisting:    "保存しています",
	msgIOFailed:      "保存に失敗しました: %s",
	msgRenderFailed:  "レンダリングに失敗しました: %s",
	msgCancelled:     "キャプチャを中断しました",
	msgInternal:      "内部エラーでキャプチャを中止しました: %s",
	msgCompleted:     "キャプチャしました！ width: %s height: %s",
}

// SupportedLocales lists the locales with a status catalog
var SupportedLocales = []language.Tag{language.English, language.Japanese}

// StatusCatalog renders the human-readable status texts of a capture.
// The texts are for display only and are not a stable API.
type StatusCatalog struct {
	printer *message.Printer
	tag     language.Tag
}

// NewStatusCatalog creates a catalog for locale ("en", "ja", ...).
// Unknown or unsupported locales fall back to English.
func NewStatusCatalog(locale string) *StatusCatalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range japanese {
		// SetString only fails for malformed tags
		_ = builder.SetString(language.Japanese, key, text)
	}

	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		matcher := language.NewMatcher(SupportedLocales)
		_, idx, confidence := matcher.Match(parsed)
		if confidence != language.No {
			tag = SupportedLocales[idx]
		}
	}

	return &StatusCatalog{
		printer: message.NewPrinter(tag, message.Catalog(builder)),
		tag:     tag,
	}
}

// Locale returns the language the catalog renders in
func (c *StatusCatalog) Locale() language.Tag {
	return c.tag
}

// Validating is shown while the target is checked
func (c *StatusCatalog) Validating() string { return c.printer.Sprintf(msgValidating) }

// Inactive is shown when the target is not running
func (c *StatusCatalog) Inactive() string { return c.printer.Sprintf(msgInactive) }

// Resolving is shown while the resolution is computed
func (c *StatusCatalog) Resolving() string { return c.printer.Sprintf(msgResolving) }

// OverBudget is shown when the resolution exceeds the pixel cap
func (c *StatusCatalog) OverBudget(res Resolution, maximum int64) string {
	return c.printer.Sprintf(msgOverBudget, res.String(), strconv.FormatInt(maximum, 10))
}

// InvalidConfig is shown when the configuration cannot be resolved
func (c *StatusCatalog) InvalidConfig(reason string) string {
	return c.printer.Sprintf(msgInvalidConfig, reason)
}

// Allocating is shown while the offscreen surface is allocated
func (c *StatusCatalog) Allocating(res Resolution) string {
	return c.printer.Sprintf(msgAllocating, res.String())
}

// Rendering is shown while the target renders
func (c *StatusCatalog) Rendering() string { return c.printer.Sprintf(msgRendering) }

// ReadingBack is shown while pixels are copied to memory
func (c *StatusCatalog) ReadingBack() string { return c.printer.Sprintf(msgReadingBack) }

// Encoding is shown while the PNG is encoded
func (c *StatusCatalog) Encoding() string { return c.printer.Sprintf(msgEncoding) }

// Persisting is shown while the file is written
func (c *StatusCatalog) Persisting() string { return c.printer.Sprintf(msgPersisting) }

// IOFailed is shown when the output cannot be written
func (c *StatusCatalog) IOFailed(reason string) string {
	return c.printer.Sprintf(msgIOFailed, reason)
}

// RenderFailed is shown when the target fails to allocate, render or read back
func (c *StatusCatalog) RenderFailed(reason string) string {
	return c.printer.Sprintf(msgRenderFailed, reason)
}

// Cancelled is shown when the capture is cancelled
func (c *StatusCatalog) Cancelled() string { return c.printer.Sprintf(msgCancelled) }

// Internal is shown when the capture pipeline reaches an impossible state
func (c *StatusCatalog) Internal(reason string) string {
	return c.printer.Sprintf(msgInternal, reason)
}

// Completed is shown when the capture has been saved
func (c *StatusCatalog) Completed(res Resolution) string {
	return c.printer.Sprintf(msgCompleted, strconv.Itoa(res.Width), strconv.Itoa(res.Height))
}
