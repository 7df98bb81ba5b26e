package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestStatusCatalog_English(t *testing.T) {
	c := NewStatusCatalog("en")
	res := Resolution{Width: 2893, Height: 4092}

	assert.Equal(t, language.English, c.Locale())
	assert.Equal(t, "Captured! width: 2893 height: 4092", c.Completed(res))
	assert.Equal(t, "Allocating 2893x4092 surface", c.Allocating(res))
	assert.Equal(t, "Resolution 2893x4092 exceeds maximum pixel count 18000000", c.OverBudget(res, 18_000_000))
	assert.Equal(t, "Saving capture", c.Persisting())
	assert.Equal(t, "Capture stopped on an internal error: unexpected stage IDLE", c.Internal("unexpected stage IDLE"))
}

func TestStatusCatalog_Japanese(t *testing.T) {
	c := NewStatusCatalog("ja-JP")
	res := Resolution{Width: 2893, Height: 4092}

	assert.Equal(t, language.Japanese, c.Locale())
	assert.Equal(t, "プレイ中ではないのでキャプチャできません！", c.Inactive())
	assert.Equal(t, "キャプチャしました！ width: 2893 height: 4092", c.Completed(res))
}

func TestStatusCatalog_FallsBackToEnglish(t *testing.T) {
	for _, locale := range []string{"", "not a tag", "fr"} {
		c := NewStatusCatalog(locale)
		assert.Equal(t, language.English, c.Locale(), locale)
		assert.Equal(t, "Cannot capture while the target is inactive", c.Inactive())
	}
}
