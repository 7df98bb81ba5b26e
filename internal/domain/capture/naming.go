package capture

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	// FixedFileName is the single output name used by the FIXED strategy
	FixedFileName = "SavedScreen.png"

	fileNamePrefix  = "Saved-"
	fileNameExt     = ".png"
	timestampLayout = "2006-01-02_15-04-05"
)

// FileName returns the output file name for a capture finished at now.
// TIMESTAMP names use the local clock at second resolution.
func FileName(strategy NamingStrategy, now time.Time) string {
	if strategy == NamingFixed {
		return FixedFileName
	}
	return fileNamePrefix + now.Local().Format(timestampLayout) + fileNameExt
}

// SuffixedFileName inserts -n before the extension: Saved-x.png -> Saved-x-2.png
func SuffixedFileName(name string, n int) string {
	if n <= 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
