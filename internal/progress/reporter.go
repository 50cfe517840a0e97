package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Download wraps w so bytes copied through it advance a progress bar.
// In CI the bar is silent to keep logs clean. size may be -1 when the
// backend does not announce a content length.
type Download struct {
	io.Writer
	bar *progressbar.ProgressBar
}

// NewDownload returns a writer tee'd into a byte progress bar.
func NewDownload(w io.Writer, size int64, description string) *Download {
	var bar *progressbar.ProgressBar
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		bar = progressbar.DefaultBytesSilent(size, description)
	} else {
		bar = progressbar.DefaultBytes(size, description)
	}
	return &Download{Writer: io.MultiWriter(w, bar), bar: bar}
}

// Finish completes the bar.
func (d *Download) Finish() {
	_ = d.bar.Finish()
}
