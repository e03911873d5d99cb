package util

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressEnabled reports whether progress bars should be drawn
func progressEnabled() bool {
	return IsTerminal(os.Stderr.Fd()) && !IsQuiet()
}

// newBar returns a progress bar counting entries when stderr is a terminal,
// nil otherwise
func newBar(total int, description string) *progressbar.ProgressBar {
	if !progressEnabled() {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("entries"),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// ByteProgress returns a writer that advances a byte progress bar, or
// io.Discard when no bar is drawn. A negative total draws a spinner.
func ByteProgress(total int64, description string) io.Writer {
	if !progressEnabled() {
		return io.Discard
	}
	return progressbar.DefaultBytes(total, description)
}
