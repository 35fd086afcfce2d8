package event_test

import (
	"io"
	"testing"
)

// newSlowPipe returns a reader that never produces data until the writer is
// written to, for exercising Event Reader's deadline.
func newSlowPipe(t *testing.T) (io.Reader, io.WriteCloser) {
	t.Helper()
	r, w := io.Pipe()
	return r, w
}
