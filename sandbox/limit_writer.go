package sandbox

import (
	"bytes"
	"sync"
)

// TruncationMarker is appended to captured output that hit the size ceiling.
const TruncationMarker = "\n... [output truncated]"

// limitWriter captures at most max bytes and drops the rest, recording that
// truncation happened. Writes never fail so the child process is not killed
// by a full pipe; the ceiling bounds memory instead of the run.
type limitWriter struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	max       int64
	truncated bool
}

func newLimitWriter(max int64) *limitWriter {
	return &limitWriter{max: max}
}

func (w *limitWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(p)
	remain := w.max - int64(w.buf.Len())
	if remain <= 0 {
		if n > 0 {
			w.truncated = true
		}
		return n, nil
	}
	if int64(n) > remain {
		p = p[:remain]
		w.truncated = true
	}
	w.buf.Write(p)
	return n, nil
}

// Output returns the captured bytes, with the truncation marker appended when
// the ceiling was hit.
func (w *limitWriter) Output() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.truncated {
		return w.buf.String() + TruncationMarker
	}
	return w.buf.String()
}
