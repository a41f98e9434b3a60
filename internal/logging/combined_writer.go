package logging

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all writers.
// A failing writer does not stop the others; errors are combined.
type CombinedWriter struct {
	Writers []io.Writer
}

// NewCombinedWriter constructs a CombinedWriter.
func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: append([]io.Writer(nil), writers...)}
}

// Write reports len(p) when at least one writer accepted the whole buffer.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		err error
		ok  bool
	)
	for _, w := range cw.Writers {
		n, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if n == len(p) {
			ok = true
		}
	}
	if ok {
		return len(p), err
	}
	return 0, err
}
