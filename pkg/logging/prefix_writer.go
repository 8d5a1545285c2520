package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter wraps an io.Writer and writes prefix in front of every
// complete line. Partial lines are held until their newline arrives.
type PrefixWriter struct {
	mu      sync.Mutex
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.pending = append(pw.pending, p...)
	for {
		nl := bytes.IndexByte(pw.pending, '\n')
		if nl < 0 {
			break
		}
		line := pw.pending[:nl+1]
		if err := pw.emit(line); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[nl+1:]
	}

	// Keep the backing array from growing without bound.
	if len(pw.pending) == 0 {
		pw.pending = pw.pending[:0:0]
	}
	return len(p), nil
}

func (pw *PrefixWriter) emit(line []byte) error {
	buf := make([]byte, 0, len(pw.prefix)+len(line))
	buf = append(buf, pw.prefix...)
	buf = append(buf, line...)
	_, err := pw.writer.Write(buf)
	return err
}
