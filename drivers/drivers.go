// Builds upon the soc package to provide device drivers and common interfaces
// between them.
package drivers

import (
	"bytes"
	"io"
)

// FIXME SystemWriter needs go:nosplit pragma
type SystemWriter func(int, []byte) int

// Returns a SystemWriter from an io.Writer for rtos.SetSystemWriter().  Line
// feeds are sent as CR LF, which is what a terminal on the other end of a
// serial line expects.
func NewSystemWriter(w io.Writer) SystemWriter {
	return func(fd int, p []byte) int {
		n, _ := NewCRLFWriter(w).Write(p)
		return n
	}
}

type crlfWriter struct {
	w io.Writer
}

// NewCRLFWriter returns a writer that inserts a carriage return before each
// line feed written to w.
func NewCRLFWriter(w io.Writer) io.Writer {
	return crlfWriter{w}
}

// Write returns the number of bytes of p written, inserted carriage returns
// aren't counted.
func (c crlfWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			m, err := c.w.Write(p)
			return n + m, err
		}
		m, err := c.w.Write(p[:i])
		n += m
		if err != nil {
			return n, err
		}
		if _, err = c.w.Write([]byte("\r\n")); err != nil {
			return n, err
		}
		n++
		p = p[i+1:]
	}
	return n, nil
}
