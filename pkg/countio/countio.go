package countio

import "io"

// A Writer instruments an io.Writer with a byte count of
// everything passed through it.
type Writer struct {
	w io.Writer
	n int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (cw *Writer) Write(b []byte) (int, error) {
	n, err := cw.w.Write(b)
	cw.n += int64(n)
	return n, err
}

func (cw *Writer) Count() int64 {
	return cw.n
}
