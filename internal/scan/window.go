package scan

import (
	"errors"
	"io"

	"github.com/twinfer/searchbin/internal/searcherr"
)

// window is the buffer of one search, anchored at the absolute offset of its
// first byte.
type window struct {
	src      Source
	plen     int
	readSize int
	buf      []byte
	offset   int64
}

// fill performs the initial read of a whole window.
func (w *window) fill() (int, error) {
	n, err := w.read(w.buf[:cap(w.buf)])
	w.buf = w.buf[:n]
	return n, err
}

// refill drops the first readSize bytes and appends up to readSize new ones.
// A window shorter than readSize is emptied.
func (w *window) refill() (int, error) {
	drop := min(w.readSize, len(w.buf))
	kept := copy(w.buf[:cap(w.buf)], w.buf[drop:])
	n, err := w.read(w.buf[kept : kept+w.readSize])
	w.buf = w.buf[:kept+n]
	return n, err
}

// examined returns the number of leading positions of the current window at
// which a match has been ruled out once Index has returned -1.
func (w *window) examined() int {
	return max(0, len(w.buf)-w.plen+1)
}

// read fills p unless the source ends first. Reaching the end is not an error.
func (w *window) read(p []byte) (int, error) {
	n, err := io.ReadFull(w.src, p)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, searcherr.New(searcherr.SourceRead, w.src.Name(), err)
	}
	return n, nil
}
