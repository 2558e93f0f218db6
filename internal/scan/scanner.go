// Package scan streams a seekable source through a bounded window and
// reports every offset at which a compiled pattern matches.
//
// The window holds bsize bytes. When it has been searched, the first
// read_size = bsize - Len bytes are dropped and read_size fresh bytes are
// appended, so the last Len bytes of the previous window stay in front of the
// new data. Any match that starts before the refill boundary and ends after it
// is therefore wholly inside the new window. bsize >= 2*Len keeps
// read_size >= Len, so each refill advances by at least one full pattern.
//
// The window is never allocated larger than what remains of the source after
// the start offset, so a generous bsize over a small source stays cheap. A
// window that would still exceed MaxBufferSize is refused.
package scan

import (
	"context"
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/twinfer/searchbin/internal/searcherr"
	"github.com/twinfer/searchbin/internal/telemetry"
	"github.com/twinfer/searchbin/internal/wildcard"
)

// MaxBufferSize is the largest window a search allocates.
const MaxBufferSize = min(1<<32, math.MaxInt)

// ErrBufferTooLarge is wrapped by the InvalidBufferSize error returned when
// the window needed for a source exceeds MaxBufferSize.
var ErrBufferTooLarge = errors.New("window exceeds the maximum buffer size")

// Source is the byte source the scanner reads from. *os.File satisfies it.
type Source interface {
	io.ReadSeeker
	Name() string
}

// Params bound a search. Zero values mean: start at 0, no end bound, no
// match limit, derived buffer size.
type Params struct {
	Start      int64
	End        int64 // matches starting after End are not reported; ignored when <= Start
	MaxMatches int64
	BufferSize int64
}

func (p Params) validate() error {
	for _, f := range []struct {
		name string
		v    int64
	}{
		{"start", p.Start},
		{"end", p.End},
		{"max-matches", p.MaxMatches},
		{"buffer-size", p.BufferSize},
	} {
		if f.v < 0 {
			return searcherr.New(searcherr.InvalidNumber, f.name+"="+strconv.FormatInt(f.v, 10), nil)
		}
	}
	return nil
}

// Scanner runs searches. It holds no per-search state and may be shared.
type Scanner struct {
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

// New returns a scanner logging to logger and recording to metrics, which
// may be nil.
func New(logger zerolog.Logger, metrics *telemetry.Metrics) *Scanner {
	return &Scanner{logger: logger, metrics: metrics}
}

// Collect runs a search and returns all offsets in ascending order. On error
// no offsets are returned.
func (s *Scanner) Collect(ctx context.Context, src Source, pat *wildcard.Pattern, params Params) ([]int64, error) {
	out := []int64{}
	err := s.Scan(ctx, src, pat, params, func(off int64) bool {
		out = append(out, off)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Scan searches src for pat and calls yield with each absolute match offset
// in strictly ascending order. The search stops when yield returns false,
// when MaxMatches offsets have been yielded, when the next match would start
// after End, or at end of input. Seek and read failures are returned as
// SourceRead errors.
func (s *Scanner) Scan(ctx context.Context, src Source, pat *wildcard.Pattern, params Params, yield func(int64) bool) (err error) {
	if err := params.validate(); err != nil {
		return err
	}
	bsize, err := pat.BufferSize(params.BufferSize)
	if err != nil {
		return err
	}

	w := &window{
		src:    src,
		plen:   pat.Len(),
		offset: params.Start,
	}
	end := params.End
	if end <= params.Start {
		end = 0
	}
	remaining := params.MaxMatches

	log := s.logger.With().Str("source", src.Name()).Int64("bsize", bsize).Logger()
	log.Debug().
		Stringer("pattern", pat).
		Int64("start", params.Start).
		Int64("end", end).
		Int64("max_matches", remaining).
		Msg("search started")

	found := 0
	defer func() {
		s.metrics.Done(ctx, found, err)
		if err != nil {
			log.Debug().Err(err).Int("matches", found).Msg("search failed")
			return
		}
		log.Debug().Int("matches", found).Int64("offset", w.offset).Msg("search finished")
	}()

	size, err := windowSize(src, params.Start, bsize, w.plen)
	if err != nil {
		return err
	}
	w.readSize = size - w.plen
	w.buf = make([]byte, 0, size)

	n, err := w.fill()
	if err != nil {
		return err
	}
	s.metrics.Read(ctx, n, false)

	m := pat.Index(w.buf, 0)
	for {
		if m < 0 {
			next := w.examined()
			w.offset += int64(w.readSize)
			if end > 0 && w.offset > end {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := w.refill()
			if err != nil {
				return err
			}
			s.metrics.Read(ctx, n, true)
			log.Trace().Int64("offset", w.offset).Int("read", n).Int("window", len(w.buf)).Msg("window refilled")

			// Positions already examined in the previous window are not
			// searched again.
			m = pat.Index(w.buf, max(0, next-w.readSize))
		} else {
			off := w.offset + int64(m)
			if end > 0 && off > end {
				return nil
			}
			found++
			if !yield(off) {
				return nil
			}
			if remaining > 0 {
				remaining--
				if remaining == 0 {
					return nil
				}
			}
			m = pat.Index(w.buf, m+1)
		}

		if len(w.buf) <= w.plen {
			return nil
		}
	}
}

// windowSize caps bsize to the bytes src holds after start, but never below
// two pattern lengths. src is left positioned at start.
func windowSize(src Source, start, bsize int64, plen int) (int, error) {
	last, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, searcherr.New(searcherr.SourceRead, src.Name(), err)
	}
	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return 0, searcherr.New(searcherr.SourceRead, src.Name(), err)
	}
	size := min(bsize, max(last-start, 2*int64(plen)))
	if size > MaxBufferSize {
		return 0, searcherr.New(searcherr.InvalidBufferSize, strconv.FormatInt(size, 10), ErrBufferTooLarge)
	}
	return int(size), nil
}
