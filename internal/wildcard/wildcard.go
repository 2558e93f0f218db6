// Package wildcard contains the pattern compiler and the literal+gap matcher.
// It is intended for internal use by the parent searchbin package.
//
// A pattern is a run of literal byte segments separated by gaps, where every
// gap stands for exactly one unknown byte:
//
//	hex  "31??33"  becomes  "1", gap, "3"
//	text "A?C"     becomes  "A", gap, "C"
//	text "A??C"    becomes  "A", gap, "", gap, "C"
package wildcard

import (
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/twinfer/searchbin/internal/searcherr"
)

// DefaultBufferSize is the window size used when none is given, or when the
// requested one cannot hold two copies of the pattern.
const DefaultBufferSize = 1 << 23

const (
	hexPrefix = "0x"
	hexGap    = "??"
	textGap   = "?"
)

// ErrEmptyPattern indicates a pattern that would match zero bytes.
var ErrEmptyPattern = errors.New("pattern is empty")

type SegmentType int

const (
	SegmentLiteral SegmentType = iota
	SegmentGap                 // one unknown byte
)

func (t SegmentType) String() string {
	if t == SegmentGap {
		return "gap"
	}
	return "literal"
}

// PatternSegment represents one compiled segment of the pattern.
// Position is the offset of the segment from the start of a match.
type PatternSegment struct {
	Type     SegmentType
	Literal  []byte
	Position int
}

// Pattern is a compiled, immutable search pattern. It is safe for
// concurrent use.
type Pattern struct {
	segments []PatternSegment
	length   int
	anchor   int // index of the longest literal segment, -1 when all are empty
	fold     bool
}

// New builds a pattern from literal parts; a gap is placed between every
// two consecutive parts. Parts may be empty.
func New(parts [][]byte) (*Pattern, error) {
	p := &Pattern{anchor: -1}
	longest := 0
	for i, part := range parts {
		if i > 0 {
			p.segments = append(p.segments, PatternSegment{Type: SegmentGap, Position: p.length})
			p.length++
		}
		lit := make([]byte, len(part))
		copy(lit, part)
		p.segments = append(p.segments, PatternSegment{Type: SegmentLiteral, Literal: lit, Position: p.length})
		if len(lit) > longest {
			longest = len(lit)
			p.anchor = len(p.segments) - 1
		}
		p.length += len(lit)
	}
	if p.length == 0 {
		return nil, searcherr.New(searcherr.NoPattern, "", ErrEmptyPattern)
	}
	return p, nil
}

// ParseHex compiles a hex pattern such as "0xdead??ef". Whitespace between
// byte pairs is ignored.
func ParseHex(s string) (*Pattern, error) {
	runs := strings.Split(strings.TrimPrefix(s, hexPrefix), hexGap)
	parts := make([][]byte, len(runs))
	for i, run := range runs {
		b, err := decodeHexRun(run)
		if err != nil {
			return nil, searcherr.New(searcherr.PatternDecode, s, err)
		}
		parts[i] = b
	}
	return New(parts)
}

func decodeHexRun(run string) ([]byte, error) {
	var out []byte
	for _, field := range strings.Fields(run) {
		b, err := hex.DecodeString(field)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// ParseText compiles a text pattern in which every '?' is a gap. Each run
// between gaps is encoded with enc; a nil enc keeps the bytes of s as they
// are, which is UTF-8 for any valid Go string literal.
func ParseText(s string, enc encoding.Encoding) (*Pattern, error) {
	runs := strings.Split(s, textGap)
	parts := make([][]byte, len(runs))
	for i, run := range runs {
		if enc == nil {
			parts[i] = []byte(run)
			continue
		}
		b, err := enc.NewEncoder().Bytes([]byte(run))
		if err != nil {
			return nil, searcherr.New(searcherr.PatternDecode, s, err)
		}
		parts[i] = b
	}
	return New(parts)
}

// ReadFile compiles the whole content of the named file into a single
// literal. Wildcards are not interpreted.
func ReadFile(name string) (*Pattern, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, searcherr.New(searcherr.PatternFile, name, err)
	}
	return New([][]byte{data})
}

// Len returns the number of bytes a match spans: the literal bytes plus one
// per gap.
func (p *Pattern) Len() int { return p.length }

// Segments returns a copy of the compiled segments.
func (p *Pattern) Segments() []PatternSegment {
	out := make([]PatternSegment, len(p.segments))
	copy(out, p.segments)
	return out
}

// BufferSize validates a requested window size. A positive request is kept
// when it holds at least two copies of the pattern, otherwise it falls back
// to DefaultBufferSize. A zero request yields max(2*Len, DefaultBufferSize).
func (p *Pattern) BufferSize(requested int64) (int64, error) {
	floor := 2 * int64(p.length)
	switch {
	case requested > 0 && requested >= floor:
		return requested, nil
	case requested > 0:
		requested = DefaultBufferSize
	default:
		requested = max(floor, DefaultBufferSize)
	}
	if requested < floor {
		return 0, searcherr.New(searcherr.InvalidBufferSize, strconv.FormatInt(floor, 10), nil)
	}
	return requested, nil
}

// String renders the pattern in hex notation with "??" for gaps.
func (p *Pattern) String() string {
	var sb strings.Builder
	for _, seg := range p.segments {
		if seg.Type == SegmentGap {
			sb.WriteString(hexGap)
			continue
		}
		sb.WriteString(hex.EncodeToString(seg.Literal))
	}
	return sb.String()
}
