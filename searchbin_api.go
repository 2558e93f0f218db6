// Package searchbin finds the offsets of a byte pattern inside large binary
// files without loading them into memory.
//
// Patterns come in three notations:
//
//   - hex:  "0xdead??ef" where "??" stands for one unknown byte
//   - text: "ab?d" where "?" stands for one unknown byte
//   - file: the whole content of a file, taken literally
//
// The file is streamed through a window of BufferSize bytes. Matches that
// cross a window boundary are found, overlapping matches are all reported,
// and offsets are returned in ascending order.
package searchbin

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/text/encoding"

	"github.com/twinfer/searchbin/internal/scan"
	"github.com/twinfer/searchbin/internal/searcherr"
	"github.com/twinfer/searchbin/internal/telemetry"
	"github.com/twinfer/searchbin/internal/wildcard"
)

// NotFound is returned by the SearchOne functions when there is no match.
const NotFound int64 = -1

// DefaultBufferSize is the window size used when Options.BufferSize is
// zero or too small for the pattern.
const DefaultBufferSize = wildcard.DefaultBufferSize

// Pattern is a compiled pattern. It is immutable and safe for concurrent use.
type Pattern = wildcard.Pattern

// Source is a seekable, named byte source. *os.File satisfies it.
type Source = scan.Source

// Error is the error type returned for every failure. Use errors.Is with
// one of the Err kinds below to classify it.
type Error = searcherr.Error

// Kind classifies an Error.
type Kind = searcherr.Kind

const (
	ErrMultiplePatterns  = searcherr.MultiplePatterns
	ErrNoPattern         = searcherr.NoPattern
	ErrPatternDecode     = searcherr.PatternDecode
	ErrInvalidBufferSize = searcherr.InvalidBufferSize
	ErrInvalidNumber     = searcherr.InvalidNumber
	ErrPatternFile       = searcherr.PatternFile
	ErrSourceOpen        = searcherr.SourceOpen
	ErrSourceRead        = searcherr.SourceRead
)

// Spec selects the pattern to search for. Exactly one of Hex, Text and File
// must be set.
type Spec struct {
	Hex  string
	Text string
	File string

	// Encoding encodes Text patterns. Nil keeps the UTF-8 bytes.
	Encoding encoding.Encoding
	// IgnoreCase matches ASCII letters without regard to case.
	IgnoreCase bool
}

// Compile validates the spec and compiles its pattern. No file other than
// a pattern File is touched.
func (s Spec) Compile() (*Pattern, error) {
	set := 0
	for _, v := range []string{s.Hex, s.Text, s.File} {
		if v != "" {
			set++
		}
	}
	switch {
	case set > 1:
		return nil, searcherr.New(searcherr.MultiplePatterns, "", nil)
	case set == 0:
		return nil, searcherr.New(searcherr.NoPattern, "", nil)
	}

	var (
		p   *Pattern
		err error
	)
	switch {
	case s.File != "":
		p, err = wildcard.ReadFile(s.File)
	case s.Text != "":
		p, err = wildcard.ParseText(s.Text, s.Encoding)
	default:
		p, err = wildcard.ParseHex(s.Hex)
	}
	if err != nil {
		return nil, err
	}
	if s.IgnoreCase {
		p = p.FoldCase()
	}
	return p, nil
}

// CompileHex compiles a hex pattern such as "0x41??43".
func CompileHex(hex string) (*Pattern, error) {
	return Spec{Hex: hex}.Compile()
}

// CompileText compiles a UTF-8 text pattern in which '?' is a gap.
func CompileText(text string) (*Pattern, error) {
	return Spec{Text: text}.Compile()
}

// Options bound a search. The zero value searches the whole source for
// every match with a derived buffer size and no logging.
type Options struct {
	// MaxMatches stops the search after this many matches; 0 means no limit.
	MaxMatches int64
	// Start is the absolute offset the search begins at.
	Start int64
	// End is the last offset at which a match may start; 0, or any value
	// not greater than Start, means no limit.
	End int64
	// BufferSize is the window size. It is raised to DefaultBufferSize when
	// smaller than twice the pattern length. No more than the rest of the
	// source is ever allocated.
	BufferSize int64

	// Logger receives debug and trace events; nil disables logging.
	Logger *zerolog.Logger
	// Meter records search metrics; nil uses the global meter provider.
	Meter metric.Meter
}

func (o Options) params() scan.Params {
	return scan.Params{
		Start:      o.Start,
		End:        o.End,
		MaxMatches: o.MaxMatches,
		BufferSize: o.BufferSize,
	}
}

func (o Options) scanner() (*scan.Scanner, error) {
	logger := zerolog.Nop()
	if o.Logger != nil {
		logger = *o.Logger
	}
	metrics, err := telemetry.New(o.Meter)
	if err != nil {
		return nil, err
	}
	return scan.New(logger, metrics), nil
}

// Scan searches src and calls fn with each match offset as soon as it is
// found. Returning false from fn ends the search early without error.
func Scan(ctx context.Context, src Source, pat *Pattern, opts Options, fn func(offset int64) bool) error {
	s, err := opts.scanner()
	if err != nil {
		return err
	}
	return s.Scan(ctx, src, pat, opts.params(), fn)
}

// Search returns every match offset of pat in src in ascending order. If
// the search fails, no offsets are returned.
func Search(ctx context.Context, src Source, pat *Pattern, opts Options) ([]int64, error) {
	s, err := opts.scanner()
	if err != nil {
		return nil, err
	}
	return s.Collect(ctx, src, pat, opts.params())
}

// SearchPath opens the named file and searches it.
func SearchPath(ctx context.Context, name string, pat *Pattern, opts Options) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, searcherr.New(searcherr.SourceOpen, name, err)
	}
	defer f.Close()
	return Search(ctx, f, pat, opts)
}

// SearchSpec compiles spec and searches the named file. The pattern is
// compiled before the file is opened.
func SearchSpec(ctx context.Context, name string, spec Spec, opts Options) ([]int64, error) {
	pat, err := spec.Compile()
	if err != nil {
		return nil, err
	}
	return SearchPath(ctx, name, pat, opts)
}

// SearchHex returns the offsets of a hex pattern in the named file.
func SearchHex(name, hex string, opts Options) ([]int64, error) {
	return SearchSpec(context.Background(), name, Spec{Hex: hex}, opts)
}

// SearchText returns the offsets of a text pattern in the named file.
func SearchText(name, text string, opts Options) ([]int64, error) {
	return SearchSpec(context.Background(), name, Spec{Text: text}, opts)
}

// SearchOneHex returns the first offset of a hex pattern in the named file,
// or NotFound.
func SearchOneHex(name, hex string, opts Options) (int64, error) {
	return searchOne(name, Spec{Hex: hex}, opts)
}

// SearchOneText returns the first offset of a text pattern in the named
// file, or NotFound.
func SearchOneText(name, text string, opts Options) (int64, error) {
	return searchOne(name, Spec{Text: text}, opts)
}

func searchOne(name string, spec Spec, opts Options) (int64, error) {
	opts.MaxMatches = 1
	offsets, err := SearchSpec(context.Background(), name, spec, opts)
	if err != nil {
		return NotFound, err
	}
	if len(offsets) == 0 {
		return NotFound, nil
	}
	return offsets[0], nil
}
