// Package searcherr defines the error kinds shared by the pattern compiler,
// the scanner and the public API.
package searcherr

import "fmt"

// Kind classifies a search failure. A Kind is itself an error so it can be
// used as the target of errors.Is.
type Kind int

const (
	MultiplePatterns Kind = iota + 1
	NoPattern
	PatternDecode
	InvalidBufferSize
	InvalidNumber
	PatternFile
	SourceOpen
	SourceRead
)

var kindNames = map[Kind]string{
	MultiplePatterns:  "Xpatterns",
	NoPattern:         "0patterns",
	PatternDecode:     "decode",
	InvalidBufferSize: "bsize",
	InvalidNumber:     "sizes",
	PatternFile:       "fpattern",
	SourceOpen:        "openfile",
	SourceRead:        "read",
}

var kindMessages = map[Kind]string{
	MultiplePatterns:  "cannot search for multiple patterns",
	NoPattern:         "no pattern to search for was supplied",
	PatternDecode:     "the pattern string is invalid",
	InvalidBufferSize: "the buffer size is too small for the pattern",
	InvalidNumber:     "size parameters must be non-negative decimal integers",
	PatternFile:       "no pattern file found",
	SourceOpen:        "failed opening file",
	SourceRead:        "failed reading from file",
}

// String returns the short code of the kind, e.g. "decode".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string {
	if s, ok := kindMessages[k]; ok {
		return s
	}
	return k.String()
}

// Error carries the kind of a failure together with the offending name (a
// pattern string, a file path, a flag) and the underlying cause, if any.
type Error struct {
	Kind Kind
	Name string
	Err  error
}

// New returns an *Error of kind k about name, wrapping err.
func New(k Kind, name string, err error) *Error {
	return &Error{Kind: k, Name: name, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
