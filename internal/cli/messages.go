package cli

import (
	"errors"
	"fmt"

	"github.com/twinfer/searchbin/internal/scan"
	"github.com/twinfer/searchbin/internal/searcherr"
)

// message renders the user-facing explanation for a failure.
func message(e *searcherr.Error) string {
	switch e.Kind {
	case searcherr.MultiplePatterns:
		return "Cannot search for multiple patterns. '-t -p -f'"
	case searcherr.NoPattern:
		return "No pattern to search for was supplied. '-t -p -f'"
	case searcherr.PatternDecode:
		return fmt.Sprintf("The pattern string %q is invalid.", e.Name)
	case searcherr.InvalidBufferSize:
		if errors.Is(e.Err, scan.ErrBufferTooLarge) {
			return fmt.Sprintf("The buffer size must be at most %d bytes, %s needed.", int64(scan.MaxBufferSize), e.Name)
		}
		return fmt.Sprintf("The buffer size must be at least %s bytes.", e.Name)
	case searcherr.InvalidNumber:
		return fmt.Sprintf("Size parameters (-b -s -e -m) must be in decimal format: %s", e.Name)
	case searcherr.PatternFile:
		return fmt.Sprintf("No pattern file found named: %s", e.Name)
	case searcherr.SourceOpen:
		return fmt.Sprintf("Failed opening file: %s", e.Name)
	case searcherr.SourceRead:
		return fmt.Sprintf("Failed reading from file: %s", e.Name)
	}
	return e.Error()
}
