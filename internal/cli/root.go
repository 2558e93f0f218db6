// Package cli implements the searchbin command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/twinfer/searchbin"
	"github.com/twinfer/searchbin/internal/logging"
	"github.com/twinfer/searchbin/internal/searcherr"
	"github.com/twinfer/searchbin/pkg/version"
)

// Exit statuses.
const (
	ExitOK          = 0
	ExitUsage       = 2
	ExitError       = 128
	ExitInterrupted = 130
)

type options struct {
	hex  string
	text string
	file string

	bufferSize string
	start      string
	end        string
	maxMatches string

	ignoreCase bool
	utf16le    bool
	utf16be    bool

	logLevel string
	debug    bool
}

// NewRootCmd creates the searchbin command.
func NewRootCmd() *cobra.Command {
	var opts options
	logCfg := logging.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "searchbin [-p HEX | -t TEXT | -f FILE] [flags] FILE...",
		Short: "Search binary files for byte patterns",
		Long: `Search files of any size for a hex, text or file pattern and print
the offset of every match.

Wildcards:
  -p "0xff??aa"   "??" stands for one unknown byte
  -t "ab?d"       "?" stands for one unknown byte
  -f pattern.bin  the whole file is searched for literally`,
		Version:       version.Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logCfg.Level = opts.logLevel
			if opts.debug && logging.ParseLevel(opts.logLevel) > zerolog.DebugLevel {
				logCfg.Level = "debug"
			}
			logCfg.Output = cmd.ErrOrStderr()
			logCfg.Pretty = logging.IsTerminal(logCfg.Output)
			logger := logging.New(logCfg).With().Str("component", "searchbin").Logger()
			return run(cmd.Context(), cmd.OutOrStdout(), logger, opts, args)
		},
	}

	addFlags(cmd.Flags(), &opts, logCfg.Level)
	cmd.MarkFlagsMutuallyExclusive("utf16le", "utf16be")

	cmd.SetVersionTemplate(versionTemplate())
	return cmd
}

func versionTemplate() string {
	return fmt.Sprintf("searchbin version {{.Version}}\ncommit: %s\nbuilt: %s\ngo: %s\n",
		version.GitCommit, version.BuildDate, version.GoVersion)
}

func addFlags(flags *pflag.FlagSet, opts *options, level string) {
	flags.StringVarP(&opts.hex, "pattern", "p", "", `hex pattern, "??" matches one unknown byte`)
	flags.StringVarP(&opts.text, "text", "t", "", `text pattern, "?" matches one unknown byte`)
	flags.StringVarP(&opts.file, "file", "f", "", "file whose whole content is the pattern")
	flags.StringVarP(&opts.bufferSize, "buffer-size", "b", "", "read buffer size in bytes (default max(2*pattern length, 8MiB))")
	flags.StringVarP(&opts.start, "start", "s", "", "offset to start searching at")
	flags.StringVarP(&opts.end, "end", "e", "", "last offset at which a match may start")
	flags.StringVarP(&opts.maxMatches, "max-matches", "m", "", "stop after this many matches (0 = all)")
	flags.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "match ASCII letters regardless of case")
	flags.BoolVar(&opts.utf16le, "utf16le", false, "encode text patterns as UTF-16LE")
	flags.BoolVar(&opts.utf16be, "utf16be", false, "encode text patterns as UTF-16BE")
	flags.StringVar(&opts.logLevel, "log-level", level, "log level (trace, debug, info, warn, error); env "+logging.LevelEnv)
	flags.BoolVar(&opts.debug, "debug", false, "log the full error chain instead of the version banner")
}

// Run executes the command with args and returns the exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return report(stderr, err, debug)
}

func run(ctx context.Context, stdout io.Writer, logger zerolog.Logger, opts options, files []string) error {
	spec := searchbin.Spec{
		Hex:        opts.hex,
		Text:       opts.text,
		File:       opts.file,
		Encoding:   opts.encoding(),
		IgnoreCase: opts.ignoreCase,
	}
	pat, err := spec.Compile()
	if err != nil {
		return err
	}

	sopts, err := opts.searchOptions()
	if err != nil {
		return err
	}
	sopts.BufferSize, err = pat.BufferSize(sopts.BufferSize)
	if err != nil {
		return err
	}
	sopts.Logger = &logger

	logger.Debug().
		Int("pattern_len", pat.Len()).
		Int64("bsize", sopts.BufferSize).
		Strs("files", files).
		Msg("searching")

	for _, name := range files {
		offsets, err := searchbin.SearchPath(ctx, name, pat, sopts)
		if err != nil {
			return err
		}
		for _, off := range offsets {
			if len(files) > 1 {
				_, _ = fmt.Fprintf(stdout, "%s: %d\n", name, off)
				continue
			}
			_, _ = fmt.Fprintf(stdout, "%d\n", off)
		}
	}
	return nil
}

func (o options) encoding() encoding.Encoding {
	switch {
	case o.utf16le:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case o.utf16be:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return nil
}

// searchOptions parses the numeric flags. Unset flags are zero.
func (o options) searchOptions() (searchbin.Options, error) {
	var sopts searchbin.Options
	for _, f := range []struct {
		name string
		val  string
		dst  *int64
	}{
		{"buffer-size", o.bufferSize, &sopts.BufferSize},
		{"max-matches", o.maxMatches, &sopts.MaxMatches},
		{"start", o.start, &sopts.Start},
		{"end", o.end, &sopts.End},
	} {
		if f.val == "" {
			continue
		}
		n, err := strconv.ParseInt(f.val, 10, 64)
		if err == nil && n < 0 {
			err = strconv.ErrRange
		}
		if err != nil {
			return sopts, searcherr.New(searcherr.InvalidNumber, f.name+"="+f.val, err)
		}
		*f.dst = n
	}
	return sopts, nil
}

// report prints err and returns the matching exit status.
func report(w io.Writer, err error, debug bool) int {
	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(w, "interrupted")
		return ExitInterrupted
	}

	var se *searcherr.Error
	if !errors.As(err, &se) {
		_, _ = fmt.Fprintf(w, "Error: %v\nRun 'searchbin --help' for usage.\n", err)
		return ExitUsage
	}

	if debug {
		_, _ = fmt.Fprintf(w, "%v\n", err)
	} else {
		_, _ = fmt.Fprintf(w, "version: %s\n", version.Version)
		if se.Err != nil {
			_, _ = fmt.Fprintf(w, "%v\n", se.Err)
		}
	}
	_, _ = fmt.Fprintf(w, "Error <%s>: %s\n", se.Kind, message(se))
	return ExitError
}
