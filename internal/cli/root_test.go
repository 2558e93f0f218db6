package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/searchbin/internal/scan"
	"github.com/twinfer/searchbin/internal/searcherr"
	"github.com/twinfer/searchbin/pkg/version"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunPrintsOffsets(t *testing.T) {
	path := writeFile(t, "data.bin", []byte("ABxxABxxAB"))

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"hex", []string{"-p", "4142"}, "0\n4\n8\n"},
		{"hex prefix and spaces", []string{"-p", "0x41 42"}, "0\n4\n8\n"},
		{"text", []string{"-t", "AB"}, "0\n4\n8\n"},
		{"text gap", []string{"-t", "B??A"}, "1\n5\n"},
		{"hex gap", []string{"-p", "42????41"}, "1\n5\n"},
		{"max matches", []string{"-t", "AB", "-m", "2"}, "0\n4\n"},
		{"start", []string{"-t", "AB", "-s", "1"}, "4\n8\n"},
		{"start and end", []string{"-t", "AB", "-s", "1", "-e", "4"}, "4\n"},
		{"ignore case", []string{"-t", "ab", "-i"}, "0\n4\n8\n"},
		{"small buffer", []string{"-t", "xxA", "-b", "6"}, "2\n6\n"},
		{"no match", []string{"-t", "zz"}, ""},
		{"buffer far larger than file", []string{"-t", "AB", "-b", "1125899906842624"}, "0\n4\n8\n"},
		{"max int64 buffer", []string{"-t", "AB", "-b", "9223372036854775807"}, "0\n4\n8\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, append(c.args, path)...)
			assert.Equal(t, ExitOK, code, stderr)
			assert.Equal(t, c.want, stdout)
		})
	}
}

func TestRunPatternFile(t *testing.T) {
	pattern := writeFile(t, "pattern.bin", []byte{0x00, 0xff})
	data := writeFile(t, "data.bin", []byte{0xff, 0x00, 0xff, 0x00})

	code, stdout, stderr := execute(t, "-f", pattern, data)
	assert.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "1\n", stdout)
}

func TestRunUTF16(t *testing.T) {
	data := writeFile(t, "data.bin", []byte("x\x00H\x00i\x00"))

	code, stdout, _ := execute(t, "-t", "Hi", "--utf16le", data)
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "2\n", stdout)

	code, _, _ = execute(t, "-t", "Hi", "--utf16le", "--utf16be", data)
	assert.Equal(t, ExitUsage, code)
}

func TestRunMultipleFiles(t *testing.T) {
	a := writeFile(t, "a.bin", []byte("..AB"))
	b := writeFile(t, "b.bin", []byte("AB.AB"))

	code, stdout, _ := execute(t, "-t", "AB", a, b)
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, a+": 2\n"+b+": 0\n"+b+": 3\n", stdout)
}

func TestRunErrors(t *testing.T) {
	path := writeFile(t, "data.bin", []byte("ABCD"))
	missing := filepath.Join(t.TempDir(), "missing.bin")

	cases := []struct {
		name string
		args []string
		kind string
	}{
		{"no pattern", []string{path}, "0patterns"},
		{"empty pattern", []string{"-p", "", path}, "0patterns"},
		{"multiple patterns", []string{"-p", "41", "-t", "A", path}, "Xpatterns"},
		{"bad hex", []string{"-p", "4g", path}, "decode"},
		{"bad hex checked before open", []string{"-p", "4g", missing}, "decode"},
		{"missing pattern file", []string{"-f", missing, path}, "fpattern"},
		{"missing target", []string{"-t", "A", missing}, "openfile"},
		{"bad max", []string{"-t", "A", "-m", "abc", path}, "sizes"},
		{"bad start", []string{"-t", "A", "--start=-1", path}, "sizes"},
		{"hex buffer size", []string{"-t", "A", "-b", "0x10", path}, "sizes"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, c.args...)
			assert.Equal(t, ExitError, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error <"+c.kind+">: ")
			assert.Contains(t, stderr, "version: "+version.Version)
		})
	}
}

func TestRunErrorStopsAtFailingFile(t *testing.T) {
	a := writeFile(t, "a.bin", []byte("AB"))
	missing := filepath.Join(t.TempDir(), "missing.bin")

	code, stdout, stderr := execute(t, "-t", "AB", a, missing)
	assert.Equal(t, ExitError, code)
	assert.Equal(t, a+": 0\n", stdout)
	assert.Contains(t, stderr, "Failed opening file: "+missing)
}

func TestRunDebug(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.bin")

	code, _, stderr := execute(t, "-t", "A", "--debug", missing)
	assert.Equal(t, ExitError, code)
	assert.NotContains(t, stderr, "version: ")
	assert.Contains(t, stderr, "Error <openfile>: ")
}

func TestRunLogLevel(t *testing.T) {
	path := writeFile(t, "data.bin", []byte("ABAB"))

	code, stdout, stderr := execute(t, "-t", "AB", "--log-level", "debug", path)
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "0\n2\n", stdout)
	assert.Contains(t, stderr, `"message":"search finished"`, "logs to a non-terminal are JSON")

	_, _, stderr = execute(t, "-t", "AB", path)
	assert.NotContains(t, stderr, "search finished")
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := execute(t, "-t", "A")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "--help")

	code, _, _ = execute(t, "--no-such-flag", "x")
	assert.Equal(t, ExitUsage, code)

	code, stdout, _ := execute(t, "--version")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "searchbin version "+version.Version+"\ncommit: "+version.GitCommit+
		"\nbuilt: "+version.BuildDate+"\ngo: "+version.GoVersion+"\n", stdout)

	code, stdout, _ = execute(t, "--help")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "--max-matches")
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ExitInterrupted, report(&buf, context.Canceled, false))

	buf.Reset()
	err := searcherr.New(searcherr.InvalidBufferSize, "16", nil)
	assert.Equal(t, ExitError, report(&buf, err, false))
	assert.Equal(t, "version: "+version.Version+"\nError <bsize>: The buffer size must be at least 16 bytes.\n", buf.String())

	buf.Reset()
	err = searcherr.New(searcherr.InvalidBufferSize, "8589934592", scan.ErrBufferTooLarge)
	assert.Equal(t, ExitError, report(&buf, err, false))
	assert.Contains(t, buf.String(), "Error <bsize>: The buffer size must be at most ")
}
