package wildcard

import (
	"bytes"
	"testing"
)

func mustHex(t *testing.T, s string) *Pattern {
	t.Helper()
	p, err := ParseHex(s)
	if err != nil {
		t.Fatalf("ParseHex(%q): %v", s, err)
	}
	return p
}

func mustText(t *testing.T, s string) *Pattern {
	t.Helper()
	p, err := ParseText(s, nil)
	if err != nil {
		t.Fatalf("ParseText(%q): %v", s, err)
	}
	return p
}

// TestIndex validates literal and gap matching for text patterns,
// including starts past 0 and matches that only partially fit.
func TestIndex(t *testing.T) {
	cases := []struct {
		s       string
		pattern string
		from    int
		result  int
	}{
		// --- Literal patterns ---
		{"hello world", "world", 0, 6},
		{"hello world", "hello", 0, 0},
		{"hello world", "hello", 1, -1},
		{"hello world", "xyz", 0, -1},
		{"AAA", "AA", 0, 0},
		{"AAA", "AA", 1, 1},
		{"AAA", "AA", 2, -1},
		{"", "a", 0, -1},
		{"abc", "abcd", 0, -1},

		// --- Gap patterns ---
		{"cat", "c?t", 0, 0},
		{"caat", "c?t", 0, -1},
		{"ct", "c?t", 0, -1},
		{"xxcuts", "c??s", 0, 2},
		{"c\nt", "c?t", 0, 0},
		{"abc", "?", 1, 1},
		{"abc", "??", 2, -1},
		{"abc", "???", 0, 0},
		{"abc", "????", 0, -1},

		// --- Anchor on a later, longer literal ---
		{"a-xyz a+xyz", "a?xyz", 0, 0},
		{"b-xyz a+xyz", "a?xyz", 0, 6},
		{"b-xyz a+xy", "a?xyz", 0, -1},

		// --- Trailing gap must fit inside the buffer ---
		{"abcab", "ab?", 0, 0},
		{"abcab", "ab?", 1, -1},
		{"xab", "ab?", 0, -1},

		// --- Negative from ---
		{"abc", "b", -5, 1},
	}

	for i, c := range cases {
		p := mustText(t, c.pattern)
		if got := p.Index([]byte(c.s), c.from); got != c.result {
			t.Errorf("Case %d: Index(%q, %q, %d) = %d, want %d", i, c.s, c.pattern, c.from, got, c.result)
		}
	}
}

// TestIndexHexGap checks the "AB??CD" property: any one byte between the
// literals matches, no byte at all does not.
func TestIndexHexGap(t *testing.T) {
	p := mustHex(t, "AB??CD")

	for v := 0; v < 256; v++ {
		buf := []byte{0x00, 0xab, byte(v), 0xcd, 0x00}
		if got := p.Index(buf, 0); got != 1 {
			t.Fatalf("middle byte %#x: Index = %d, want 1", v, got)
		}
	}

	if got := p.Index([]byte{0xab, 0xcd, 0x00}, 0); got != -1 {
		t.Errorf("missing middle byte: Index = %d, want -1", got)
	}
}

func TestIndexAllPositions(t *testing.T) {
	p := mustHex(t, "01??03")
	buf := []byte{1, 2, 3, 1, 1, 3, 3, 1, 9, 3}

	var got []int
	for m := p.Index(buf, 0); m >= 0; m = p.Index(buf, m+1) {
		got = append(got, m)
	}
	want := []int{0, 3, 4, 7}
	if !equalInts(got, want) {
		t.Errorf("matches = %v, want %v", got, want)
	}
}

func TestMatch(t *testing.T) {
	p := mustText(t, "a?c")
	if !p.Match([]byte("abcdef")) {
		t.Error("expected prefix match")
	}
	if p.Match([]byte("ab")) {
		t.Error("expected no match on short input")
	}
}

func TestIndexFold(t *testing.T) {
	cases := []struct {
		s       string
		pattern string
		result  int
	}{
		{"xx HELLO", "hello", 3},
		{"xx hello", "HELLO", 3},
		{"Hel?o", "hEL?O", 0},
		{"HeLp", "he?P", 0},
		{"h\xc9llo", "h\xe9llo", -1}, // only ASCII letters fold
		{"abc", "xyz", -1},
	}

	for i, c := range cases {
		p := mustText(t, c.pattern).FoldCase()
		if !p.Folded() {
			t.Fatalf("Case %d: FoldCase did not mark the pattern", i)
		}
		if got := p.Index([]byte(c.s), 0); got != c.result {
			t.Errorf("Case %d: Index(%q, %q) = %d, want %d", i, c.s, c.pattern, got, c.result)
		}
	}
}

func TestFoldCaseKeepsOriginal(t *testing.T) {
	p := mustText(t, "ABC")
	_ = p.FoldCase()
	if p.Folded() || p.Index([]byte("abc"), 0) != -1 {
		t.Error("FoldCase must not modify the receiver")
	}
}

func TestIndexBinary(t *testing.T) {
	needle := []byte{0x00, 0xff, 0x0a, 0x0d}
	p, err := New([][]byte{needle})
	if err != nil {
		t.Fatal(err)
	}
	hay := bytes.Repeat([]byte{0xff}, 100)
	copy(hay[57:], needle)
	if got := p.Index(hay, 0); got != 57 {
		t.Errorf("Index = %d, want 57", got)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
