package wildcard

// foldTable maps every byte to its ASCII lower-case form. Bytes outside
// 'A'..'Z' map to themselves, so binary data is never altered.
var foldTable = func() (t [256]byte) {
	for i := range t {
		t[i] = byte(i)
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = byte(c - 'A' + 'a')
	}
	return t
}()

// FoldCase returns a copy of the pattern that matches ASCII letters without
// regard to case.
func (p *Pattern) FoldCase() *Pattern {
	q := &Pattern{
		segments: make([]PatternSegment, len(p.segments)),
		length:   p.length,
		anchor:   p.anchor,
		fold:     true,
	}
	for i, seg := range p.segments {
		lit := make([]byte, len(seg.Literal))
		for j, c := range seg.Literal {
			lit[j] = foldTable[c]
		}
		seg.Literal = lit
		q.segments[i] = seg
	}
	return q
}

// Folded reports whether the pattern matches case-insensitively.
func (p *Pattern) Folded() bool { return p.fold }

// equalFold compares s against an already folded literal.
func equalFold(s, lit []byte) bool {
	if len(s) != len(lit) {
		return false
	}
	for i, c := range s {
		if foldTable[c] != lit[i] {
			return false
		}
	}
	return true
}

// indexFold is the case-insensitive counterpart of bytes.Index. lit must
// already be folded and non-empty.
func indexFold(s, lit []byte) int {
	n := len(lit)
	first := lit[0]
	for i := 0; i+n <= len(s); i++ {
		if foldTable[s[i]] != first {
			continue
		}
		if equalFold(s[i:i+n], lit) {
			return i
		}
	}
	return -1
}
