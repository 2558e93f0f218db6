/*
Copyright (c) 2025 twinfer.com contact@twinfer.com Copyright (c) 2025 Khalid Daoud mohamed.khalid@gmail.com

Redistribution and use in source and binary forms, with or without modification, are permitted provided that the following conditions are met:

Redistributions of source code must retain the above copyright notice, this list of conditions and the following disclaimer.
Redistributions in binary form must reproduce the above copyright notice, this list of conditions and the following disclaimer in the documentation and/or other materials provided with the distribution.
Neither the name of the copyright holder nor the names of its contributors may be used to endorse or promote products derived from this software without specific prior written permission.
*/

// Package wildcard contains optimized wildcard matching implementations.
// This file provides the case-sensitive literal+gap matching engine.
// It works on raw bytes: a gap accepts every byte value, newlines included.
// For ASCII case-insensitive matching, see matchfold.go.
package wildcard

import "bytes"

// Index returns the smallest position p >= from at which the whole pattern
// fits inside buf and matches, or -1 if there is none.
//
// The search is driven by the longest literal segment (the anchor): every
// occurrence of the anchor found with bytes.Index yields one candidate start,
// which is then verified against the remaining segments in place. Gaps are
// never compared, so the cost per candidate is proportional to the literal
// bytes only. A pattern made of gaps alone matches at from.
func (p *Pattern) Index(buf []byte, from int) int {
	if from < 0 {
		from = 0
	}
	last := len(buf) - p.length // last start at which a match still fits
	if last < from {
		return -1
	}
	if p.anchor < 0 {
		return from
	}

	a := p.segments[p.anchor]
	for start := from; start <= last; start++ {
		// Every anchor occurrence in this window corresponds to a start <= last.
		window := buf[start+a.Position : last+a.Position+len(a.Literal)]
		i := p.indexLiteral(window, a.Literal)
		if i < 0 {
			return -1
		}
		start += i
		if p.matchAt(buf, start) {
			return start
		}
	}
	return -1
}

// Match reports whether the pattern matches the first Len bytes of s.
func (p *Pattern) Match(s []byte) bool {
	return len(s) >= p.length && p.matchAt(s, 0)
}

// matchAt verifies every literal segment of a match starting at start.
// The caller guarantees start+p.length <= len(buf).
func (p *Pattern) matchAt(buf []byte, start int) bool {
	for i := range p.segments {
		seg := &p.segments[i]
		if seg.Type == SegmentGap || len(seg.Literal) == 0 {
			continue
		}
		pos := start + seg.Position
		if !p.equalLiteral(buf[pos:pos+len(seg.Literal)], seg.Literal) {
			return false
		}
	}
	return true
}

func (p *Pattern) indexLiteral(s, lit []byte) int {
	if p.fold {
		return indexFold(s, lit)
	}
	return bytes.Index(s, lit)
}

func (p *Pattern) equalLiteral(s, lit []byte) bool {
	if p.fold {
		return equalFold(s, lit)
	}
	return bytes.Equal(s, lit)
}
