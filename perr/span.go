// Package perr defines the span and error taxonomy shared by the lexer and
// parser.
//
// Every error produced while turning pattern source text into a Pattern
// carries a Span (or is explicitly span-less); the matcher and formatter
// never produce errors of this kind.
package perr

import "fmt"

// Span is an immutable half-open byte range into the original pattern
// source. It is carried on every token and on most errors.
type Span struct {
	Start int
	End   int
}

// NewSpan builds a Span, clamping End to Start if End < Start.
func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

// String renders a Span as "a..b", the form used throughout error text.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Join returns the smallest Span covering both s and other.
func (s Span) Join(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Offset shifts a Span by delta, used when a sub-parser parses an extracted
// substring (e.g. tagged(...) content) and must report errors relative to
// the enclosing source.
func (s Span) Offset(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}
