package rx

import (
	"regexp/syntax"

	"github.com/dcbor-community/dcborpath/internal/conv"
	"github.com/dcbor-community/dcborpath/internal/vecset"
)

// Engine is a compiled regex, ready to test strings or Latin-1-mapped
// byte strings. It is immutable after Compile and safe for concurrent use
// — matching only reads the compiled nfa.
type Engine struct {
	n   *nfa
	src string
}

// Compile parses and compiles a regex pattern source. Equivalent to the
// regex bodies lexed by the pattern lexer between /.../ delimiters.
func Compile(src string) (*Engine, error) {
	n, err := compile(src, syntax.Perl)
	if err != nil {
		return nil, err
	}
	return &Engine{n: n, src: src}, nil
}

// Source returns the original regex text, used by the formatter to
// round-trip Display output.
func (e *Engine) Source() string { return e.src }

// MatchString reports whether the regex matches anywhere within s.
func (e *Engine) MatchString(s string) bool {
	return e.n.matchRunes([]rune(s))
}

// MatchBytes reports whether the regex matches anywhere within b,
// interpreting b as Latin-1 (one rune per byte) — a portable way to run
// a rune-oriented regex engine over an arbitrary byte string. This gives
// correct results for any pattern expressible via \xXX escapes, negated
// classes, and anchors, but not for Unicode character classes applied
// to non-ASCII byte values.
func (e *Engine) MatchBytes(b []byte) bool {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return e.n.matchRunes(runes)
}

func runeInRange(st state, r rune) bool {
	if r >= st.rng.lo && r <= st.rng.hi {
		return true
	}
	for _, alt := range st.alt {
		if r >= alt.lo && r <= alt.hi {
			return true
		}
	}
	return false
}

// matchRunes runs Thompson's parallel NFA simulation, unanchored unless
// the pattern begins with \A or ^. Adapted from coregx's
// nfa.(*PikeVM).searchUnanchored, simplified to a boolean result: callers
// here (Text/ByteString/KnownValue/Tagged regex patterns) never need
// match offsets or capture groups, only "does it match at all".
func (n *nfa) matchRunes(runes []rune) bool {
	capacity := conv.IntToUint32(len(n.states))
	cur := vecset.New(capacity)
	next := vecset.New(capacity)
	var curList, nextList []StateID
	matched := false

	var addThread func(set *vecset.Set, list *[]StateID, id StateID, pos int)
	addThread = func(set *vecset.Set, list *[]StateID, id StateID, pos int) {
		stack := []StateID{id}
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if set.Contains(uint32(s)) {
				continue
			}
			set.Insert(uint32(s))
			st := n.states[s]
			switch st.kind {
			case stateEpsilon:
				stack = append(stack, st.next)
			case stateSplit:
				stack = append(stack, st.right, st.left)
			case stateBeginText:
				if pos == 0 {
					stack = append(stack, st.next)
				}
			case stateEndText:
				if pos == len(runes) {
					stack = append(stack, st.next)
				}
			case stateMatch:
				matched = true
				*list = append(*list, s)
			case stateRuneRange:
				*list = append(*list, s)
			}
		}
	}

	for pos := 0; pos <= len(runes); pos++ {
		if !n.anchored || pos == 0 {
			addThread(cur, &curList, n.start, pos)
		}
		if matched {
			return true
		}
		if pos == len(runes) {
			break
		}
		r := runes[pos]
		next.Clear()
		nextList = nextList[:0]
		for _, s := range curList {
			st := n.states[s]
			if st.kind == stateRuneRange && runeInRange(st, r) {
				addThread(next, &nextList, st.next, pos+1)
			}
		}
		if matched {
			return true
		}
		cur, next = next, cur
		curList, nextList = nextList, curList
	}
	return matched
}
