// Package rx is a small Thompson-construction NFA regex engine, adapted
// from coregx's nfa package (nfa.go, builder.go, pikevm.go, compile.go,
// error.go). coregx parses pattern source with regexp/syntax and compiles
// the result to a byte-oriented NFA executed by a PikeVM; we keep exactly
// that shape but operate over runes (CBOR text/known-value names are
// decoded Go strings, not raw byte streams that need UTF-8-boundary
// handling) and drop capture-group tracking, since every caller here
// (Text(Regex), ByteString(BinaryRegex), KnownValue(Regex), Tagged(Regex))
// only needs a boolean "does this regex match" answer — the dCBOR pattern
// language's own Capture combinator (see package match) is what the
// surrounding system uses for named captures, not the regex engine's.
package rx

import (
	"fmt"
	"regexp/syntax"
	"unicode"
)

// StateID identifies an NFA state.
type StateID uint32

// InvalidState marks an uninitialized transition target.
const InvalidState StateID = 0xFFFFFFFF

type stateKind uint8

const (
	stateMatch stateKind = iota
	stateRuneRange
	stateSplit
	stateEpsilon
	stateBeginText
	stateEndText
	stateFail
)

// runeRange is an inclusive [lo, hi] rune range transition.
type runeRange struct {
	lo, hi rune
}

type state struct {
	kind  stateKind
	next  StateID // ByteRange/Epsilon/anchors
	left  StateID // Split
	right StateID // Split
	rng   runeRange
	alt   []runeRange // additional ranges for a rune class (sparse state)
}

// nfa is the compiled automaton for a single pattern.
type nfa struct {
	states   []state
	start    StateID
	anchored bool // pattern begins with \A or ^ (a (?m) ^ is treated the same as \A)
}

func (n *nfa) addState(s state) StateID {
	id := StateID(len(n.states))
	n.states = append(n.states, s)
	return id
}

// builder incrementally constructs an nfa, mirroring coregx's nfa.Builder.
type builder struct {
	n *nfa
}

func newBuilder() *builder {
	return &builder{n: &nfa{}}
}

func (b *builder) addState(s state) StateID { return b.n.addState(s) }

func (b *builder) patch(id StateID, target StateID) {
	st := &b.n.states[id]
	switch st.kind {
	case stateEpsilon, stateRuneRange, stateBeginText, stateEndText:
		st.next = target
	case stateSplit:
		if st.left == InvalidState {
			st.left = target
		} else if st.right == InvalidState {
			st.right = target
		}
	}
}

// frag is a compiled fragment: entry state, and the list of dangling
// "out" pointers still needing a patch target.
type frag struct {
	start StateID
	out   []danglingOut
}

type danglingOut struct {
	id   StateID
	slot int // 0 = next/left, 1 = right
}

func (b *builder) patchFrag(f frag, target StateID) {
	for _, d := range f.out {
		st := &b.n.states[d.id]
		switch st.kind {
		case stateEpsilon, stateRuneRange, stateBeginText, stateEndText:
			st.next = target
		case stateSplit:
			if d.slot == 0 {
				st.left = target
			} else {
				st.right = target
			}
		}
	}
}

// Compile parses src with regexp/syntax and compiles it to an NFA. It
// matches the first step of coregx's own meta.Compile: "Parse pattern
// using regexp/syntax."
func compile(src string, flags syntax.Flags) (*nfa, error) {
	re, err := syntax.Parse(src, flags)
	if err != nil {
		return nil, fmt.Errorf("rx: %w", err)
	}
	re = re.Simplify()

	b := newBuilder()
	c := &compiler{b: b}
	f := c.compile(re)

	match := b.addState(state{kind: stateMatch})
	b.patchFrag(f, match)

	b.n.start = f.start
	b.n.anchored = startsAnchored(re)
	return b.n, nil
}

func startsAnchored(re *syntax.Regexp) bool {
	if re.Op == syntax.OpConcat && len(re.Sub) > 0 {
		return startsAnchored(re.Sub[0])
	}
	return re.Op == syntax.OpBeginText || re.Op == syntax.OpBeginLine
}

// compiler walks a regexp/syntax.Regexp tree and emits NFA fragments,
// mirroring coregx's nfa.Compiler.compile dispatch.
type compiler struct {
	b     *builder
	depth int
}

const maxCompileDepth = 250

func (c *compiler) compile(re *syntax.Regexp) frag {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxCompileDepth {
		// Degrade to a state that never matches rather than overflow the
		// stack on pathological input; the caller already bounds pattern
		// source size via the lexer/parser layer.
		fail := c.b.addState(state{kind: stateFail})
		return frag{start: fail}
	}

	switch re.Op {
	case syntax.OpNoMatch:
		fail := c.b.addState(state{kind: stateFail})
		return frag{start: fail}
	case syntax.OpEmptyMatch:
		eps := c.b.addState(state{kind: stateEpsilon, next: InvalidState})
		return frag{start: eps, out: []danglingOut{{id: eps, slot: 0}}}
	case syntax.OpLiteral:
		return c.compileLiteral(re)
	case syntax.OpCharClass:
		return c.compileCharClass(re)
	case syntax.OpAnyCharNotNL:
		return c.compileRuneRange(0, '\n'-1, '\n'+1, maxRune)
	case syntax.OpAnyChar:
		return c.compileRuneRange(0, maxRune)
	case syntax.OpBeginLine, syntax.OpBeginText:
		st := c.b.addState(state{kind: stateBeginText, next: InvalidState})
		return frag{start: st, out: []danglingOut{{id: st, slot: 0}}}
	case syntax.OpEndLine, syntax.OpEndText:
		st := c.b.addState(state{kind: stateEndText, next: InvalidState})
		return frag{start: st, out: []danglingOut{{id: st, slot: 0}}}
	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		// Treated as a zero-width no-op; the Latin-1 byte-to-rune mapping
		// used for binary regex matching doesn't guarantee word-boundary
		// fidelity for non-ASCII byte values, and callers here never
		// depend on it.
		eps := c.b.addState(state{kind: stateEpsilon, next: InvalidState})
		return frag{start: eps, out: []danglingOut{{id: eps, slot: 0}}}
	case syntax.OpCapture:
		return c.compile(re.Sub[0])
	case syntax.OpStar:
		return c.compileStar(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpRepeat:
		return c.compileRepeat(re)
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	default:
		fail := c.b.addState(state{kind: stateFail})
		return frag{start: fail}
	}
}

const maxRune = 0x10FFFF

func (c *compiler) compileLiteral(re *syntax.Regexp) frag {
	if len(re.Rune) == 0 {
		eps := c.b.addState(state{kind: stateEpsilon, next: InvalidState})
		return frag{start: eps, out: []danglingOut{{id: eps, slot: 0}}}
	}
	var first frag
	var prevOut []danglingOut
	for i, r := range re.Rune {
		lo, hi := r, r
		var alt []runeRange
		if re.Flags&syntax.FoldCase != 0 {
			// fold-case literal: also accept every rune in r's simple
			// case-folding orbit (e.g. 'a' alongside 'A').
			for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
				alt = append(alt, runeRange{f, f})
			}
		}
		st := c.b.addState(state{kind: stateRuneRange, rng: runeRange{lo, hi}, alt: alt, next: InvalidState})
		if i == 0 {
			first = frag{start: st}
		} else {
			c.b.patch(prevOut[0].id, st)
		}
		prevOut = []danglingOut{{id: st, slot: 0}}
	}
	return frag{start: first.start, out: prevOut}
}

func (c *compiler) compileRuneRange(pairs ...rune) frag {
	var ranges []runeRange
	for i := 0; i+1 < len(pairs); i += 2 {
		ranges = append(ranges, runeRange{pairs[i], pairs[i+1]})
	}
	st := c.b.addState(state{kind: stateRuneRange, rng: ranges[0], alt: ranges[1:], next: InvalidState})
	return frag{start: st, out: []danglingOut{{id: st, slot: 0}}}
}

func (c *compiler) compileCharClass(re *syntax.Regexp) frag {
	var ranges []runeRange
	for i := 0; i+1 < len(re.Rune); i += 2 {
		ranges = append(ranges, runeRange{re.Rune[i], re.Rune[i+1]})
	}
	if len(ranges) == 0 {
		fail := c.b.addState(state{kind: stateFail})
		return frag{start: fail}
	}
	st := c.b.addState(state{kind: stateRuneRange, rng: ranges[0], alt: ranges[1:], next: InvalidState})
	return frag{start: st, out: []danglingOut{{id: st, slot: 0}}}
}

func (c *compiler) compileConcat(subs []*syntax.Regexp) frag {
	if len(subs) == 0 {
		eps := c.b.addState(state{kind: stateEpsilon, next: InvalidState})
		return frag{start: eps, out: []danglingOut{{id: eps, slot: 0}}}
	}
	first := c.compile(subs[0])
	out := first.out
	for _, sub := range subs[1:] {
		next := c.compile(sub)
		c.b.patchFrag(frag{out: out}, next.start)
		out = next.out
	}
	return frag{start: first.start, out: out}
}

func (c *compiler) compileAlternate(subs []*syntax.Regexp) frag {
	if len(subs) == 0 {
		fail := c.b.addState(state{kind: stateFail})
		return frag{start: fail}
	}
	if len(subs) == 1 {
		return c.compile(subs[0])
	}
	first := c.compile(subs[0])
	rest := c.compileAlternate(subs[1:])
	split := c.b.addState(state{kind: stateSplit, left: first.start, right: rest.start})
	out := append(append([]danglingOut{}, first.out...), rest.out...)
	return frag{start: split, out: out}
}

func (c *compiler) compileStar(sub *syntax.Regexp, lazy bool) frag {
	split := c.b.addState(state{kind: stateSplit, left: InvalidState, right: InvalidState})
	body := c.compile(sub)
	c.b.patchFrag(frag{out: body.out}, split)
	st := &c.b.n.states[split]
	if lazy {
		// lazy: prefer the "out" branch (slot 0) before looping (slot 1 = body)
		st.right = body.start
		return frag{start: split, out: []danglingOut{{id: split, slot: 0}}}
	}
	// greedy: prefer looping (slot 0 = body) before the "out" branch (slot 1)
	st.left = body.start
	return frag{start: split, out: []danglingOut{{id: split, slot: 1}}}
}

func (c *compiler) compilePlus(sub *syntax.Regexp, lazy bool) frag {
	body := c.compile(sub)
	split := c.b.addState(state{kind: stateSplit, left: InvalidState, right: InvalidState})
	c.b.patchFrag(frag{out: body.out}, split)
	st := &c.b.n.states[split]
	if lazy {
		st.right = body.start
		return frag{start: body.start, out: []danglingOut{{id: split, slot: 0}}}
	}
	st.left = body.start
	return frag{start: body.start, out: []danglingOut{{id: split, slot: 1}}}
}

func (c *compiler) compileQuest(sub *syntax.Regexp, lazy bool) frag {
	body := c.compile(sub)
	split := c.b.addState(state{kind: stateSplit, left: InvalidState, right: InvalidState})
	st := &c.b.n.states[split]
	out := append([]danglingOut{}, body.out...)
	if lazy {
		st.right = body.start
		out = append(out, danglingOut{id: split, slot: 0})
	} else {
		st.left = body.start
		out = append(out, danglingOut{id: split, slot: 1})
	}
	return frag{start: split, out: out}
}

func (c *compiler) compileRepeat(re *syntax.Regexp) frag {
	min, max := re.Min, re.Max
	sub := re.Sub[0]
	lazy := re.Flags&syntax.NonGreedy != 0

	if min == 0 && max == -1 {
		return c.compileStar(sub, lazy)
	}
	if min == 1 && max == -1 {
		return c.compilePlus(sub, lazy)
	}

	var pieces []*syntax.Regexp
	for i := 0; i < min; i++ {
		pieces = append(pieces, sub)
	}
	if max == -1 {
		pieces = append(pieces, &syntax.Regexp{Op: syntax.OpStar, Sub: []*syntax.Regexp{sub}, Flags: re.Flags})
	} else {
		for i := min; i < max; i++ {
			pieces = append(pieces, &syntax.Regexp{Op: syntax.OpQuest, Sub: []*syntax.Regexp{sub}, Flags: re.Flags})
		}
	}
	return c.compileConcat(pieces)
}
