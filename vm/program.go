// Package vm implements the compiled matcher: a Compiler that translates a
// Pattern into a Program, and a small interpreter that runs that Program
// against a decoded CBOR value, threading through the same ArrayElement,
// MapKey, MapValue, and TaggedContent axes the direct matcher (package
// match) walks directly off the AST. The two must agree on every pattern
// and haystack; vm is the "fast path" the compile step buys, package match
// is the reference semantics it is checked against.
//
// The Program is organized as a tree of linear instruction blocks rather
// than one flat address space with numeric jump targets: every axis
// transition (descending into an array element, a map key or value, tagged
// content, a repeat body, a search subtree) compiles to a reference to its
// own child Program, the way a regex engine compiles a sub-expression to
// its own sub-automaton. Within a block, instructions run in sequence and
// Split is the only branch point, exactly as in the NFA thread model this
// is adapted from.
package vm

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/internal/rx"
)

// Opcode names one instruction. Names follow the compiler's own vocabulary
// for Pattern -> bytecode translation.
type Opcode int

const (
	OpMatchPredicate Opcode = iota // test a Value-kind literal against the current leaf
	OpAny                          // Meta::Any: always succeeds
	OpLengthCheck                  // Array(Any/Length)/Map(Any/Length): test container kind and size
	OpNotMatch                     // NotMatch(k): run child in a scratch frame, invert, drop captures
	OpCapture                      // CaptureStart(i) ... CaptureEnd(i) framing around a single sub-program
	OpSplit                        // Split(children...): Or — first child to produce a result wins
	OpConcat                       // And/Sequence-as-conjunction: every child must match the same value
	OpRepeatScalar                 // Repeat(k,q) outside array-element context: gate on q.Contains(1)
	OpSearch                       // Search(k): pre-order walk, every matching node is a top-level accept
	OpArraySequence                // array-sequence backtracker over Sequence/Repeat element patterns
	OpArrayAnyElement              // existential: some array element matches child
	OpArraySingleElement           // exactly one array element, it must match child
	OpMapConstraints               // every (keyProg, valProg) pair must be satisfied by some entry
	OpTagDispatch                  // Tagged(Tag/Name/Regex): test tag, then descend into content program
)

// Instr is one compiled instruction. Only the fields relevant to its Opcode
// are populated.
type Instr struct {
	Op Opcode

	Literal *ast.Pattern // OpMatchPredicate: the Value pattern to test
	Length  ast.Interval // OpLengthCheck
	IsMap   bool         // OpLengthCheck: map vs array

	CaptureIdx int // OpCapture

	Branches []*Program // OpSplit: each alternative's program
	Children []*Program // OpConcat: every child's program, tested against the same value

	Sub *Program // OpNotMatch/OpRepeatScalar/OpSearch/OpArrayAnyElement/OpArraySingleElement body

	Quantifier ast.Quantifier // OpRepeatScalar

	SeqItems []SeqItemProgram // OpArraySequence

	Constraints []KVProgram // OpMapConstraints

	TagMode ast.Mode  // OpTagDispatch: ModeAny/ModeTag/ModeName/ModeRegex
	TagNum  uint64    // OpTagDispatch
	TagName string    // OpTagDispatch
	Rx      *rx.Engine // OpTagDispatch (ModeRegex)
}

// SeqItemProgram is one element of a compiled array-sequence pattern: its
// Capture wrapping (if any) is peeled off at compile time exactly as
// package match's extractSeqItem does, so the interpreter only has to
// drive the backtracker and record indices.
type SeqItemProgram struct {
	Item      *Program
	RepeatQ   *ast.Quantifier
	WholeCap  string
	PerCap    string
	SingleCap string
}

// KVProgram is one compiled (key, value) constraint of a Map pattern.
type KVProgram struct {
	Key   *Program
	Value *Program
}

// Program is a linear block of instructions executed in sequence; a block
// never jumps backward except through the explicit looping done inside the
// interpreter for OpRepeatScalar/OpArraySequence/OpSearch, so every block
// terminates once its haystack or its pattern is exhausted.
type Program struct {
	Instrs       []Instr
	CaptureNames []string

	// MaxSteps bounds the number of instructions Run/Matches may execute
	// against this Program before aborting with ErrStepBudgetExceeded.
	// Zero means unbounded. Only meaningful on the root Program returned
	// by Compile/CompileWithOptions — nested Programs referenced by
	// Instr.Sub/Branches/Children/Constraints share the one ctx the root
	// call constructs and never consult their own copy of this field.
	MaxSteps int
}

// Compile translates p into a Program. CaptureNames is populated once, at
// the root, with every capture name p uses transitively (see
// ast.Pattern.CaptureNames); nested programs created for sub-patterns share
// the same indices so capture slots line up across axis transitions.
func Compile(p *ast.Pattern) *Program {
	names := p.CaptureNames()
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	prog := compileNode(p, idx)
	prog.CaptureNames = names
	return prog
}

func compileNode(p *ast.Pattern, idx map[string]int) *Program {
	switch p.Kind {
	case ast.KindValue:
		return &Program{Instrs: []Instr{{Op: OpMatchPredicate, Literal: p}}}
	case ast.KindStructure:
		return compileStructure(p, idx)
	case ast.KindMeta:
		return compileMeta(p, idx)
	}
	return &Program{}
}

func compileStructure(p *ast.Pattern, idx map[string]int) *Program {
	switch p.Variant {
	case ast.VArray:
		switch p.Mode {
		case ast.ModeAny:
			return &Program{Instrs: []Instr{{Op: OpLengthCheck, Length: ast.ZeroOrMore(), IsMap: false}}}
		case ast.ModeLength:
			return &Program{Instrs: []Instr{{Op: OpLengthCheck, Length: p.Length, IsMap: false}}}
		case ast.ModeElements:
			return compileArrayElements(p.Sub, idx)
		}
	case ast.VMap:
		switch p.Mode {
		case ast.ModeAny:
			return &Program{Instrs: []Instr{{Op: OpLengthCheck, Length: ast.ZeroOrMore(), IsMap: true}}}
		case ast.ModeLength:
			return &Program{Instrs: []Instr{{Op: OpLengthCheck, Length: p.Length, IsMap: true}}}
		case ast.ModeValue:
			kvs := make([]KVProgram, len(p.Constraints))
			for i, c := range p.Constraints {
				kvs[i] = KVProgram{Key: compileNode(c.Key, idx), Value: compileNode(c.Value, idx)}
			}
			return &Program{Instrs: []Instr{{Op: OpMapConstraints, Constraints: kvs}}}
		}
	case ast.VTagged:
		instr := Instr{Op: OpTagDispatch, TagMode: p.Mode, TagNum: p.TagNum, TagName: p.TagName, Rx: p.Rx}
		if p.Sub != nil {
			instr.Sub = compileNode(p.Sub, idx)
		}
		return &Program{Instrs: []Instr{instr}}
	}
	return &Program{}
}

// compileArrayElements mirrors match.evalArrayElements's three-way shape
// dispatch, but decides the shape once, at compile time, since it depends
// only on sub's static Variant/Kind.
func compileArrayElements(sub *ast.Pattern, idx map[string]int) *Program {
	switch {
	case sub.Variant == ast.VSequence || sub.Variant == ast.VRepeat:
		return &Program{Instrs: []Instr{compileArraySequenceInstr(sub, idx)}}
	case sub.Kind == ast.KindMeta:
		return &Program{Instrs: []Instr{{Op: OpArrayAnyElement, Sub: compileNode(sub, idx)}}}
	default:
		return &Program{Instrs: []Instr{{Op: OpArraySingleElement, Sub: compileNode(sub, idx)}}}
	}
}

func compileArraySequenceInstr(sub *ast.Pattern, idx map[string]int) Instr {
	var rawItems []*ast.Pattern
	if sub.Variant == ast.VSequence {
		rawItems = sub.Children
	} else {
		rawItems = []*ast.Pattern{sub}
	}
	items := make([]SeqItemProgram, len(rawItems))
	for i, raw := range rawItems {
		items[i] = compileSeqItem(raw, idx)
	}
	return Instr{Op: OpArraySequence, SeqItems: items}
}

func compileSeqItem(raw *ast.Pattern, idx map[string]int) SeqItemProgram {
	cur := raw
	wholeCapture := ""
	if cur.Variant == ast.VCapture {
		wholeCapture = cur.CaptureName
		cur = cur.Sub
	}
	if cur.Variant == ast.VRepeat {
		q := cur.Quantifier
		inner := cur.Sub
		sip := SeqItemProgram{RepeatQ: &q}
		switch {
		case wholeCapture != "":
			sip.WholeCap = wholeCapture
			sip.Item = compileNode(inner, idx)
		case inner.Variant == ast.VCapture:
			sip.PerCap = inner.CaptureName
			sip.Item = compileNode(inner.Sub, idx)
		default:
			sip.Item = compileNode(inner, idx)
		}
		return sip
	}
	sip := SeqItemProgram{Item: compileNode(cur, idx)}
	if wholeCapture != "" {
		sip.SingleCap = wholeCapture
	}
	return sip
}

func compileMeta(p *ast.Pattern, idx map[string]int) *Program {
	switch p.Variant {
	case ast.VAny:
		return &Program{Instrs: []Instr{{Op: OpAny}}}
	case ast.VAnd, ast.VSequence:
		children := make([]*Program, len(p.Children))
		for i, c := range p.Children {
			children[i] = compileNode(c, idx)
		}
		return &Program{Instrs: []Instr{{Op: OpConcat, Children: children}}}
	case ast.VOr:
		branches := make([]*Program, len(p.Children))
		for i, c := range p.Children {
			branches[i] = compileNode(c, idx)
		}
		return &Program{Instrs: []Instr{{Op: OpSplit, Branches: branches}}}
	case ast.VNot:
		return &Program{Instrs: []Instr{{Op: OpNotMatch, Sub: compileNode(p.Sub, idx)}}}
	case ast.VCapture:
		// The spec's CaptureStart(i) ... CaptureEnd(i) framing always brackets
		// exactly one sub-program in this AST (Capture wraps a single Sub),
		// so the two are compiled as one compound instruction rather than a
		// pair threaded through a generic instruction sequence.
		return &Program{Instrs: []Instr{{Op: OpCapture, Sub: compileNode(p.Sub, idx), CaptureIdx: idx[p.CaptureName]}}}
	case ast.VRepeat:
		return &Program{Instrs: []Instr{{Op: OpRepeatScalar, Sub: compileNode(p.Sub, idx), Quantifier: p.Quantifier}}}
	case ast.VSearch:
		return &Program{Instrs: []Instr{{Op: OpSearch, Sub: compileNode(p.Sub, idx)}}}
	}
	return &Program{}
}
