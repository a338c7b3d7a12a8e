package ast

import (
	"time"

	"github.com/dcbor-community/dcborpath/digest"
	"github.com/dcbor-community/dcborpath/internal/rx"
)

// Kind discriminates the three pattern families: Value
// patterns match one scalar CBOR leaf, Structure patterns match a CBOR
// container, Meta patterns combine other patterns.
type Kind int

const (
	KindValue Kind = iota
	KindStructure
	KindMeta
)

// Variant further discriminates within a Kind. The zero value is never a
// valid variant; every constructor below sets one explicitly.
type Variant int

const (
	_ Variant = iota

	// Value variants
	VBool
	VNull
	VNumber
	VText
	VByteString
	VDate
	VDigest
	VKnownValue

	// Structure variants
	VArray
	VMap
	VTagged

	// Meta variants
	VAny
	VAnd
	VOr
	VNot
	VRepeat
	VCapture
	VSearch
	VSequence
)

// Mode selects the sub-variant within a Value/Structure pattern kind,
// e.g. Bool(Any|True|False) or Number(Any|Value|Range|...).
type Mode int

const (
	ModeAny Mode = iota
	ModeTrue
	ModeFalse
	ModeValue
	ModeRange
	ModeGT
	ModeGE
	ModeLT
	ModeLE
	ModeNaN
	ModePosInf
	ModeNegInf
	ModeRegex
	ModeBinaryRegex
	ModePrefix
	ModeNamed
	ModeElements
	ModeLength
	ModeTag
	ModeName
)

// Pattern is the AST node. It is immutable after construction and may be
// shared arbitrarily; equality is structural (Equal) and Display
// formatting reproduces a structurally-equal Pattern when re-parsed.
type Pattern struct {
	Kind    Kind
	Variant Variant
	Mode    Mode

	// Number
	NumVal      float64
	NumLo, NumHi float64

	// Text / ByteString / KnownValue / Tagged regex literal text
	StrVal  string
	BinVal  []byte
	Rx      *rx.Engine
	RxSrc   string

	// Date
	DateVal time.Time

	// Digest
	DigestVal    digest.Digest
	DigestPrefix []byte

	// KnownValue
	KnownVal uint64
	Named    string

	// Array / Map length, or Repeat's quantifier
	Length     Interval
	Quantifier Quantifier

	// Structure/Meta children
	Sub          *Pattern   // Array Elements, Tagged content, Not, Capture, Repeat, Search
	Children     []*Pattern // And, Or, Sequence
	Constraints  []KVConstraint

	// Tagged
	TagNum uint64
	TagName string

	// Capture
	CaptureName string
}

// KVConstraint is one (key-pattern, value-pattern) pair of a Map
// Constraints pattern.
type KVConstraint struct {
	Key   *Pattern
	Value *Pattern
}

// --- Value constructors ---

func Bool(mode Mode) *Pattern   { return &Pattern{Kind: KindValue, Variant: VBool, Mode: mode} }
func BoolAny() *Pattern         { return Bool(ModeAny) }
func BoolTrue() *Pattern        { return Bool(ModeTrue) }
func BoolFalse() *Pattern       { return Bool(ModeFalse) }
func Null() *Pattern            { return &Pattern{Kind: KindValue, Variant: VNull} }

func NumberAny() *Pattern { return &Pattern{Kind: KindValue, Variant: VNumber, Mode: ModeAny} }
func NumberValue(v float64) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VNumber, Mode: ModeValue, NumVal: v}
}
func NumberRange(lo, hi float64) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VNumber, Mode: ModeRange, NumLo: lo, NumHi: hi}
}
func NumberCompare(mode Mode, v float64) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VNumber, Mode: mode, NumVal: v}
}
func NumberNaN() *Pattern    { return &Pattern{Kind: KindValue, Variant: VNumber, Mode: ModeNaN} }
func NumberPosInf() *Pattern { return &Pattern{Kind: KindValue, Variant: VNumber, Mode: ModePosInf} }
func NumberNegInf() *Pattern { return &Pattern{Kind: KindValue, Variant: VNumber, Mode: ModeNegInf} }

func TextAny() *Pattern { return &Pattern{Kind: KindValue, Variant: VText, Mode: ModeAny} }
func TextValue(s string) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VText, Mode: ModeValue, StrVal: s}
}
func TextRegex(engine *rx.Engine, src string) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VText, Mode: ModeRegex, Rx: engine, RxSrc: src}
}

func BytesAny() *Pattern { return &Pattern{Kind: KindValue, Variant: VByteString, Mode: ModeAny} }
func BytesValue(b []byte) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VByteString, Mode: ModeValue, BinVal: b}
}
func BytesBinaryRegex(engine *rx.Engine, src string) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VByteString, Mode: ModeBinaryRegex, Rx: engine, RxSrc: src}
}

func DateAny() *Pattern { return &Pattern{Kind: KindValue, Variant: VDate, Mode: ModeAny} }
func DateValue(t time.Time) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VDate, Mode: ModeValue, DateVal: t}
}

func DigestAny() *Pattern { return &Pattern{Kind: KindValue, Variant: VDigest, Mode: ModeAny} }
func DigestValue(d digest.Digest) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VDigest, Mode: ModeValue, DigestVal: d}
}
func DigestPrefixPattern(prefix []byte) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VDigest, Mode: ModePrefix, DigestPrefix: prefix}
}
func DigestBinaryRegex(engine *rx.Engine, src string) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VDigest, Mode: ModeBinaryRegex, Rx: engine, RxSrc: src}
}

func KnownValueAny() *Pattern {
	return &Pattern{Kind: KindValue, Variant: VKnownValue, Mode: ModeAny}
}
func KnownValueValue(u uint64) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VKnownValue, Mode: ModeValue, KnownVal: u}
}
func KnownValueNamed(name string) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VKnownValue, Mode: ModeNamed, Named: name}
}
func KnownValueRegex(engine *rx.Engine, src string) *Pattern {
	return &Pattern{Kind: KindValue, Variant: VKnownValue, Mode: ModeRegex, Rx: engine, RxSrc: src}
}

// --- Structure constructors ---

func ArrayAny() *Pattern { return &Pattern{Kind: KindStructure, Variant: VArray, Mode: ModeAny} }
func ArrayElements(p *Pattern) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VArray, Mode: ModeElements, Sub: p}
}
func ArrayLength(iv Interval) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VArray, Mode: ModeLength, Length: iv}
}

func MapAny() *Pattern { return &Pattern{Kind: KindStructure, Variant: VMap, Mode: ModeAny} }
func MapConstraints(cs []KVConstraint) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VMap, Mode: ModeValue, Constraints: cs}
}
func MapLength(iv Interval) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VMap, Mode: ModeLength, Length: iv}
}

func TaggedAny() *Pattern { return &Pattern{Kind: KindStructure, Variant: VTagged, Mode: ModeAny} }
func TaggedTag(n uint64, p *Pattern) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VTagged, Mode: ModeTag, TagNum: n, Sub: p}
}
func TaggedName(name string, p *Pattern) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VTagged, Mode: ModeName, TagName: name, Sub: p}
}
func TaggedRegex(engine *rx.Engine, src string, p *Pattern) *Pattern {
	return &Pattern{Kind: KindStructure, Variant: VTagged, Mode: ModeRegex, Rx: engine, RxSrc: src, Sub: p}
}

// --- Meta constructors ---

func Any() *Pattern { return &Pattern{Kind: KindMeta, Variant: VAny} }
func And(ps []*Pattern) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VAnd, Children: ps}
}
func Or(ps []*Pattern) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VOr, Children: ps}
}
func Not(p *Pattern) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VNot, Sub: p}
}
func Repeat(p *Pattern, q Quantifier) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VRepeat, Sub: p, Quantifier: q}
}
func Capture(name string, p *Pattern) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VCapture, CaptureName: name, Sub: p}
}
func Search(p *Pattern) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VSearch, Sub: p}
}
func Sequence(ps []*Pattern) *Pattern {
	return &Pattern{Kind: KindMeta, Variant: VSequence, Children: ps}
}

// IsMeta reports whether p is one of the Meta combinators.
func (p *Pattern) IsMeta() bool { return p.Kind == KindMeta }

// CaptureNames returns every capture name appearing syntactically in p,
// in first-occurrence order, deduplicated. Used by the compiler (vm
// package) to size its capture table, and by matchers to determine which
// capture names must be present in the result whenever the containing
// sub-pattern matched at least once.
func (p *Pattern) CaptureNames() []string {
	seen := map[string]bool{}
	var names []string
	var walk func(n *Pattern)
	walk = func(n *Pattern) {
		if n == nil {
			return
		}
		if n.Variant == VCapture && !seen[n.CaptureName] {
			seen[n.CaptureName] = true
			names = append(names, n.CaptureName)
		}
		if n.Sub != nil {
			walk(n.Sub)
		}
		for _, c := range n.Children {
			walk(c)
		}
		for _, kv := range n.Constraints {
			walk(kv.Key)
			walk(kv.Value)
		}
	}
	walk(p)
	return names
}
