// Package lexer tokenises pattern source into an ordered, one-step-peekable
// stream of spanned tokens. Shaped after quasilyte-regex/syntax's lexer
// (struct-based scanner, byte-indexed tokenKind enum, Next/Peek), since
// this pattern language has its own grammar distinct from regex syntax.
package lexer

import "github.com/dcbor-community/dcborpath/perr"

// Kind identifies a token's lexical category.
type Kind int

const (
	EOF Kind = iota

	// Keywords
	KwBool
	KwTrue
	KwFalse
	KwNull
	KwNumber
	KwText
	KwBytes
	KwMap
	KwArray
	KwTagged
	KwDate
	KwDigest
	KwKnown
	KwNaN
	KwInfinity
	KwNegInfinity

	// Operators
	Pipe   // |
	Amp    // &
	Bang   // !
	Star       // *
	StarLazy   // *?
	StarPoss   // *+
	Plus       // +
	PlusLazy   // +?
	PlusPoss   // ++
	Quest      // ?
	QuestLazy  // ??
	QuestPoss  // ?+
	Search // ...
	DotDot // ..
	GE     // >=
	LE     // <=
	GT     // >
	LT     // <

	// Punctuation
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon

	// Literals
	NumberLiteral  // payload: Num
	StringLiteral  // payload: Str
	RegexLiteral   // payload: Str (body between //)
	HexString      // payload: Bytes
	HexRegex       // payload: Str (body between h'/ /')
	SingleQuoted   // payload: Str (content between ' ') — dispatched by parser
	DigestQuoted   // payload: Str (hex between digest' ')
	DateQuoted     // payload: Str (iso between date' ')
	GroupName      // payload: Str (identifier after @)
	RangeQuantifier // payload: Range (min,max,reluctance)
	Ident          // payload: Str — a bare, non-keyword identifier (tagged(...) name selector)
)

// Reluctance mirrors ast.Reluctance without importing the ast package,
// keeping lexer dependency-free of the AST it feeds.
type Reluctance int

const (
	Greedy Reluctance = iota
	Lazy
	Possessive
)

// Range is the payload of a RangeQuantifier token: {n}, {n,m}, or {n,}.
type Range struct {
	Min        uint64
	Max        *uint64
	Reluctance Reluctance
}

// Token is one lexeme with its span and an optional typed payload.
type Token struct {
	Kind  Kind
	Span  perr.Span
	Num   float64
	Str   string
	Bytes []byte
	Rng   Range
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case KwBool, KwTrue, KwFalse, KwNull, KwNumber, KwText, KwBytes, KwMap, KwArray, KwTagged, KwDate, KwDigest, KwKnown, KwNaN, KwInfinity, KwNegInfinity:
		return "keyword"
	case NumberLiteral:
		return "number literal"
	case StringLiteral:
		return "string literal"
	case RegexLiteral:
		return "regex literal"
	case HexString:
		return "hex string"
	case HexRegex:
		return "hex regex"
	case SingleQuoted:
		return "single-quoted literal"
	case DigestQuoted:
		return "digest-quoted literal"
	case DateQuoted:
		return "date-quoted literal"
	case GroupName:
		return "capture group name"
	case RangeQuantifier:
		return "range quantifier"
	case Ident:
		return "identifier"
	default:
		return "token"
	}
}
