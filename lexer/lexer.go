package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dcbor-community/dcborpath/perr"
)

var keywords = map[string]Kind{
	"bool":      KwBool,
	"true":      KwTrue,
	"false":     KwFalse,
	"null":      KwNull,
	"number":    KwNumber,
	"text":      KwText,
	"bytes":     KwBytes,
	"map":       KwMap,
	"array":     KwArray,
	"tagged":    KwTagged,
	"date":      KwDate,
	"digest":    KwDigest,
	"known":     KwKnown,
	"NaN":       KwNaN,
	"Infinity":  KwInfinity,
	"-Infinity": KwNegInfinity,
}

// Lexer is a forward-only, one-step-peekable scanner over pattern source.
type Lexer struct {
	src    string
	pos    int // current byte offset
	peeked *peekedTok
}

type peekedTok struct {
	tok       Token
	err       *perr.Error
	advanceTo int
}

// New constructs a Lexer over src. It does not itself fail on empty
// input — the parser reports EmptyInput when the first Next/Peek call
// returns immediate EOF.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Span returns the lexer's current byte position, as a zero-width span.
func (l *Lexer) Span() perr.Span {
	return perr.NewSpan(l.pos, l.pos)
}

// Remainder returns the unconsumed suffix of the source, an escape hatch
// for sub-parsers that need to scan raw slices, such as extracting the
// content argument out of a tagged(...) primary.
func (l *Lexer) Remainder() string {
	return l.src[l.pos:]
}

// Bump advances the lexer's cursor by n raw bytes without tokenising,
// used by the same sub-parsers.
func (l *Lexer) Bump(n int) {
	l.pos += n
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
	l.peeked = nil
}

// Peek returns the next token without consuming it. Errors surface here
// exactly as from Next.
func (l *Lexer) Peek() (Token, *perr.Error) {
	if l.peeked == nil {
		start := l.pos
		tok, err := l.scan()
		l.peeked = &peekedTok{tok: tok, err: err, advanceTo: l.pos}
		l.pos = start // restore: Peek must not consume
	}
	return l.peeked.tok, l.peeked.err
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, *perr.Error) {
	if l.peeked != nil {
		tok, err := l.peeked.tok, l.peeked.err
		l.pos = l.peeked.advanceTo
		l.peeked = nil
		return tok, err
	}
	return l.scan()
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' {
			l.pos++
			continue
		}
		break
	}
}

func (l *Lexer) scan() (Token, *perr.Error) {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Span: perr.NewSpan(start, start)}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return tok(LParen, start, l.pos), nil
	case c == ')':
		l.pos++
		return tok(RParen, start, l.pos), nil
	case c == '[':
		l.pos++
		return tok(LBracket, start, l.pos), nil
	case c == ']':
		l.pos++
		return tok(RBracket, start, l.pos), nil
	case c == '{':
		// '{' is ambiguous: a quantifier suffix ({n}, {n,m}, {n,}) and a
		// map/length literal ({}, {3,5}, {text: number}) share the same
		// opening brace. A digit immediately after '{' can only start a
		// range body, so that's the disambiguator; anything else (an
		// immediate '}' or a pattern primary) is plain punctuation and
		// left for the parser's map/length sub-parser to read.
		if l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
			return l.scanRange(start)
		}
		l.pos++
		return tok(LBrace, start, l.pos), nil
	case c == '}':
		l.pos++
		return tok(RBrace, start, l.pos), nil
	case c == ',':
		l.pos++
		return tok(Comma, start, l.pos), nil
	case c == ':':
		l.pos++
		return tok(Colon, start, l.pos), nil
	case c == '|':
		l.pos++
		return tok(Pipe, start, l.pos), nil
	case c == '&':
		l.pos++
		return tok(Amp, start, l.pos), nil
	case c == '!':
		l.pos++
		return tok(Bang, start, l.pos), nil
	case c == '*':
		return l.scanSuffixOp(start, Star, StarLazy, StarPoss), nil
	case c == '+':
		return l.scanSuffixOp(start, Plus, PlusLazy, PlusPoss), nil
	case c == '?':
		return l.scanSuffixOp(start, Quest, QuestLazy, QuestPoss), nil
	case c == '.':
		return l.scanDot(start)
	case c == '>':
		return l.scanCompare(start, '>', GT, GE), nil
	case c == '<':
		return l.scanCompare(start, '<', LT, LE), nil
	case c == '"':
		return l.scanString(start)
	case c == '/':
		return l.scanRegex(start)
	case c == '\'':
		return l.scanSingleQuoted(start)
	case c == '@':
		return l.scanGroupName(start)
	case c == 'h' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'':
		return l.scanHexString(start)
	case c == 'd' && strings.HasPrefix(l.src[l.pos:], "digest'"):
		return l.scanDigestQuoted(start)
	case c == 'd' && strings.HasPrefix(l.src[l.pos:], "date'"):
		return l.scanDateQuoted(start)
	case c == '-' || (c >= '0' && c <= '9'):
		return l.scanNumberOrKeyword(start)
	case isIdentStart(rune(c)):
		return l.scanIdent(start)
	}

	// Unknown byte sequence: consume one rune so the parser's error span
	// is at least well-formed.
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if size == 0 {
		size = 1
	}
	l.pos += size
	return Token{}, perr.New(perr.UnrecognizedToken, perr.NewSpan(start, l.pos))
}

func tok(k Kind, start, end int) Token {
	return Token{Kind: k, Span: perr.NewSpan(start, end)}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (l *Lexer) scanSuffixOp(start int, base, lazy, poss Kind) Token {
	l.pos++ // consume base char
	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '?':
			l.pos++
			return tok(lazy, start, l.pos)
		case '+':
			l.pos++
			return tok(poss, start, l.pos)
		}
	}
	return tok(base, start, l.pos)
}

func (l *Lexer) scanDot(start int) (Token, *perr.Error) {
	if strings.HasPrefix(l.src[l.pos:], "...") {
		l.pos += 3
		return tok(Search, start, l.pos), nil
	}
	if strings.HasPrefix(l.src[l.pos:], "..") {
		l.pos += 2
		return tok(DotDot, start, l.pos), nil
	}
	l.pos++
	return Token{}, perr.New(perr.UnrecognizedToken, perr.NewSpan(start, l.pos))
}

func (l *Lexer) scanCompare(start int, c byte, base, withEq Kind) Token {
	l.pos++
	if l.pos < len(l.src) && l.src[l.pos] == '=' {
		l.pos++
		return tok(withEq, start, l.pos)
	}
	return tok(base, start, l.pos)
}

func (l *Lexer) scanRange(start int) (Token, *perr.Error) {
	l.pos++ // consume '{'
	numStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == numStart {
		return Token{}, perr.New(perr.InvalidRange, perr.NewSpan(start, l.pos))
	}
	min, err := strconv.ParseUint(l.src[numStart:l.pos], 10, 64)
	if err != nil {
		return Token{}, perr.New(perr.InvalidRange, perr.NewSpan(start, l.pos))
	}

	rng := Range{Min: min, Max: &min}
	if l.pos < len(l.src) && l.src[l.pos] == ',' {
		l.pos++
		maxStart := l.pos
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		if l.pos == maxStart {
			rng.Max = nil // {n,}
		} else {
			max, err := strconv.ParseUint(l.src[maxStart:l.pos], 10, 64)
			if err != nil {
				return Token{}, perr.New(perr.InvalidRange, perr.NewSpan(start, l.pos))
			}
			if max < min {
				return Token{}, perr.New(perr.InvalidRange, perr.NewSpan(start, l.pos))
			}
			rng.Max = &max
		}
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '}' {
		return Token{}, perr.New(perr.InvalidRange, perr.NewSpan(start, l.pos))
	}
	l.pos++ // consume '}'

	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '?':
			rng.Reluctance = Lazy
			l.pos++
		case '+':
			rng.Reluctance = Possessive
			l.pos++
		}
	}
	return Token{Kind: RangeQuantifier, Span: perr.NewSpan(start, l.pos), Rng: rng}, nil
}

func (l *Lexer) scanString(start int) (Token, *perr.Error) {
	l.pos++ // consume opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, perr.New(perr.UnterminatedString, perr.NewSpan(start, l.pos))
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			return Token{Kind: StringLiteral, Span: perr.NewSpan(start, l.pos), Str: sb.String()}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			next := l.src[l.pos+1]
			if next == '"' || next == '\\' {
				sb.WriteByte(next)
				l.pos += 2
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		sb.WriteRune(r)
		l.pos += size
	}
}

func (l *Lexer) scanRegex(start int) (Token, *perr.Error) {
	l.pos++ // consume opening '/'
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, perr.New(perr.UnterminatedRegex, perr.NewSpan(start, l.pos))
		}
		c := l.src[l.pos]
		if c == '/' {
			l.pos++
			return Token{Kind: RegexLiteral, Span: perr.NewSpan(start, l.pos), Str: sb.String()}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			sb.WriteByte(c)
			sb.WriteByte(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		sb.WriteRune(r)
		l.pos += size
	}
}

func (l *Lexer) scanHexString(start int) (Token, *perr.Error) {
	l.pos += 2 // consume "h'"
	if l.pos < len(l.src) && l.src[l.pos] == '/' {
		bodyStart := l.pos + 1
		l.pos++
		for {
			if l.pos >= len(l.src) {
				return Token{}, perr.New(perr.UnterminatedRegex, perr.NewSpan(start, l.pos))
			}
			if l.src[l.pos] == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
				body := l.src[bodyStart:l.pos]
				l.pos += 2
				return Token{Kind: HexRegex, Span: perr.NewSpan(start, l.pos), Str: body}, nil
			}
			l.pos++
		}
	}
	bodyStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{}, perr.New(perr.UnterminatedHexString, perr.NewSpan(start, l.pos))
	}
	hexStr := l.src[bodyStart:l.pos]
	l.pos++ // consume closing quote
	if len(hexStr)%2 != 0 {
		return Token{}, perr.New(perr.InvalidHexString, perr.NewSpan(start, l.pos))
	}
	b, err := hexDecode(hexStr)
	if err != nil {
		return Token{}, perr.New(perr.InvalidHexString, perr.NewSpan(start, l.pos))
	}
	return Token{Kind: HexString, Span: perr.NewSpan(start, l.pos), Bytes: b}, nil
}

func (l *Lexer) scanDigestQuoted(start int) (Token, *perr.Error) {
	l.pos += len("digest'")
	bodyStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{}, perr.New(perr.UnterminatedDigestQuoted, perr.NewSpan(start, l.pos))
	}
	body := l.src[bodyStart:l.pos]
	l.pos++
	return Token{Kind: DigestQuoted, Span: perr.NewSpan(start, l.pos), Str: body}, nil
}

func (l *Lexer) scanDateQuoted(start int) (Token, *perr.Error) {
	l.pos += len("date'")
	bodyStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{}, perr.New(perr.UnterminatedDateQuoted, perr.NewSpan(start, l.pos))
	}
	body := l.src[bodyStart:l.pos]
	l.pos++
	return Token{Kind: DateQuoted, Span: perr.NewSpan(start, l.pos), Str: body}, nil
}

func (l *Lexer) scanSingleQuoted(start int) (Token, *perr.Error) {
	l.pos++ // consume opening quote
	bodyStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{}, perr.New(perr.UnterminatedString, perr.NewSpan(start, l.pos))
	}
	body := l.src[bodyStart:l.pos]
	l.pos++
	return Token{Kind: SingleQuoted, Span: perr.NewSpan(start, l.pos), Str: body}, nil
}

func (l *Lexer) scanGroupName(start int) (Token, *perr.Error) {
	l.pos++ // consume '@'
	nameStart := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if l.pos == nameStart {
			if !isIdentStart(r) {
				return Token{}, perr.New(perr.InvalidCaptureGroupName, perr.NewSpan(start, l.pos+size))
			}
		} else if !(isIdentCont(r) || r == '-') {
			break
		}
		l.pos += size
	}
	if l.pos == nameStart {
		return Token{}, perr.New(perr.InvalidCaptureGroupName, perr.NewSpan(start, l.pos))
	}
	return Token{Kind: GroupName, Span: perr.NewSpan(start, l.pos), Str: l.src[nameStart:l.pos]}, nil
}

func (l *Lexer) scanNumberOrKeyword(start int) (Token, *perr.Error) {
	if strings.HasPrefix(l.src[l.pos:], "-Infinity") {
		l.pos += len("-Infinity")
		return tok(KwNegInfinity, start, l.pos), nil
	}
	numStart := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	digitsStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == digitsStart {
		l.pos++
		return Token{}, perr.New(perr.InvalidNumberFormat, perr.NewSpan(start, l.pos))
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	text := l.src[numStart:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, perr.New(perr.InvalidNumberFormat, perr.NewSpan(start, l.pos))
	}
	return Token{Kind: NumberLiteral, Span: perr.NewSpan(start, l.pos), Num: v}, nil
}

func (l *Lexer) scanIdent(start int) (Token, *perr.Error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += size
	}
	word := l.src[start:l.pos]
	if word == "NaN" {
		return tok(KwNaN, start, l.pos), nil
	}
	if word == "Infinity" {
		return tok(KwInfinity, start, l.pos), nil
	}
	if k, ok := keywords[word]; ok {
		return tok(k, start, l.pos), nil
	}
	return Token{Kind: Ident, Span: perr.NewSpan(start, l.pos), Str: word}, nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, strconv.ErrSyntax
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, err := hexDigit(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexDigit(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, strconv.ErrSyntax
}
