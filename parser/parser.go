// Package parser builds a pattern AST from source text by recursive
// descent, following the precedence chain or > and > not > primary.
package parser

import (
	"strconv"
	"strings"

	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/dateval"
	"github.com/dcbor-community/dcborpath/digest"
	"github.com/dcbor-community/dcborpath/internal/rx"
	"github.com/dcbor-community/dcborpath/lexer"
	"github.com/dcbor-community/dcborpath/perr"
)

// Parser consumes a lexer.Lexer and produces a *ast.Pattern.
type Parser struct {
	lex *lexer.Lexer
	src string

	// depth counts active parseOr recursions (parens, @name(...), ...(...),
	// array/map sub-patterns all re-enter through it; tagged(...) content
	// is parsed by a sub-parser that starts from this depth).
	// maxDepth of 0 means unbounded, matching New's default.
	depth    int
	maxDepth int
}

// New wraps src in a fresh Parser with no recursion-depth limit.
func New(src string) *Parser {
	return &Parser{lex: lexer.New(src), src: src}
}

// Parse parses the entirety of src as one top-level pattern. Trailing
// non-whitespace after a complete pattern is reported as ExtraData.
func Parse(src string) (*ast.Pattern, *perr.Error) {
	return parseWithParser(New(src), src)
}

// ParseWithMaxDepth parses src like Parse, additionally failing with a
// RecursionLimitExceeded Error once parseOr recursion exceeds maxDepth
// (0 means unbounded, same as Parse) — a guard against stack overflow on
// pathologically nested pattern source.
func ParseWithMaxDepth(src string, maxDepth int) (*ast.Pattern, *perr.Error) {
	p := New(src)
	p.maxDepth = maxDepth
	return parseWithParser(p, src)
}

func parseWithParser(p *Parser, src string) (*ast.Pattern, *perr.Error) {
	if strings.TrimSpace(src) == "" {
		return nil, perr.NewSpanless(perr.EmptyInput)
	}
	pat, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != lexer.EOF {
		return nil, perr.New(perr.ExtraData, perr.NewSpan(tok.Span.Start, len(src)))
	}
	return pat, nil
}

// enterDepth tracks one more active parseOr recursion, failing once
// maxDepth is exceeded.
func (p *Parser) enterDepth() *perr.Error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return perr.NewSpanless(perr.RecursionLimitExceeded)
	}
	return nil
}

func (p *Parser) exitDepth() {
	p.depth--
}

func (p *Parser) parseOr() (*ast.Pattern, *perr.Error) {
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	defer p.exitDepth()

	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*ast.Pattern{first}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != lexer.Pipe {
			break
		}
		p.lex.Next()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return ast.Or(children), nil
}

func (p *Parser) parseAnd() (*ast.Pattern, *perr.Error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	children := []*ast.Pattern{first}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != lexer.Amp {
			break
		}
		p.lex.Next()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return ast.And(children), nil
}

func (p *Parser) parseNot() (*ast.Pattern, *perr.Error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.Bang {
		p.lex.Next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.Not(inner), nil
	}
	return p.parsePrimaryWithQuantifier()
}

// parsePrimaryWithQuantifier reads one primary and then, per the grammar's
// "primary quantifier?" rule, unconditionally tries to read a trailing
// quantifier suffix — every primary is quantifier-eligible, including bare
// type keywords like "number" or "array".
func (p *Parser) parsePrimaryWithQuantifier() (*ast.Pattern, *perr.Error) {
	pat, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.maybeApplyQuantifier(pat)
}

// parsePrimary dispatches on the leading token to build one pattern.
func (p *Parser) parsePrimary() (*ast.Pattern, *perr.Error) {
	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case lexer.EOF:
		return nil, perr.New(perr.UnexpectedEndOfInput, tok.Span)

	case lexer.KwBool:
		return ast.BoolAny(), nil
	case lexer.KwTrue:
		return ast.BoolTrue(), nil
	case lexer.KwFalse:
		return ast.BoolFalse(), nil
	case lexer.KwNull:
		return ast.Null(), nil
	case lexer.KwBytes:
		return ast.BytesAny(), nil
	case lexer.KwKnown:
		return ast.KnownValueAny(), nil

	case lexer.KwNumber:
		return ast.NumberAny(), nil
	case lexer.KwNaN:
		return ast.NumberNaN(), nil
	case lexer.KwInfinity:
		return ast.NumberPosInf(), nil
	case lexer.KwNegInfinity:
		return ast.NumberNegInf(), nil
	case lexer.NumberLiteral:
		return p.finishNumber(tok)
	case lexer.GT:
		return p.finishCompare(ast.ModeGT, tok)
	case lexer.GE:
		return p.finishCompare(ast.ModeGE, tok)
	case lexer.LT:
		return p.finishCompare(ast.ModeLT, tok)
	case lexer.LE:
		return p.finishCompare(ast.ModeLE, tok)

	case lexer.KwText:
		return p.finishTextKeyword()
	case lexer.StringLiteral:
		return ast.TextValue(tok.Str), nil
	case lexer.RegexLiteral:
		return p.finishTextRegex(tok)

	case lexer.HexString:
		return ast.BytesValue(tok.Bytes), nil
	case lexer.HexRegex:
		return p.finishBytesRegex(tok)

	case lexer.KwDate:
		return p.finishDateKeyword()
	case lexer.DateQuoted:
		return p.finishDateQuoted(tok)

	case lexer.KwDigest:
		return p.finishDigestKeyword()
	case lexer.DigestQuoted:
		return p.finishDigestQuoted(tok)

	case lexer.SingleQuoted:
		return p.finishSingleQuoted(tok)

	case lexer.KwArray:
		return p.finishArrayKeyword()
	case lexer.LBracket:
		return p.finishArrayBody(tok)

	case lexer.KwMap:
		return p.finishMapKeyword()
	case lexer.LBrace:
		return p.finishMapBody(tok)
	case lexer.RangeQuantifier:
		// A bare "{n,m}" at primary position (no preceding "map" keyword
		// or LBrace token) happens when the lexer's digit-led '{'
		// disambiguation already consumed the whole range as one token;
		// the only primary that shape can mean here is Map(Length).
		return ast.MapLength(rangeToInterval(tok)), nil

	case lexer.KwTagged:
		return p.finishTaggedKeyword()

	case lexer.Star:
		return ast.Any(), nil

	case lexer.LParen:
		return p.finishGroup(tok)

	case lexer.Search:
		return p.finishSearch(tok)
	case lexer.Ident:
		// "search(p)" is the form Display renders Search as; it is accepted
		// alongside "...(p)" so displayed patterns re-parse.
		if tok.Str == "search" {
			return p.finishSearch(tok)
		}

	case lexer.GroupName:
		return p.finishCapture(tok)
	}

	return nil, perr.New(perr.UnexpectedToken, tok.Span)
}

func (p *Parser) expect(kind lexer.Kind, onMissing perr.Kind) (lexer.Token, *perr.Error) {
	tok, err := p.lex.Next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != kind {
		return tok, perr.New(onMissing, tok.Span)
	}
	return tok, nil
}

// --- Numbers ---

func (p *Parser) finishNumber(first lexer.Token) (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.DotDot {
		p.lex.Next()
		hi, err := p.expect(lexer.NumberLiteral, perr.ExpectedPattern)
		if err != nil {
			return nil, err
		}
		return ast.NumberRange(first.Num, hi.Num), nil
	}
	return ast.NumberValue(first.Num), nil
}

func (p *Parser) finishCompare(mode ast.Mode, opTok lexer.Token) (*ast.Pattern, *perr.Error) {
	num, err := p.expect(lexer.NumberLiteral, perr.ExpectedPattern)
	if err != nil {
		return nil, err
	}
	_ = opTok
	return ast.NumberCompare(mode, num.Num), nil
}

// --- Text ---

func (p *Parser) finishTextKeyword() (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch peek.Kind {
	case lexer.StringLiteral:
		p.lex.Next()
		return ast.TextValue(peek.Str), nil
	case lexer.RegexLiteral:
		p.lex.Next()
		return p.finishTextRegex(peek)
	}
	return ast.TextAny(), nil
}

func (p *Parser) finishTextRegex(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	engine, err := rx.Compile(tok.Str)
	if err != nil {
		return nil, perr.New(perr.InvalidRegex, tok.Span).WithCause(err)
	}
	return ast.TextRegex(engine, tok.Str), nil
}

// --- Bytes ---

func (p *Parser) finishBytesRegex(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	engine, err := rx.Compile(tok.Str)
	if err != nil {
		return nil, perr.New(perr.InvalidRegex, tok.Span).WithCause(err)
	}
	return ast.BytesBinaryRegex(engine, tok.Str), nil
}

// --- Date ---

func (p *Parser) finishDateKeyword() (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.DateQuoted {
		p.lex.Next()
		return p.finishDateQuoted(peek)
	}
	return ast.DateAny(), nil
}

func (p *Parser) finishDateQuoted(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	t, convErr := dateval.Parse(tok.Str)
	if convErr != nil {
		return nil, perr.New(perr.InvalidDateFormat, tok.Span).WithCause(convErr)
	}
	return ast.DateValue(t), nil
}

// --- Digest ---

func (p *Parser) finishDigestKeyword() (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.DigestQuoted {
		p.lex.Next()
		return p.finishDigestQuoted(peek)
	}
	return ast.DigestAny(), nil
}

func (p *Parser) finishDigestQuoted(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	if len(tok.Str) == digest.Size*2 {
		d, convErr := digest.FromHex(tok.Str)
		if convErr == nil {
			return ast.DigestValue(d), nil
		}
	}
	b, hexErr := hexDecode(tok.Str)
	if hexErr != nil || len(b) == 0 {
		return nil, perr.New(perr.InvalidDigestPattern, tok.Span)
	}
	return ast.DigestPrefixPattern(b), nil
}

// --- KnownValue: dispatched by the content of a single-quoted literal ---

func (p *Parser) finishSingleQuoted(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	s := tok.Str
	if isAllDigits(s) {
		v, convErr := strconv.ParseUint(s, 10, 64)
		if convErr != nil {
			return nil, perr.New(perr.UnrecognizedToken, tok.Span)
		}
		return ast.KnownValueValue(v), nil
	}
	if strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") && len(s) >= 2 {
		body := s[1 : len(s)-1]
		engine, err := rx.Compile(body)
		if err != nil {
			return nil, perr.New(perr.InvalidRegex, tok.Span).WithCause(err)
		}
		return ast.KnownValueRegex(engine, body), nil
	}
	return ast.KnownValueNamed(s), nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// --- Array ---

func (p *Parser) finishArrayKeyword() (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.LBracket {
		p.lex.Next()
		return p.finishArrayBody(peek)
	}
	return ast.ArrayAny(), nil
}

func (p *Parser) finishArrayBody(open lexer.Token) (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.RBracket {
		p.lex.Next()
		return ast.ArrayLength(ast.Exactly(1)), nil
	}
	// A digit-led '{' is always captured whole by the lexer as a single
	// RangeQuantifier token (see lexer.scan's brace disambiguation), so
	// "[{3,5}]" must be recognized here before falling into the element
	// loop — otherwise parsePrimary's RangeQuantifier case would read it
	// as a bare MapLength element instead of the array's own length.
	if peek.Kind == lexer.RangeQuantifier {
		p.lex.Next()
		if _, err := p.expect(lexer.RBracket, perr.ExpectedCloseBracket); err != nil {
			return nil, err
		}
		return ast.ArrayLength(rangeToInterval(peek)), nil
	}
	if iv, ok, err := p.tryParseBareInterval(); err != nil {
		return nil, err
	} else if ok {
		if _, err := p.expect(lexer.RBracket, perr.ExpectedCloseBracket); err != nil {
			return nil, err
		}
		return ast.ArrayLength(iv), nil
	}

	var elems []*ast.Pattern
	for {
		elem, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.Comma {
			continue
		}
		if tok.Kind == lexer.RBracket {
			break
		}
		return nil, perr.New(perr.ExpectedCloseBracket, tok.Span)
	}
	if len(elems) == 1 {
		return ast.ArrayElements(elems[0]), nil
	}
	return ast.ArrayElements(ast.Sequence(elems)), nil
}

// tryParseBareInterval attempts to read a bare "n", "n,m", or "n," body
// (used for array length), distinct from the lexer's single-token
// RangeQuantifier which only fires inside { } braces.
func (p *Parser) tryParseBareInterval() (ast.Interval, bool, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return ast.Interval{}, false, err
	}
	if peek.Kind != lexer.NumberLiteral {
		return ast.Interval{}, false, nil
	}
	p.lex.Next()
	min := uint64(peek.Num)
	peek2, err := p.lex.Peek()
	if err != nil {
		return ast.Interval{}, false, err
	}
	if peek2.Kind != lexer.Comma {
		return ast.Exactly(min), true, nil
	}
	p.lex.Next()
	peek3, err := p.lex.Peek()
	if err != nil {
		return ast.Interval{}, false, err
	}
	if peek3.Kind != lexer.NumberLiteral {
		return ast.AtLeast(min), true, nil
	}
	p.lex.Next()
	return ast.Between(min, uint64(peek3.Num)), true, nil
}

// --- Map ---

func (p *Parser) finishMapKeyword() (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.LBrace {
		p.lex.Next()
		return p.finishMapBody(peek)
	}
	if peek.Kind == lexer.RangeQuantifier {
		p.lex.Next()
		return ast.MapLength(rangeToInterval(peek)), nil
	}
	return ast.MapAny(), nil
}

func (p *Parser) finishMapBody(open lexer.Token) (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.RBrace {
		p.lex.Next()
		return ast.MapAny(), nil
	}
	// A digit-led '{' is always captured whole by the lexer as a single
	// RangeQuantifier token (see lexer.scan's brace disambiguation), so
	// "{{3,5}}" (the form Display gives Map(Length)) reaches here as that
	// token followed by '}'. Any other continuation is a key pattern, so
	// the lexer is rewound and the constraint loop below reads it.
	if peek.Kind == lexer.RangeQuantifier {
		saved := *p.lex
		p.lex.Next()
		if next, err := p.lex.Peek(); err == nil && next.Kind == lexer.RBrace {
			p.lex.Next()
			return ast.MapLength(rangeToInterval(peek)), nil
		}
		*p.lex = saved
	}
	var constraints []ast.KVConstraint
	for {
		key, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon, perr.ExpectedColon); err != nil {
			return nil, err
		}
		val, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, ast.KVConstraint{Key: key, Value: val})

		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.Comma {
			continue
		}
		if tok.Kind == lexer.RBrace {
			break
		}
		return nil, perr.New(perr.ExpectedCloseBrace, tok.Span)
	}
	return ast.MapConstraints(constraints), nil
}

func rangeToInterval(tok lexer.Token) ast.Interval {
	return ast.Interval{Min: tok.Rng.Min, Max: tok.Rng.Max}
}

// --- Tagged ---

func (p *Parser) finishTaggedKeyword() (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind != lexer.LParen {
		return ast.TaggedAny(), nil
	}
	p.lex.Next() // consume '('

	sel, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Comma, perr.UnexpectedToken); err != nil {
		return nil, err
	}

	// The content pattern occupies the rest of the parenthesised region,
	// up to the matching ')'. Scan the raw remainder with a depth
	// counter so nested parens inside the content pattern are preserved,
	// then parse that substring independently and offset its errors.
	remainder := p.lex.Remainder()
	depth := 1
	i := 0
	for ; i < len(remainder); i++ {
		switch remainder[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				goto found
			}
		}
	}
found:
	if depth != 0 {
		return nil, perr.New(perr.UnmatchedParentheses, p.lex.Span())
	}
	contentSrc := remainder[:i]
	baseOffset := p.lex.Span().Start
	p.lex.Bump(i + 1) // consume content + closing ')'

	sub := New(contentSrc)
	sub.depth, sub.maxDepth = p.depth, p.maxDepth
	content, innerErr := parseWithParser(sub, contentSrc)
	if innerErr != nil {
		return nil, innerErr.Offset(baseOffset)
	}

	switch sel.Kind {
	case lexer.NumberLiteral:
		return ast.TaggedTag(uint64(sel.Num), content), nil
	case lexer.RegexLiteral:
		engine, rxErr := rx.Compile(sel.Str)
		if rxErr != nil {
			return nil, perr.New(perr.InvalidRegex, sel.Span).WithCause(rxErr)
		}
		return ast.TaggedRegex(engine, sel.Str, content), nil
	case lexer.Ident, lexer.GroupName, lexer.SingleQuoted:
		return ast.TaggedName(sel.Str, content), nil
	case lexer.EOF:
		return nil, perr.New(perr.UnexpectedEndOfInput, sel.Span)
	}
	return nil, perr.New(perr.UnexpectedToken, sel.Span)
}

// --- Grouping, search, capture ---

func (p *Parser) finishGroup(open lexer.Token) (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == lexer.RParen {
		return nil, perr.New(perr.ExpectedPattern, peek.Span)
	}
	inner, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, perr.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *Parser) finishSearch(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	if _, err := p.expect(lexer.LParen, perr.ExpectedOpenParen); err != nil {
		return nil, err
	}
	inner, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, perr.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return ast.Search(inner), nil
}

func (p *Parser) finishCapture(tok lexer.Token) (*ast.Pattern, *perr.Error) {
	if _, err := p.expect(lexer.LParen, perr.ExpectedOpenParen); err != nil {
		return nil, err
	}
	inner, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, perr.ExpectedCloseParen); err != nil {
		return nil, err
	}
	return ast.Capture(tok.Str, inner), nil
}

// --- Quantifier suffix ---

func (p *Parser) maybeApplyQuantifier(pat *ast.Pattern) (*ast.Pattern, *perr.Error) {
	peek, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	var q ast.Quantifier
	switch peek.Kind {
	case lexer.Star:
		q = ast.Quantifier{Interval: ast.ZeroOrMore(), Reluctance: ast.Greedy}
	case lexer.StarLazy:
		q = ast.Quantifier{Interval: ast.ZeroOrMore(), Reluctance: ast.Lazy}
	case lexer.StarPoss:
		q = ast.Quantifier{Interval: ast.ZeroOrMore(), Reluctance: ast.Possessive}
	case lexer.Plus:
		q = ast.Quantifier{Interval: ast.OneOrMore(), Reluctance: ast.Greedy}
	case lexer.PlusLazy:
		q = ast.Quantifier{Interval: ast.OneOrMore(), Reluctance: ast.Lazy}
	case lexer.PlusPoss:
		q = ast.Quantifier{Interval: ast.OneOrMore(), Reluctance: ast.Possessive}
	case lexer.Quest:
		q = ast.Quantifier{Interval: ast.ZeroOrOne(), Reluctance: ast.Greedy}
	case lexer.QuestLazy:
		q = ast.Quantifier{Interval: ast.ZeroOrOne(), Reluctance: ast.Lazy}
	case lexer.QuestPoss:
		q = ast.Quantifier{Interval: ast.ZeroOrOne(), Reluctance: ast.Possessive}
	case lexer.RangeQuantifier:
		q = ast.Quantifier{
			Interval:   ast.Interval{Min: peek.Rng.Min, Max: peek.Rng.Max},
			Reluctance: reluctanceFromLexer(peek.Rng.Reluctance),
		}
	default:
		return pat, nil
	}
	p.lex.Next()
	return ast.Repeat(pat, q), nil
}

func reluctanceFromLexer(r lexer.Reluctance) ast.Reluctance {
	switch r {
	case lexer.Lazy:
		return ast.Lazy
	case lexer.Possessive:
		return ast.Possessive
	default:
		return ast.Greedy
	}
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, strconv.ErrSyntax
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}
