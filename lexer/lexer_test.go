package lexer

import (
	"testing"

	"github.com/dcbor-community/dcborpath/perr"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error for %q: %v", src, err)
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestKeywordsAndPunctuation(t *testing.T) {
	toks := collect(t, "array & map | !tagged")
	got := kinds(toks)
	want := []Kind{KwArray, Amp, KwMap, Pipe, Bang, KwTagged, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestReluctanceSuffixes(t *testing.T) {
	cases := map[string]Kind{
		"*":  Star,
		"*?": StarLazy,
		"*+": StarPoss,
		"+":  Plus,
		"+?": PlusLazy,
		"++": PlusPoss,
		"?":  Quest,
		"??": QuestLazy,
		"?+": QuestPoss,
	}
	for src, want := range cases {
		toks := collect(t, src)
		if toks[0].Kind != want {
			t.Errorf("%q: got %v want %v", src, toks[0].Kind, want)
		}
	}
}

func TestDotsAndComparisons(t *testing.T) {
	toks := collect(t, "... .. >= <= > <")
	got := kinds(toks)
	want := []Kind{Search, DotDot, GE, LE, GT, LT, EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestRangeQuantifier(t *testing.T) {
	toks := collect(t, "{3,5}")
	if toks[0].Kind != RangeQuantifier {
		t.Fatalf("got %v", toks[0].Kind)
	}
	if toks[0].Rng.Min != 3 || toks[0].Rng.Max == nil || *toks[0].Rng.Max != 5 {
		t.Fatalf("got %+v", toks[0].Rng)
	}

	toks = collect(t, "{2,}")
	if toks[0].Rng.Min != 2 || toks[0].Rng.Max != nil {
		t.Fatalf("got %+v", toks[0].Rng)
	}

	toks = collect(t, "{4}?")
	if toks[0].Rng.Min != 4 || *toks[0].Rng.Max != 4 || toks[0].Rng.Reluctance != Lazy {
		t.Fatalf("got %+v", toks[0].Rng)
	}
}

func TestBraceDisambiguation(t *testing.T) {
	// A brace not immediately followed by a digit is plain punctuation,
	// letting the map sub-parser read key:value constraints.
	toks := collect(t, "{text: number}")
	if toks[0].Kind != LBrace {
		t.Fatalf("got %v", toks[0].Kind)
	}
	if toks[len(toks)-2].Kind != RBrace {
		t.Fatalf("got %v", toks[len(toks)-2].Kind)
	}

	toks = collect(t, "{}")
	want := []Kind{LBrace, RBrace, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %v", kinds(toks))
	}
}

func TestStringLiteral(t *testing.T) {
	toks := collect(t, `"hello \"world\""`)
	if toks[0].Kind != StringLiteral {
		t.Fatalf("got %v", toks[0].Kind)
	}
	if toks[0].Str != `hello "world"` {
		t.Fatalf("got %q", toks[0].Str)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	_, err := l.Next()
	if err == nil || err.Kind != perr.UnterminatedString {
		t.Fatalf("got %v", err)
	}
}

func TestRegexLiteral(t *testing.T) {
	toks := collect(t, `/a\/b/`)
	if toks[0].Kind != RegexLiteral || toks[0].Str != `a\/b` {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Str)
	}
}

func TestHexString(t *testing.T) {
	toks := collect(t, "h'deadbeef'")
	if toks[0].Kind != HexString {
		t.Fatalf("got %v", toks[0].Kind)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if len(toks[0].Bytes) != len(want) {
		t.Fatalf("got %v", toks[0].Bytes)
	}
	for i := range want {
		if toks[0].Bytes[i] != want[i] {
			t.Fatalf("byte %d: got %x want %x", i, toks[0].Bytes[i], want[i])
		}
	}
}

func TestHexRegex(t *testing.T) {
	toks := collect(t, "h'/ab+/'")
	if toks[0].Kind != HexRegex || toks[0].Str != "ab+" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Str)
	}
}

func TestInvalidHexStringOddLength(t *testing.T) {
	l := New("h'abc'")
	_, err := l.Next()
	if err == nil || err.Kind != perr.InvalidHexString {
		t.Fatalf("got %v", err)
	}
}

func TestSingleQuoted(t *testing.T) {
	toks := collect(t, "'eur'")
	if toks[0].Kind != SingleQuoted || toks[0].Str != "eur" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Str)
	}
}

func TestDigestAndDateQuoted(t *testing.T) {
	toks := collect(t, "digest'deadbeef'")
	if toks[0].Kind != DigestQuoted || toks[0].Str != "deadbeef" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Str)
	}

	toks = collect(t, "date'2023-01-01'")
	if toks[0].Kind != DateQuoted || toks[0].Str != "2023-01-01" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Str)
	}
}

func TestGroupName(t *testing.T) {
	toks := collect(t, "@first-one(")
	if toks[0].Kind != GroupName || toks[0].Str != "first-one" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[0].Str)
	}
}

func TestNumberLiteral(t *testing.T) {
	toks := collect(t, "-3.5")
	if toks[0].Kind != NumberLiteral || toks[0].Num != -3.5 {
		t.Fatalf("got %v %v", toks[0].Kind, toks[0].Num)
	}
}

func TestNegInfinityKeyword(t *testing.T) {
	toks := collect(t, "-Infinity")
	if toks[0].Kind != KwNegInfinity {
		t.Fatalf("got %v", toks[0].Kind)
	}
}

func TestNaNAndInfinityKeywords(t *testing.T) {
	toks := collect(t, "NaN Infinity")
	if toks[0].Kind != KwNaN || toks[1].Kind != KwInfinity {
		t.Fatalf("got %v %v", toks[0].Kind, toks[1].Kind)
	}
}

func TestEmptyInputIsJustEOF(t *testing.T) {
	toks := collect(t, "   ")
	if len(toks) != 1 || toks[0].Kind != EOF {
		t.Fatalf("got %v", kinds(toks))
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("array map")
	first, err := l.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if first.Kind != KwArray {
		t.Fatalf("got %v", first.Kind)
	}
	again, err := l.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if again.Kind != KwArray {
		t.Fatalf("second peek got %v", again.Kind)
	}
	next, err := l.Next()
	if err != nil {
		t.Fatal(err)
	}
	if next.Kind != KwArray {
		t.Fatalf("next got %v", next.Kind)
	}
	next2, _ := l.Next()
	if next2.Kind != KwMap {
		t.Fatalf("got %v", next2.Kind)
	}
}

func TestUnrecognizedToken(t *testing.T) {
	l := New("#")
	_, err := l.Next()
	if err == nil || err.Kind != perr.UnrecognizedToken {
		t.Fatalf("got %v", err)
	}
}

func TestBumpAndRemainder(t *testing.T) {
	l := New("tagged(1, *)")
	l.Next() // KwTagged
	l.Next() // LParen
	if l.Remainder() != "1, *)" {
		t.Fatalf("got %q", l.Remainder())
	}
	l.Bump(1)
	if l.Remainder() != ", *)" {
		t.Fatalf("got %q", l.Remainder())
	}
}
