package parser

import (
	"testing"

	"github.com/dcbor-community/dcborpath/ast"
)

func mustParse(t *testing.T, src string) *ast.Pattern {
	t.Helper()
	p, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return p
}

func TestParseScalarKeywords(t *testing.T) {
	cases := map[string]ast.Variant{
		"bool":   ast.VBool,
		"number": ast.VNumber,
		"text":   ast.VText,
		"bytes":  ast.VByteString,
		"date":   ast.VDate,
		"digest": ast.VDigest,
		"known":  ast.VKnownValue,
		"array":  ast.VArray,
		"map":    ast.VMap,
		"tagged": ast.VTagged,
	}
	for src, want := range cases {
		p := mustParse(t, src)
		if p.Variant != want {
			t.Errorf("%q: got variant %v want %v", src, p.Variant, want)
		}
		if p.Mode != ast.ModeAny {
			t.Errorf("%q: got mode %v want ModeAny", src, p.Mode)
		}
	}
}

func TestParseBoolLiterals(t *testing.T) {
	if mustParse(t, "true").Mode != ast.ModeTrue {
		t.Fatal("expected ModeTrue")
	}
	if mustParse(t, "false").Mode != ast.ModeFalse {
		t.Fatal("expected ModeFalse")
	}
}

func TestParseNumberForms(t *testing.T) {
	p := mustParse(t, "42")
	if p.Variant != ast.VNumber || p.Mode != ast.ModeValue || p.NumVal != 42 {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "1..10")
	if p.Mode != ast.ModeRange || p.NumLo != 1 || p.NumHi != 10 {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, ">=5")
	if p.Mode != ast.ModeGE || p.NumVal != 5 {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "NaN")
	if p.Mode != ast.ModeNaN {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "-Infinity")
	if p.Mode != ast.ModeNegInf {
		t.Fatalf("got %+v", p)
	}
}

func TestParseTextForms(t *testing.T) {
	p := mustParse(t, `"hello"`)
	if p.Mode != ast.ModeValue || p.StrVal != "hello" {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, `/ab+c/`)
	if p.Mode != ast.ModeRegex || p.RxSrc != "ab+c" {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, `text/ab+c/`)
	if p.Variant != ast.VText || p.Mode != ast.ModeRegex {
		t.Fatalf("got %+v", p)
	}
}

func TestParseHexForms(t *testing.T) {
	p := mustParse(t, "h'deadbeef'")
	if p.Variant != ast.VByteString || p.Mode != ast.ModeValue {
		t.Fatalf("got %+v", p)
	}
	if len(p.BinVal) != 4 {
		t.Fatalf("got %v", p.BinVal)
	}
	p = mustParse(t, "h'/a+/'")
	if p.Mode != ast.ModeBinaryRegex || p.RxSrc != "a+" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseDigestForms(t *testing.T) {
	hex64 := ""
	for i := 0; i < 64; i++ {
		hex64 += "a"
	}
	p := mustParse(t, "digest'"+hex64+"'")
	if p.Variant != ast.VDigest || p.Mode != ast.ModeValue {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "digest'deadbeef'")
	if p.Mode != ast.ModePrefix {
		t.Fatalf("got %+v", p)
	}
}

func TestParseDateForm(t *testing.T) {
	p := mustParse(t, "date'2023-01-01'")
	if p.Variant != ast.VDate || p.Mode != ast.ModeValue {
		t.Fatalf("got %+v", p)
	}
}

func TestParseKnownValueDispatch(t *testing.T) {
	p := mustParse(t, "'42'")
	if p.Mode != ast.ModeValue || p.KnownVal != 42 {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "'eur'")
	if p.Mode != ast.ModeNamed || p.Named != "eur" {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "'/eu.*/'")
	if p.Mode != ast.ModeRegex || p.RxSrc != "eu.*" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseArrayForms(t *testing.T) {
	p := mustParse(t, "[]")
	if p.Variant != ast.VArray || p.Mode != ast.ModeLength {
		t.Fatalf("got %+v", p)
	}
	if !p.Length.Equal(ast.Exactly(1)) {
		t.Fatalf("got %v", p.Length)
	}

	p = mustParse(t, "[3,5]")
	if p.Mode != ast.ModeLength || !p.Length.Equal(ast.Between(3, 5)) {
		t.Fatalf("got %+v", p)
	}

	p = mustParse(t, "[number]")
	if p.Mode != ast.ModeElements || p.Sub.Variant != ast.VNumber {
		t.Fatalf("got %+v", p)
	}

	p = mustParse(t, "[number, text]")
	if p.Mode != ast.ModeElements || p.Sub.Variant != ast.VSequence || len(p.Sub.Children) != 2 {
		t.Fatalf("got %+v", p)
	}
}

func TestParseMapForms(t *testing.T) {
	p := mustParse(t, "{}")
	if p.Mode != ast.ModeAny {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "{3,5}")
	if p.Mode != ast.ModeLength || !p.Length.Equal(ast.Between(3, 5)) {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "{text: number}")
	if p.Mode != ast.ModeValue || len(p.Constraints) != 1 {
		t.Fatalf("got %+v", p)
	}
	if p.Constraints[0].Key.Variant != ast.VText || p.Constraints[0].Value.Variant != ast.VNumber {
		t.Fatalf("got %+v", p.Constraints[0])
	}
}

func TestParseTaggedForms(t *testing.T) {
	p := mustParse(t, "tagged(1, *)")
	if p.Mode != ast.ModeTag || p.TagNum != 1 || p.Sub.Variant != ast.VAny {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "tagged(mytag, number)")
	if p.Mode != ast.ModeName || p.TagName != "mytag" {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "tagged(/my.*/, number)")
	if p.Mode != ast.ModeRegex || p.RxSrc != "my.*" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseTaggedNestedParens(t *testing.T) {
	p := mustParse(t, "tagged(1, [number, (text | bool)])")
	if p.Mode != ast.ModeTag {
		t.Fatalf("got %+v", p)
	}
	inner := p.Sub
	if inner.Variant != ast.VArray || inner.Mode != ast.ModeElements {
		t.Fatalf("got %+v", inner)
	}
}

func TestParseCaptureAndSearch(t *testing.T) {
	p := mustParse(t, "@first(number)")
	if p.Variant != ast.VCapture || p.CaptureName != "first" {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "...(42)")
	if p.Variant != ast.VSearch {
		t.Fatalf("got %+v", p)
	}
}

func TestParseLogicalCombinators(t *testing.T) {
	p := mustParse(t, "number | text")
	if p.Variant != ast.VOr || len(p.Children) != 2 {
		t.Fatalf("got %+v", p)
	}
	p = mustParse(t, "number & !text")
	if p.Variant != ast.VAnd || p.Children[1].Variant != ast.VNot {
		t.Fatalf("got %+v", p)
	}
}

func TestParsePrecedence(t *testing.T) {
	// or > and, both lower than not/primary: "a & b | c & d" groups as
	// (a&b) | (c&d).
	p := mustParse(t, "true & false | true & true")
	if p.Variant != ast.VOr || len(p.Children) != 2 {
		t.Fatalf("got %+v", p)
	}
	if p.Children[0].Variant != ast.VAnd || p.Children[1].Variant != ast.VAnd {
		t.Fatalf("got %+v", p)
	}
}

func TestParseGroupingAndQuantifier(t *testing.T) {
	p := mustParse(t, "(number | text)*")
	if p.Variant != ast.VRepeat {
		t.Fatalf("got %+v", p)
	}
	if p.Sub.Variant != ast.VOr {
		t.Fatalf("got %+v", p.Sub)
	}
	if !p.Quantifier.Interval.Equal(ast.ZeroOrMore()) {
		t.Fatalf("got %v", p.Quantifier.Interval)
	}
}

func TestParseAnyAndQuantifierVariants(t *testing.T) {
	cases := map[string]struct {
		iv ast.Interval
		r  ast.Reluctance
	}{
		"*":      {ast.ZeroOrMore(), ast.Greedy},
		"*?":     {ast.ZeroOrMore(), ast.Lazy},
		"+":      {ast.OneOrMore(), ast.Greedy},
		"?":      {ast.ZeroOrOne(), ast.Greedy},
		"{2,4}":  {ast.Between(2, 4), ast.Greedy},
		"{2,4}?": {ast.Between(2, 4), ast.Lazy},
	}
	for suffix, want := range cases {
		src := "number" + suffix
		p := mustParse(t, src)
		if p.Variant != ast.VRepeat {
			t.Fatalf("%q: got %+v", src, p)
		}
		if !p.Quantifier.Interval.Equal(want.iv) || p.Quantifier.Reluctance != want.r {
			t.Fatalf("%q: got %+v want %+v", src, p.Quantifier, want)
		}
	}
}

func TestParseBareStarIsAny(t *testing.T) {
	p := mustParse(t, "*")
	if p.Variant != ast.VAny {
		t.Fatalf("got %+v", p)
	}
}

func TestRoundtripDisplay(t *testing.T) {
	srcs := []string{
		"number", "true", "false", "null", "1..10", ">=5", "\"hi\"",
		"array", "[number]", "[number, text]", "{}", "{text: number}",
		"tagged(1, *)", "@x(number)", "...(42)", "(number | text)*",
		"[(*)*, 42, (*)*]",
		"[]", "[{3}]", "[{3,5}]", "[{3,}]", "map{3,5}",
	}
	for _, src := range srcs {
		p := mustParse(t, src)
		out := p.String()
		p2 := mustParse(t, out)
		if !p.Equal(p2) {
			t.Errorf("roundtrip mismatch for %q: displayed %q, re-parsed differs", src, out)
		}
	}
}

func TestExtraDataError(t *testing.T) {
	_, err := Parse("number extra")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestEmptyInputError(t *testing.T) {
	_, err := Parse("   ")
	if err == nil || err.Kind.String() != "Empty input" {
		t.Fatalf("got %v", err)
	}
}
