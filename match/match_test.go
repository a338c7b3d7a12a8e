package match

import (
	"testing"

	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/digest"
	"github.com/dcbor-community/dcborpath/knownvalue"
	"github.com/dcbor-community/dcborpath/parser"
)

func mustParse(t *testing.T, src string) *ast.Pattern {
	t.Helper()
	p, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parser.Parse(%q): %v", src, err)
	}
	return p
}

func TestSimpleValue(t *testing.T) {
	p := mustParse(t, "bool")
	if !Matches(p, cbor.Bool(true)) {
		t.Fatal("expected bool to match true")
	}
	if Matches(p, cbor.Int(42)) {
		t.Fatal("expected bool not to match 42")
	}
	paths := Paths(p, cbor.Bool(true))
	if len(paths) != 1 || len(paths[0]) != 1 || !paths[0][0].Equal(cbor.Bool(true)) {
		t.Fatalf("got %+v", paths)
	}
}

func TestNumberRange(t *testing.T) {
	p := mustParse(t, "1..10")
	if !Matches(p, cbor.Int(5)) {
		t.Fatal("expected 5 in range")
	}
	if Matches(p, cbor.Int(11)) {
		t.Fatal("expected 11 out of range")
	}
}

func TestArrayElementExact(t *testing.T) {
	p := mustParse(t, "[number]")
	if !Matches(p, cbor.Array(cbor.Int(1))) {
		t.Fatal("expected [1] to match [number]")
	}
	if Matches(p, cbor.Array(cbor.Int(1), cbor.Int(2), cbor.Int(3))) {
		t.Fatal("expected [1,2,3] not to match [number]")
	}

	p2 := mustParse(t, "[(number)*]")
	if !Matches(p2, cbor.Array(cbor.Int(1), cbor.Int(2), cbor.Int(3))) {
		t.Fatal("expected [1,2,3] to match [(number)*]")
	}
	if !Matches(p2, cbor.Array()) {
		t.Fatal("expected [] to match [(number)*]")
	}
}

func TestArraySequenceWithCapture(t *testing.T) {
	p := mustParse(t, "[@first(number), @rest((*)*)]")
	h := cbor.Array(cbor.Int(1), cbor.Text("a"), cbor.Bool(true))
	paths, caps := PathsWithCaptures(p, h)
	if len(paths) != 1 || len(paths[0]) != 1 || !paths[0][0].Equal(h) {
		t.Fatalf("got paths %+v", paths)
	}
	firstPaths, ok := caps["first"]
	if !ok || len(firstPaths) != 1 || len(firstPaths[0]) != 2 {
		t.Fatalf("got first captures %+v", caps["first"])
	}
	if !firstPaths[0][0].Equal(h) || !firstPaths[0][1].Equal(cbor.Int(1)) {
		t.Fatalf("got first captures %+v", firstPaths)
	}
	restPaths, ok := caps["rest"]
	if !ok || len(restPaths) != 1 || len(restPaths[0]) != 2 {
		t.Fatalf("got rest captures %+v", caps["rest"])
	}
	wantRest := cbor.Array(cbor.Text("a"), cbor.Bool(true))
	if !restPaths[0][1].Equal(wantRest) {
		t.Fatalf("got rest sub-array %+v want %+v", restPaths[0][1], wantRest)
	}
}

func TestMapConstraint(t *testing.T) {
	p := mustParse(t, "{text: number}")
	h1 := cbor.Map(
		cbor.MapEntry{Key: cbor.Text("a"), Value: cbor.Int(1)},
		cbor.MapEntry{Key: cbor.Text("b"), Value: cbor.Int(2)},
	)
	if !Matches(p, h1) {
		t.Fatal("expected map constraint match")
	}
	h2 := cbor.Map(cbor.MapEntry{Key: cbor.Text("x"), Value: cbor.Int(99)})
	if !Matches(p, h2) {
		t.Fatal("expected second map constraint match")
	}
	if Matches(p, cbor.Array(cbor.Int(1), cbor.Int(2))) {
		t.Fatal("expected array not to match map pattern")
	}
}

func TestSearch(t *testing.T) {
	p := mustParse(t, "...(42)")
	inner := cbor.Map(cbor.MapEntry{Key: cbor.Text("inner"), Value: cbor.Int(42)})
	h := cbor.Array(inner)
	if !Matches(p, h) {
		t.Fatal("expected search to find nested 42")
	}
	paths := Paths(p, h)
	if len(paths) != 1 || len(paths[0]) != 3 {
		t.Fatalf("got %+v", paths)
	}
	if !paths[0][0].Equal(h) || !paths[0][1].Equal(inner) || !paths[0][2].Equal(cbor.Int(42)) {
		t.Fatalf("got %+v", paths[0])
	}
}

func TestTagged(t *testing.T) {
	p := mustParse(t, "tagged(1234, text)")
	if !Matches(p, cbor.Tagged(1234, cbor.Text("hi"))) {
		t.Fatal("expected tagged(1234, text) match")
	}
	if Matches(p, cbor.Tagged(1234, cbor.Int(1))) {
		t.Fatal("expected content type mismatch to fail")
	}

	p2 := mustParse(t, "tagged(/^my/, *)")
	if Matches(p2, cbor.Tagged(12, cbor.Null())) {
		t.Fatal("expected tag 12 (named \"12\") not to match /^my/")
	}
}

func TestGreedyVsLazyRepeat(t *testing.T) {
	h := cbor.Array(cbor.Int(1), cbor.Int(2), cbor.Int(3))

	lazy := mustParse(t, "[@a((*)*?), @b(number)]")
	_, caps := PathsWithCaptures(lazy, h)
	if len(caps["a"]) != 1 || !caps["a"][0][1].Equal(cbor.Array()) {
		t.Fatalf("lazy: expected a=[], got %+v", caps["a"])
	}
	bVal := caps["b"][0][1]
	if !bVal.Equal(cbor.Int(1)) {
		t.Fatalf("lazy: expected b=1, got %+v", bVal)
	}

	greedy := mustParse(t, "[@a((*)*), @b(number)]")
	_, caps2 := PathsWithCaptures(greedy, h)
	wantA := cbor.Array(cbor.Int(1), cbor.Int(2))
	if len(caps2["a"]) != 1 || !caps2["a"][0][1].Equal(wantA) {
		t.Fatalf("greedy: expected a=[1,2], got %+v", caps2["a"])
	}
	if !caps2["b"][0][1].Equal(cbor.Int(3)) {
		t.Fatalf("greedy: expected b=3, got %+v", caps2["b"])
	}
}

func TestNotInvolution(t *testing.T) {
	p := mustParse(t, "number")
	notNot := ast.Not(ast.Not(p))
	if Matches(notNot, cbor.Int(1)) != Matches(p, cbor.Int(1)) {
		t.Fatal("Not(Not(p)) should agree with p")
	}
	if Matches(notNot, cbor.Text("x")) != Matches(p, cbor.Text("x")) {
		t.Fatal("Not(Not(p)) should agree with p")
	}
}

func TestOrIdempotence(t *testing.T) {
	p := mustParse(t, "number")
	wrapped := ast.Or([]*ast.Pattern{p})
	for _, v := range []cbor.Value{cbor.Int(1), cbor.Text("x")} {
		if Matches(wrapped, v) != Matches(p, v) {
			t.Fatalf("Or([p]) disagreed with p on %+v", v)
		}
	}
}

func TestDigestPrefixAndValue(t *testing.T) {
	var d digest.Digest
	for i := range d {
		d[i] = byte(i)
	}
	h := cbor.Tagged(digest.Tag, cbor.Bytes(d.Data()))

	exact := ast.DigestValue(d)
	if !Matches(exact, h) {
		t.Fatal("expected exact digest match")
	}

	prefix := ast.DigestPrefixPattern([]byte{0, 1, 2})
	if !Matches(prefix, h) {
		t.Fatal("expected digest prefix match")
	}
	badPrefix := ast.DigestPrefixPattern([]byte{9, 9, 9})
	if Matches(badPrefix, h) {
		t.Fatal("expected digest prefix mismatch")
	}
}

func TestKnownValueNamed(t *testing.T) {
	h := cbor.Tagged(knownvalue.Tag, cbor.Uint(1))
	p := ast.KnownValueNamed("id")
	if !Matches(p, h) {
		t.Fatal("expected known-value name match")
	}
	if Matches(ast.KnownValueNamed("isA"), h) {
		t.Fatal("expected known-value name mismatch")
	}
}

func TestCaptureCompleteness(t *testing.T) {
	p := mustParse(t, "@x(number) | @y(text)")
	_, caps := PathsWithCaptures(p, cbor.Int(5))
	if _, ok := caps["x"]; !ok {
		t.Fatal("expected x to be captured when the number branch matched")
	}
	if _, ok := caps["y"]; ok {
		t.Fatal("expected y not to be captured when its branch never matched")
	}
}
