package vm

import (
	"testing"

	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/digest"
	"github.com/dcbor-community/dcborpath/match"
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

// assertEquivalent checks the VM and the direct matcher agree on Matches
// and on the number of produced paths for (p, h) — the "matcher equivalence"
// property both implementations must satisfy.
func assertEquivalent(t *testing.T, p *ast.Pattern, h cbor.Value) {
	t.Helper()
	prog := Compile(p)
	vmMatches, err := Matches(prog, h)
	if err != nil {
		t.Fatalf("vm.Matches: %v", err)
	}
	directMatches := match.Matches(p, h)
	if vmMatches != directMatches {
		t.Fatalf("vm.Matches=%v direct.Matches=%v", vmMatches, directMatches)
	}
	vmPaths, _, err := Run(prog, h)
	if err != nil {
		t.Fatalf("vm.Run: %v", err)
	}
	directPaths := match.Paths(p, h)
	if len(vmPaths) != len(directPaths) {
		t.Fatalf("vm produced %d paths, direct produced %d", len(vmPaths), len(directPaths))
	}
}

func TestEquivalenceSimpleValue(t *testing.T) {
	p := mustParse(t, "bool")
	assertEquivalent(t, p, cbor.Bool(true))
	assertEquivalent(t, p, cbor.Int(1))
}

func TestEquivalenceNumberRange(t *testing.T) {
	p := mustParse(t, "1..10")
	assertEquivalent(t, p, cbor.Int(5))
	assertEquivalent(t, p, cbor.Int(11))
}

func TestEquivalenceArrayElements(t *testing.T) {
	p := mustParse(t, "[(number)*]")
	assertEquivalent(t, p, cbor.Array(cbor.Int(1), cbor.Int(2), cbor.Int(3)))
	assertEquivalent(t, p, cbor.Array())
}

func TestEquivalenceArraySequenceCapture(t *testing.T) {
	p := mustParse(t, "[@first(number), @rest((*)*)]")
	h := cbor.Array(cbor.Int(1), cbor.Text("a"), cbor.Bool(true))
	prog := Compile(p)
	_, vmCaps, err := Run(prog, h)
	if err != nil {
		t.Fatalf("vm.Run: %v", err)
	}
	_, directCaps := match.PathsWithCaptures(p, h)
	if len(vmCaps["first"]) != len(directCaps["first"]) {
		t.Fatalf("first: vm=%v direct=%v", vmCaps["first"], directCaps["first"])
	}
	if len(vmCaps["rest"]) != len(directCaps["rest"]) {
		t.Fatalf("rest: vm=%v direct=%v", vmCaps["rest"], directCaps["rest"])
	}
	if !vmCaps["first"][0][1].Equal(directCaps["first"][0][1]) {
		t.Fatalf("first mismatch: vm=%v direct=%v", vmCaps["first"][0][1], directCaps["first"][0][1])
	}
}

func TestEquivalenceGreedyLazy(t *testing.T) {
	h := cbor.Array(cbor.Int(1), cbor.Int(2), cbor.Int(3))
	assertEquivalent(t, mustParse(t, "[@a((*)*?), @b(number)]"), h)
	assertEquivalent(t, mustParse(t, "[@a((*)*), @b(number)]"), h)
}

func TestEquivalenceMapConstraint(t *testing.T) {
	p := mustParse(t, "{text: number}")
	assertEquivalent(t, p, cbor.Map(
		cbor.MapEntry{Key: cbor.Text("a"), Value: cbor.Int(1)},
		cbor.MapEntry{Key: cbor.Text("b"), Value: cbor.Int(2)},
	))
	assertEquivalent(t, p, cbor.Array(cbor.Int(1)))
}

func TestEquivalenceSearch(t *testing.T) {
	p := mustParse(t, "...(42)")
	inner := cbor.Map(cbor.MapEntry{Key: cbor.Text("inner"), Value: cbor.Int(42)})
	assertEquivalent(t, p, cbor.Array(inner))
}

func TestEquivalenceTagged(t *testing.T) {
	p := mustParse(t, "tagged(1234, text)")
	assertEquivalent(t, p, cbor.Tagged(1234, cbor.Text("hi")))
	assertEquivalent(t, p, cbor.Tagged(1234, cbor.Int(1)))
}

func TestEquivalenceNotOr(t *testing.T) {
	p := mustParse(t, "!number")
	assertEquivalent(t, p, cbor.Int(1))
	assertEquivalent(t, p, cbor.Text("x"))

	p2 := mustParse(t, "@x(number) | @y(text)")
	prog := Compile(p2)
	_, vmCaps, err := Run(prog, cbor.Int(5))
	if err != nil {
		t.Fatalf("vm.Run: %v", err)
	}
	_, directCaps := match.PathsWithCaptures(p2, cbor.Int(5))
	if len(vmCaps["x"]) != len(directCaps["x"]) || len(vmCaps["y"]) != 0 {
		t.Fatalf("got vm caps %+v", vmCaps)
	}
}

func TestEquivalenceDigest(t *testing.T) {
	var d digest.Digest
	for i := range d {
		d[i] = byte(i)
	}
	h := cbor.Tagged(digest.Tag, cbor.Bytes(d.Data()))
	assertEquivalent(t, ast.DigestValue(d), h)
	assertEquivalent(t, ast.DigestPrefixPattern([]byte{0, 1, 2}), h)
	assertEquivalent(t, ast.DigestPrefixPattern([]byte{9, 9, 9}), h)
}
