// Package match implements the direct (non-compiled) matcher: it walks a
// Pattern and a decoded CBOR value together, without any intermediate
// bytecode, producing booleans, paths, and named captures. It is the
// reference semantics the compiler+VM (package vm) must agree with.
package match

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
)

// Path is an ordered chain of CBOR values from the root of a haystack down
// to a matched node, both endpoints included.
type Path []cbor.Value

// Captures maps a capture group name to every path recorded under it, in
// match order.
type Captures map[string][]Path

func newCaptures() Captures { return Captures{} }

func (c Captures) add(name string, p Path) {
	c[name] = append(c[name], p)
}

func mergeCaptures(dst, src Captures) {
	for name, paths := range src {
		dst[name] = append(dst[name], paths...)
	}
}

// extend returns a new Path with v appended, never aliasing path's backing
// array — needed because the array-sequence backtracker and the tree
// walker both build many paths from a shared prefix.
func extend(path Path, v cbor.Value) Path {
	out := make(Path, len(path)+1)
	copy(out, path)
	out[len(path)] = v
	return out
}

// result is one way p was judged to match a haystack node: the path to
// the matched node, plus whatever captures that match produced.
type result struct {
	path Path
	caps Captures
}

// Matches reports whether p matches h at its root (use Search to test
// every node of h).
func Matches(p *ast.Pattern, h cbor.Value) bool {
	return len(eval(p, h, Path{h})) > 0
}

// Paths returns every path p matches against h, in deterministic order
// (pre-order for Search, assignment order for array sequences).
func Paths(p *ast.Pattern, h cbor.Value) []Path {
	results := eval(p, h, Path{h})
	out := make([]Path, len(results))
	for i, r := range results {
		out[i] = r.path
	}
	return out
}

// PathsWithCaptures returns both the matched paths and the named captures
// collected across all of them.
func PathsWithCaptures(p *ast.Pattern, h cbor.Value) ([]Path, Captures) {
	results := eval(p, h, Path{h})
	paths := make([]Path, len(results))
	caps := newCaptures()
	for i, r := range results {
		paths[i] = r.path
		mergeCaptures(caps, r.caps)
	}
	return paths, caps
}

// eval is the single recursive entry point every dispatcher below calls
// back into. pathToV is the full path from the haystack root down to and
// including v.
func eval(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	switch p.Kind {
	case ast.KindValue:
		return evalValue(p, v, pathToV)
	case ast.KindStructure:
		return evalStructure(p, v, pathToV)
	case ast.KindMeta:
		return evalMeta(p, v, pathToV)
	}
	return nil
}
