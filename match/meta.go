package match

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
)

func evalMeta(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	switch p.Variant {
	case ast.VAny:
		return []result{{path: pathToV}}
	case ast.VAnd:
		return evalConjunction(p.Children, v, pathToV)
	case ast.VOr:
		return evalOr(p.Children, v, pathToV)
	case ast.VNot:
		if len(eval(p.Sub, v, pathToV)) != 0 {
			return nil
		}
		return []result{{path: pathToV}}
	case ast.VCapture:
		return evalCapture(p, v, pathToV)
	case ast.VRepeat:
		// Outside array-element context a Repeat(p, q) matches a scalar
		// haystack directly when p matches and the element count 1 lies
		// within q's interval.
		if !p.Quantifier.Interval.Contains(1) {
			return nil
		}
		return eval(p.Sub, v, pathToV)
	case ast.VSequence:
		// Conjunction outside array-element context; array-sequence
		// semantics are handled by evalArrayElements before generic eval
		// ever sees a Sequence in that position.
		return evalConjunction(p.Children, v, pathToV)
	case ast.VSearch:
		return evalSearch(p.Sub, v, pathToV)
	}
	return nil
}

func evalConjunction(children []*ast.Pattern, v cbor.Value, pathToV Path) []result {
	caps := newCaptures()
	for _, c := range children {
		rs := eval(c, v, pathToV)
		if len(rs) == 0 {
			return nil
		}
		for _, r := range rs {
			mergeCaptures(caps, r.caps)
		}
	}
	return []result{{path: pathToV, caps: caps}}
}

func evalOr(children []*ast.Pattern, v cbor.Value, pathToV Path) []result {
	for _, c := range children {
		rs := eval(c, v, pathToV)
		if len(rs) == 0 {
			continue
		}
		caps := newCaptures()
		for _, r := range rs {
			mergeCaptures(caps, r.caps)
		}
		return []result{{path: pathToV, caps: caps}}
	}
	return nil
}

func evalCapture(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	rs := eval(p.Sub, v, pathToV)
	if len(rs) == 0 {
		return nil
	}
	out := make([]result, len(rs))
	for i, r := range rs {
		caps := newCaptures()
		mergeCaptures(caps, r.caps)
		caps.add(p.CaptureName, r.path)
		out[i] = result{path: r.path, caps: caps}
	}
	return out
}

// evalSearch walks the entire subtree rooted at v (v itself, then
// recursively every array element, every map key and value, and every
// tagged content), testing sub against each node. Every node that
// matches contributes its own top-level result, with its own path from
// the haystack root and its own captures.
func evalSearch(sub *ast.Pattern, v cbor.Value, pathToV Path) []result {
	var out []result
	var walk func(node cbor.Value, path Path)
	walk = func(node cbor.Value, path Path) {
		out = append(out, eval(sub, node, path)...)
		switch node.Kind() {
		case cbor.KindArray:
			items, _ := node.ArrayItems()
			for _, it := range items {
				walk(it, extend(path, it))
			}
		case cbor.KindMap:
			entries, _ := node.MapEntries()
			for _, e := range entries {
				walk(e.Key, extend(path, e.Key))
				walk(e.Value, extend(path, e.Value))
			}
		case cbor.KindTagged:
			content, _ := node.TagContent()
			walk(content, extend(path, content))
		}
	}
	walk(v, pathToV)
	return out
}
