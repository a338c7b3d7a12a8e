package match

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
)

func evalStructure(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	switch p.Variant {
	case ast.VArray:
		return evalArray(p, v, pathToV)
	case ast.VMap:
		return evalMap(p, v, pathToV)
	case ast.VTagged:
		return evalTagged(p, v, pathToV)
	}
	return nil
}

func evalArray(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	items, ok := v.ArrayItems()
	if !ok {
		return nil
	}
	switch p.Mode {
	case ast.ModeAny:
		return []result{{path: pathToV}}
	case ast.ModeLength:
		if !p.Length.Contains(uint64(len(items))) {
			return nil
		}
		return []result{{path: pathToV}}
	case ast.ModeElements:
		return evalArrayElements(p.Sub, items, pathToV)
	}
	return nil
}

// evalArrayElements implements the three element-pattern shapes from the
// Array(Elements) dispatch: Sequence/Repeat drives the backtracker below,
// any other Meta combinator is existential over the elements, and a bare
// Value/Structure/Any pattern requires exactly one element.
func evalArrayElements(sub *ast.Pattern, items []cbor.Value, pathToArray Path) []result {
	switch {
	case sub.Variant == ast.VSequence || sub.Variant == ast.VRepeat:
		return evalArraySequence(sub, items, pathToArray)
	case sub.Kind == ast.KindMeta:
		return evalArrayAnyElement(sub, items, pathToArray)
	default:
		if len(items) != 1 {
			return nil
		}
		itemPath := extend(pathToArray, items[0])
		rs := eval(sub, items[0], itemPath)
		if len(rs) == 0 {
			return nil
		}
		caps := newCaptures()
		for _, r := range rs {
			mergeCaptures(caps, r.caps)
		}
		return []result{{path: pathToArray, caps: caps}}
	}
}

func evalArrayAnyElement(sub *ast.Pattern, items []cbor.Value, pathToArray Path) []result {
	caps := newCaptures()
	any := false
	for _, it := range items {
		itemPath := extend(pathToArray, it)
		rs := eval(sub, it, itemPath)
		if len(rs) == 0 {
			continue
		}
		any = true
		for _, r := range rs {
			mergeCaptures(caps, r.caps)
		}
	}
	if !any {
		return nil
	}
	return []result{{path: pathToArray, caps: caps}}
}

func evalMap(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	entries, ok := v.MapEntries()
	if !ok {
		return nil
	}
	switch p.Mode {
	case ast.ModeAny:
		return []result{{path: pathToV}}
	case ast.ModeLength:
		if !p.Length.Contains(uint64(len(entries))) {
			return nil
		}
		return []result{{path: pathToV}}
	case ast.ModeValue:
		return evalMapConstraints(p.Constraints, entries, pathToV)
	}
	return nil
}

// evalMapConstraints requires, for every (kp, vp) pair, some entry of the
// map whose key matches kp and whose value matches vp. Constraint order
// and duplicate constraints are irrelevant — each is checked independently
// against the whole entry set.
func evalMapConstraints(constraints []ast.KVConstraint, entries []cbor.MapEntry, pathToV Path) []result {
	caps := newCaptures()
	for _, kv := range constraints {
		satisfied := false
		for _, e := range entries {
			kPath := extend(pathToV, e.Key)
			kr := eval(kv.Key, e.Key, kPath)
			if len(kr) == 0 {
				continue
			}
			vPath := extend(pathToV, e.Value)
			vr := eval(kv.Value, e.Value, vPath)
			if len(vr) == 0 {
				continue
			}
			satisfied = true
			for _, r := range kr {
				mergeCaptures(caps, r.caps)
			}
			for _, r := range vr {
				mergeCaptures(caps, r.caps)
			}
		}
		if !satisfied {
			return nil
		}
	}
	return []result{{path: pathToV, caps: caps}}
}

func evalTagged(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	tag, ok := v.TagValue()
	if !ok {
		return nil
	}
	content, _ := v.TagContent()
	switch p.Mode {
	case ast.ModeAny:
		return []result{{path: pathToV}}
	case ast.ModeTag:
		if tag != p.TagNum {
			return nil
		}
		return evalTaggedContent(p.Sub, content, pathToV)
	case ast.ModeName:
		if tagName(tag) != p.TagName {
			return nil
		}
		return evalTaggedContent(p.Sub, content, pathToV)
	case ast.ModeRegex:
		if !p.Rx.MatchString(tagName(tag)) {
			return nil
		}
		return evalTaggedContent(p.Sub, content, pathToV)
	}
	return nil
}

func evalTaggedContent(sub *ast.Pattern, content cbor.Value, pathToV Path) []result {
	contentPath := extend(pathToV, content)
	rs := eval(sub, content, contentPath)
	if len(rs) == 0 {
		return nil
	}
	caps := newCaptures()
	for _, r := range rs {
		mergeCaptures(caps, r.caps)
	}
	return []result{{path: pathToV, caps: caps}}
}
