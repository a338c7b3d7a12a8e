package vm

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
)

// execArraySequence assigns array elements to a sequence of compiled
// element programs left to right, exactly as match.evalArraySequence does
// against the AST directly: each non-repeat item consumes exactly one
// element, each repeat item consumes a contiguous run sized within its
// quantifier's interval (greedy tries the longest run first, lazy the
// shortest, possessive commits with no backtracking), and the match
// succeeds once every item has found an assignment — leftover array
// elements past the last consumed index are not part of the match.
func execArraySequence(c *ctx, items []SeqItemProgram, v cbor.Value, pathToArray Path, caps Captures) []thread {
	elems, ok := v.ArrayItems()
	if !ok {
		return nil
	}
	n := len(elems)
	assign := make([][]int, len(items))
	elemCaps := make([]Captures, n)

	testElem := func(prog *Program, idx int) bool {
		itemPath := extend(pathToArray, elems[idx])
		rs := execProgram(c, prog, elems[idx], itemPath, Captures{})
		if len(rs) == 0 {
			return false
		}
		merged := Captures{}
		for _, r := range rs {
			mergeInto(merged, r.caps)
		}
		elemCaps[idx] = merged
		return true
	}

	var rec func(ii, ei int) bool
	rec = func(ii, ei int) bool {
		if ii == len(items) {
			return true
		}
		it := items[ii]
		if it.RepeatQ == nil {
			if ei >= n || !testElem(it.Item, ei) {
				return false
			}
			assign[ii] = []int{ei}
			if rec(ii+1, ei+1) {
				return true
			}
			assign[ii] = nil
			return false
		}

		lo := it.RepeatQ.Interval.Min
		remaining := uint64(n - ei)
		hi := it.RepeatQ.Interval.UpperOr(remaining)
		if hi > remaining {
			hi = remaining
		}
		if hi < lo {
			return false
		}

		tryK := func(k uint64) bool {
			for j := uint64(0); j < k; j++ {
				if !testElem(it.Item, ei+int(j)) {
					return false
				}
			}
			idxs := make([]int, k)
			for j := range idxs {
				idxs[j] = ei + j
			}
			assign[ii] = idxs
			if rec(ii+1, ei+int(k)) {
				return true
			}
			assign[ii] = nil
			return false
		}

		switch it.RepeatQ.Reluctance {
		case ast.Possessive:
			k := uint64(0)
			for k < hi && testElem(it.Item, ei+int(k)) {
				k++
			}
			if k < lo {
				return false
			}
			return tryK(k)
		case ast.Lazy:
			for k := lo; k <= hi; k++ {
				if tryK(k) {
					return true
				}
			}
			return false
		default:
			for k := hi; ; k-- {
				if tryK(k) {
					return true
				}
				if k == lo {
					return false
				}
			}
		}
	}

	if !rec(0, 0) {
		return nil
	}

	merged := cloneCaps(caps)
	for ii, it := range items {
		idxs := assign[ii]
		switch {
		case it.WholeCap != "":
			run := make([]cbor.Value, len(idxs))
			for j, idx := range idxs {
				run[j] = elems[idx]
			}
			merged[it.WholeCap] = append(merged[it.WholeCap], extend(pathToArray, cbor.Array(run...)))
		case it.PerCap != "":
			for _, idx := range idxs {
				merged[it.PerCap] = append(merged[it.PerCap], extend(pathToArray, elems[idx]))
			}
		case it.SingleCap != "":
			for _, idx := range idxs {
				merged[it.SingleCap] = append(merged[it.SingleCap], extend(pathToArray, elems[idx]))
			}
		}
		for _, idx := range idxs {
			if cc := elemCaps[idx]; cc != nil {
				mergeInto(merged, cc)
			}
		}
	}
	return []thread{{path: pathToArray, caps: merged}}
}
