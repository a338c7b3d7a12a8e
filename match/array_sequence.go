package match

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
)

// seqItem is one element of an array-sequence pattern, with its Capture
// wrapping (if any) peeled off so the backtracker can test and record
// captures uniformly whether the item is a plain pattern, a repeat, a
// capture of a single element, a capture of a whole repeated run, or a
// repeat whose inner pattern captures each element individually.
type seqItem struct {
	testPat  *ast.Pattern
	repeatQ  *ast.Quantifier
	wholeCap string // Capture(name, Repeat(p,q)): captures the consumed run as one path
	perCap   string // Repeat(Capture(name,p), q): captures each consumed element
	singleCap string // Capture(name, p) on a non-repeat item: captures its one element
}

func extractSeqItem(raw *ast.Pattern) seqItem {
	it := seqItem{testPat: raw}
	cur := raw
	wholeCapture := ""
	if cur.Variant == ast.VCapture {
		wholeCapture = cur.CaptureName
		cur = cur.Sub
	}
	if cur.Variant == ast.VRepeat {
		q := cur.Quantifier
		it.repeatQ = &q
		inner := cur.Sub
		switch {
		case wholeCapture != "":
			it.wholeCap = wholeCapture
			it.testPat = inner
		case inner.Variant == ast.VCapture:
			it.perCap = inner.CaptureName
			it.testPat = inner.Sub
		default:
			it.testPat = inner
		}
		return it
	}
	if wholeCapture != "" {
		it.singleCap = wholeCapture
	}
	it.testPat = cur
	return it
}

// evalArraySequence assigns array elements to a sequence of element
// patterns left to right: each non-repeat pattern consumes exactly one
// element, and each Repeat(p, {lo,hi?,reluctance}) consumes a contiguous
// run of k elements (lo <= k <= min(hi, remaining)) all matching p.
// Repeats are greedy by default (try max first), Lazy tries min first,
// Possessive commits to the longest matching run with no backtracking.
func evalArraySequence(sub *ast.Pattern, items []cbor.Value, pathToArray Path) []result {
	var rawItems []*ast.Pattern
	if sub.Variant == ast.VSequence {
		rawItems = sub.Children
	} else {
		rawItems = []*ast.Pattern{sub}
	}
	seqItems := make([]seqItem, len(rawItems))
	for i, r := range rawItems {
		seqItems[i] = extractSeqItem(r)
	}

	n := len(items)
	assign := make([][]int, len(seqItems))
	elemCaps := make([]Captures, n)

	testElem := func(pat *ast.Pattern, idx int) bool {
		itemPath := extend(pathToArray, items[idx])
		rs := eval(pat, items[idx], itemPath)
		if len(rs) == 0 {
			return false
		}
		c := newCaptures()
		for _, r := range rs {
			mergeCaptures(c, r.caps)
		}
		elemCaps[idx] = c
		return true
	}

	// rec succeeds once every item in the sequence has found an assignment;
	// elements left over past the last consumed index are simply not
	// part of the match (the sequence is not anchored to the array's end).
	var rec func(ii, ei int) bool
	rec = func(ii, ei int) bool {
		if ii == len(seqItems) {
			return true
		}
		it := seqItems[ii]
		if it.repeatQ == nil {
			if ei >= n || !testElem(it.testPat, ei) {
				return false
			}
			assign[ii] = []int{ei}
			if rec(ii+1, ei+1) {
				return true
			}
			assign[ii] = nil
			return false
		}

		lo := it.repeatQ.Interval.Min
		remaining := uint64(n - ei)
		hi := it.repeatQ.Interval.UpperOr(remaining)
		if hi > remaining {
			hi = remaining
		}
		if hi < lo {
			return false
		}

		tryK := func(k uint64) bool {
			for j := uint64(0); j < k; j++ {
				if !testElem(it.testPat, ei+int(j)) {
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

		switch it.repeatQ.Reluctance {
		case ast.Possessive:
			k := uint64(0)
			for k < hi && testElem(it.testPat, ei+int(k)) {
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
		default: // Greedy
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

	caps := newCaptures()
	for ii, it := range seqItems {
		idxs := assign[ii]
		switch {
		case it.wholeCap != "":
			run := make([]cbor.Value, len(idxs))
			for j, idx := range idxs {
				run[j] = items[idx]
			}
			caps.add(it.wholeCap, extend(pathToArray, cbor.Array(run...)))
		case it.perCap != "":
			for _, idx := range idxs {
				caps.add(it.perCap, extend(pathToArray, items[idx]))
			}
		case it.singleCap != "":
			for _, idx := range idxs {
				caps.add(it.singleCap, extend(pathToArray, items[idx]))
			}
		}
		for _, idx := range idxs {
			if c := elemCaps[idx]; c != nil {
				mergeCaptures(caps, c)
			}
		}
	}
	return []result{{path: pathToArray, caps: caps}}
}
