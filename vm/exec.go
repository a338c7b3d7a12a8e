package vm

import (
	"strconv"

	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/match"
)

// Path and Captures are the VM's result types. They are defined identically
// to package match's — the direct matcher and the VM are two
// implementations of the same contract and must be interchangeable to
// callers — so they are simple aliases rather than parallel types.
type Path = match.Path
type Captures = match.Captures

// thread is one live execution: the frame it has reached plus the captures
// recorded on the way there. Every instruction may fan a thread out into
// zero or more successor threads (Split, array/map/search iteration),
// mirroring the PikeVM thread-list model this is adapted from, except a
// thread here clones captures explicitly via Go maps/slices rather than
// the copy-on-write integer slots a linear-string PikeVM uses, since CBOR
// capture values are whole paths, not byte offsets.
type thread struct {
	path Path
	caps Captures
}

// ctx carries the state every nested sub-Program still needs to resolve:
// the capture-name table built once at Compile time, and the step-budget
// counter (if any) set on the root Program. It is threaded explicitly
// through every exec call rather than kept in a package-level variable so
// Run is safe to call concurrently with itself.
type ctx struct {
	names []string

	maxSteps int
	steps    int
	aborted  bool
}

func (c *ctx) nameAt(i int) string {
	if i < 0 || i >= len(c.names) {
		return ""
	}
	return c.names[i]
}

// step counts one executed instruction and reports whether execution may
// continue. Once the budget is exhausted it latches aborted and every
// further call short-circuits, so callers need not re-check after the
// first false — unwinding the recursion back to Run costs nothing extra
// since OpConcat/OpSplit/the container loops all already treat an empty
// result as "this branch failed".
func (c *ctx) step() bool {
	if c.aborted {
		return false
	}
	c.steps++
	if c.maxSteps > 0 && c.steps > c.maxSteps {
		c.aborted = true
		return false
	}
	return true
}

func cloneCaps(c Captures) Captures {
	out := make(Captures, len(c))
	for k, v := range c {
		cp := make([]Path, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func extend(path Path, v cbor.Value) Path {
	out := make(Path, len(path)+1)
	copy(out, path)
	out[len(path)] = v
	return out
}

// tagName is the display name for an arbitrary tag number: the same
// decimal-fallback convention package match uses for Tagged(Name/Regex).
func tagName(tag uint64) string {
	return strconv.FormatUint(tag, 10)
}

// Run executes prog against the decoded CBOR value v, returning every
// matched path and the merged capture table across all of them — the same
// contract as match.PathsWithCaptures. If prog was compiled with a
// non-zero MaxSteps (see CompileWithOptions) and execution exceeds it,
// Run returns a *RunError wrapping ErrStepBudgetExceeded instead of a
// verdict.
func Run(prog *Program, v cbor.Value) ([]Path, Captures, error) {
	c := &ctx{names: prog.CaptureNames, maxSteps: prog.MaxSteps}
	threads := execProgram(c, prog, v, Path{v}, Captures{})
	if c.aborted {
		return nil, nil, &RunError{Steps: c.steps, Err: ErrStepBudgetExceeded}
	}
	paths := make([]Path, len(threads))
	out := Captures{}
	for i, th := range threads {
		paths[i] = th.path
		for name, ps := range th.caps {
			out[name] = append(out[name], ps...)
		}
	}
	return paths, out, nil
}

// Matches reports whether prog accepts at least one path through v. The
// error return follows Run's: non-nil only when a MaxSteps budget aborted
// execution before a verdict was reached.
func Matches(prog *Program, v cbor.Value) (bool, error) {
	c := &ctx{names: prog.CaptureNames, maxSteps: prog.MaxSteps}
	threads := execProgram(c, prog, v, Path{v}, Captures{})
	if c.aborted {
		return false, &RunError{Steps: c.steps, Err: ErrStepBudgetExceeded}
	}
	return len(threads) > 0, nil
}

func execProgram(c *ctx, prog *Program, v cbor.Value, path Path, caps Captures) []thread {
	if len(prog.Instrs) == 0 {
		return nil
	}
	return execInstr(c, prog.Instrs[0], v, path, caps)
}

func execInstr(c *ctx, in Instr, v cbor.Value, path Path, caps Captures) []thread {
	if !c.step() {
		return nil
	}
	switch in.Op {
	case OpMatchPredicate:
		if !match.TestValuePattern(in.Literal, v) {
			return nil
		}
		return []thread{{path: path, caps: caps}}

	case OpAny:
		return []thread{{path: path, caps: caps}}

	case OpLengthCheck:
		var n int
		var ok bool
		if in.IsMap {
			entries, e := v.MapEntries()
			ok = e
			n = len(entries)
		} else {
			items, e := v.ArrayItems()
			ok = e
			n = len(items)
		}
		if !ok || !in.Length.Contains(uint64(n)) {
			return nil
		}
		return []thread{{path: path, caps: caps}}

	case OpNotMatch:
		if len(execProgram(c, in.Sub, v, path, Captures{})) != 0 {
			return nil
		}
		return []thread{{path: path, caps: caps}}

	case OpCapture:
		inner := execProgram(c, in.Sub, v, path, Captures{})
		out := make([]thread, len(inner))
		name := c.nameAt(in.CaptureIdx)
		for i, th := range inner {
			merged := cloneCaps(caps)
			mergeInto(merged, th.caps)
			merged[name] = append(merged[name], th.path)
			out[i] = thread{path: th.path, caps: merged}
		}
		return out

	case OpConcat:
		cur := []thread{{path: path, caps: caps}}
		for _, child := range in.Children {
			var next []thread
			for _, th := range cur {
				rs := execProgram(c, child, v, th.path, Captures{})
				for _, r := range rs {
					next = append(next, thread{path: path, caps: mergeOnto(th.caps, r.caps)})
				}
			}
			cur = next
			if len(cur) == 0 {
				return nil
			}
		}
		return cur

	case OpSplit:
		for _, b := range in.Branches {
			rs := execProgram(c, b, v, path, Captures{})
			if len(rs) > 0 {
				out := make([]thread, len(rs))
				for i, r := range rs {
					out[i] = thread{path: path, caps: mergeOnto(caps, r.caps)}
				}
				return out
			}
		}
		return nil

	case OpRepeatScalar:
		if !in.Quantifier.Interval.Contains(1) {
			return nil
		}
		return execProgram(c, in.Sub, v, path, caps)

	case OpSearch:
		return execSearch(c, in.Sub, v, path, caps)

	case OpArraySequence:
		return execArraySequence(c, in.SeqItems, v, path, caps)

	case OpArrayAnyElement:
		return execArrayAnyElement(c, in.Sub, v, path, caps)

	case OpArraySingleElement:
		items, ok := v.ArrayItems()
		if !ok || len(items) != 1 {
			return nil
		}
		itemPath := extend(path, items[0])
		rs := execProgram(c, in.Sub, items[0], itemPath, Captures{})
		if len(rs) == 0 {
			return nil
		}
		merged := cloneCaps(caps)
		for _, r := range rs {
			mergeInto(merged, r.caps)
		}
		return []thread{{path: path, caps: merged}}

	case OpMapConstraints:
		entries, ok := v.MapEntries()
		if !ok {
			return nil
		}
		merged := cloneCaps(caps)
		for _, kv := range in.Constraints {
			satisfied := false
			for _, e := range entries {
				kPath := extend(path, e.Key)
				kr := execProgram(c, kv.Key, e.Key, kPath, Captures{})
				if len(kr) == 0 {
					continue
				}
				vPath := extend(path, e.Value)
				vr := execProgram(c, kv.Value, e.Value, vPath, Captures{})
				if len(vr) == 0 {
					continue
				}
				satisfied = true
				for _, r := range kr {
					mergeInto(merged, r.caps)
				}
				for _, r := range vr {
					mergeInto(merged, r.caps)
				}
			}
			if !satisfied {
				return nil
			}
		}
		return []thread{{path: path, caps: merged}}

	case OpTagDispatch:
		tag, ok := v.TagValue()
		if !ok {
			return nil
		}
		switch in.TagMode {
		case ast.ModeTag:
			if tag != in.TagNum {
				return nil
			}
		case ast.ModeName:
			if tagName(tag) != in.TagName {
				return nil
			}
		case ast.ModeRegex:
			if !in.Rx.MatchString(tagName(tag)) {
				return nil
			}
		}
		if in.Sub == nil {
			return []thread{{path: path, caps: caps}}
		}
		content, _ := v.TagContent()
		contentPath := extend(path, content)
		rs := execProgram(c, in.Sub, content, contentPath, Captures{})
		if len(rs) == 0 {
			return nil
		}
		merged := cloneCaps(caps)
		for _, r := range rs {
			mergeInto(merged, r.caps)
		}
		return []thread{{path: path, caps: merged}}
	}
	return nil
}

func execArrayAnyElement(c *ctx, sub *Program, v cbor.Value, path Path, caps Captures) []thread {
	items, ok := v.ArrayItems()
	if !ok {
		return nil
	}
	merged := cloneCaps(caps)
	any := false
	for _, it := range items {
		itemPath := extend(path, it)
		rs := execProgram(c, sub, it, itemPath, Captures{})
		if len(rs) == 0 {
			continue
		}
		any = true
		for _, r := range rs {
			mergeInto(merged, r.caps)
		}
	}
	if !any {
		return nil
	}
	return []thread{{path: path, caps: merged}}
}

func execSearch(c *ctx, sub *Program, v cbor.Value, path Path, caps Captures) []thread {
	var out []thread
	var walk func(node cbor.Value, p Path)
	walk = func(node cbor.Value, p Path) {
		rs := execProgram(c, sub, node, p, Captures{})
		for _, r := range rs {
			merged := cloneCaps(caps)
			mergeInto(merged, r.caps)
			out = append(out, thread{path: r.path, caps: merged})
		}
		switch node.Kind() {
		case cbor.KindArray:
			items, _ := node.ArrayItems()
			for _, it := range items {
				walk(it, extend(p, it))
			}
		case cbor.KindMap:
			entries, _ := node.MapEntries()
			for _, e := range entries {
				walk(e.Key, extend(p, e.Key))
				walk(e.Value, extend(p, e.Value))
			}
		case cbor.KindTagged:
			content, _ := node.TagContent()
			walk(content, extend(p, content))
		}
	}
	walk(v, path)
	return out
}

func mergeInto(dst Captures, src Captures) {
	for name, ps := range src {
		dst[name] = append(dst[name], ps...)
	}
}

func mergeOnto(base Captures, add Captures) Captures {
	c := cloneCaps(base)
	mergeInto(c, add)
	return c
}
