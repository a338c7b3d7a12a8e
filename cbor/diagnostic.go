package cbor

import (
	"fmt"
	"strconv"
	"strings"
)

// DiagnosticOptions controls Value.Diagnostic rendering, used by the
// path formatter to render matched CBOR nodes.
type DiagnosticOptions struct {
	// Flat requests containers on one line. Diagnostic always renders
	// containers on one line, so Flat does not change its output.
	Flat bool
	// Summarize renders scalar leaves via Summary instead of full
	// diagnostic notation (e.g. long byte strings elided).
	Summarize bool
}

// Summary renders a short, single-line human-readable form of v — the
// default rendering used by the formatter for one path element per line.
func (v Value) Summary() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return strconv.Quote(v.text)
	case KindBytes:
		return fmt.Sprintf("h'%s'", hexEncode(v.by))
	case KindArray:
		return fmt.Sprintf("[%d elements]", len(v.arr))
	case KindMap:
		return fmt.Sprintf("{%d pairs}", len(v.mp))
	case KindTagged:
		return fmt.Sprintf("%d(%s)", v.tagNum, v.tagContent.Summary())
	}
	return "?"
}

// Diagnostic renders v per CBOR diagnostic notation, honoring opts.
func (v Value) Diagnostic(opts DiagnosticOptions) string {
	if opts.Summarize {
		switch v.kind {
		case KindArray, KindMap, KindTagged:
			// containers still expand structurally; only scalar leaves summarize
		default:
			return v.Summary()
		}
	}
	return v.diagnostic(opts, 0)
}

func (v Value) diagnostic(opts DiagnosticOptions, depth int) string {
	switch v.kind {
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			if opts.Summarize {
				parts[i] = item.Summary()
			} else {
				parts[i] = item.diagnostic(opts, depth+1)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, len(v.mp))
		for i, e := range v.mp {
			var kd, vd string
			if opts.Summarize {
				kd, vd = e.Key.Summary(), e.Value.Summary()
			} else {
				kd, vd = e.Key.diagnostic(opts, depth+1), e.Value.diagnostic(opts, depth+1)
			}
			parts[i] = kd + ": " + vd
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindTagged:
		var cd string
		if opts.Summarize {
			cd = v.tagContent.Summary()
		} else {
			cd = v.tagContent.diagnostic(opts, depth+1)
		}
		return fmt.Sprintf("%d(%s)", v.tagNum, cd)
	default:
		return v.Summary()
	}
}

func formatNumber(f float64) string {
	if f != f {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xF]
	}
	return string(out)
}
