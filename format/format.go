// Package format renders matched Paths and Captures as human-readable
// text, the way a CLI or a test failure message would display a match
// result: one CBOR value per line, indented by tree depth, captures
// listed first and grouped by name.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/match"
)

// Options controls path rendering.
type Options struct {
	// Diagnostic controls how each CBOR value is rendered: the
	// collaborator's diagnostic summary when Summarize is set (as in
	// DefaultOptions), otherwise its full single-line diagnostic form.
	Diagnostic cbor.DiagnosticOptions
	// MaxLength truncates each rendered line to this many runes, appending
	// an ellipsis. Zero disables truncation.
	MaxLength int
}

// DefaultOptions is the default rendering: indented, untruncated, each
// value shown as its diagnostic summary.
func DefaultOptions() Options {
	return Options{Diagnostic: cbor.DiagnosticOptions{Summarize: true}}
}

func (o Options) render(v cbor.Value) string {
	s := v.Diagnostic(o.Diagnostic)
	if o.MaxLength > 0 {
		r := []rune(s)
		if len(r) > o.MaxLength {
			s = string(r[:o.MaxLength]) + "…"
		}
	}
	return s
}

// FormatPath renders a single path, one CBOR value per line indented
// 4*depth spaces.
func FormatPath(path match.Path, opts Options) string {
	var b strings.Builder
	for depth, v := range path {
		b.WriteString(strings.Repeat(" ", 4*depth))
		b.WriteString(opts.render(v))
		if depth != len(path)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FormatPaths renders every path, separated by blank lines.
func FormatPaths(paths []match.Path, opts Options) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = FormatPath(p, opts)
	}
	return strings.Join(lines, "\n\n")
}

// FormatPathsWithCaptures renders captures first — sorted lexicographically
// by name, each captured path preceded by "@<name>" and indented four
// spaces — then the regular match paths.
func FormatPathsWithCaptures(paths []match.Path, captures match.Captures, opts Options) string {
	var b strings.Builder

	names := make([]string, 0, len(captures))
	for name := range captures {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, p := range captures[name] {
			fmt.Fprintf(&b, "@%s\n", name)
			for depth, v := range p {
				b.WriteString(strings.Repeat(" ", 4*(depth+1)))
				b.WriteString(opts.render(v))
				b.WriteByte('\n')
			}
		}
	}

	for i, p := range paths {
		if i > 0 || len(names) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatPath(p, opts))
		if i != len(paths)-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// LastElementOnly renders only the final CBOR value in path, with no
// indentation — the terse single-line form used for compact match
// listings.
func LastElementOnly(path match.Path, opts Options) string {
	if len(path) == 0 {
		return ""
	}
	return opts.render(path[len(path)-1])
}
