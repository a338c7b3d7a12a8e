// Package dcborpath is the public façade over the pattern-matching engine:
// parse pattern source, match it against a decoded CBOR value either
// directly or through the compiled VM, and render the results. Everything
// here is a thin, allocation-light wrapper around the lower packages
// (lexer, parser, ast, match, vm, format) — the façade's only job is to
// give callers one import and one vocabulary.
package dcborpath

import (
	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/format"
	"github.com/dcbor-community/dcborpath/match"
	"github.com/dcbor-community/dcborpath/parser"
	"github.com/dcbor-community/dcborpath/perr"
	"github.com/dcbor-community/dcborpath/vm"
)

// Pattern is the parsed, immutable AST of a pattern, safe to share and
// reuse across any number of Matches/Paths/PathsWithCaptures/Compile calls.
type Pattern = ast.Pattern

// Program is a compiled Pattern, ready for repeated Run calls.
type Program = vm.Program

// Path and Captures are a match result's path (haystack root to matched
// node, both ends inclusive) and its named sub-matches.
type Path = match.Path
type Captures = match.Captures

// Error is a parse-time error carrying a source span and a Kind drawn
// from the lexer/parser error taxonomy.
type Error = perr.Error

// Options bundles the formatter's rendering defaults with the recursion
// and step budgets that bound worst-case pattern nesting and execution
// cost (spec.md §5's "implementations are free to impose a configurable
// step-count budget"), mirroring coregx's Config/DefaultConfig pattern.
// The zero value imposes no budget — MaxDepth/MaxSteps of 0 mean
// unbounded, identical to plain Parse/Compile — and its zero Format renders
// full diagnostic notation; DefaultOptions() carries
// format.DefaultOptions() instead.
type Options struct {
	Format format.Options

	// MaxDepth bounds parser recursion depth across nested parens,
	// tagged(...), @name(...), ...(...), and array/map sub-patterns. Zero
	// means unbounded. Consumed by ParseWithOptions.
	MaxDepth int

	// MaxSteps bounds the number of VM instructions a Program compiled by
	// CompileWithOptions may execute via Run/Matches before aborting with
	// vm.ErrStepBudgetExceeded. Zero means unbounded.
	MaxSteps int
}

// DefaultOptions is the zero-configuration rendering and unbounded
// recursion/step budget used by Display, Parse, and Compile.
func DefaultOptions() Options { return Options{Format: format.DefaultOptions()} }

// Parse compiles pattern source into a Pattern AST, or returns a
// positioned Error describing the first lexical or syntactic problem.
func Parse(src string) (*Pattern, *Error) {
	return parser.Parse(src)
}

// ParseWithOptions parses src like Parse, additionally bounding recursion
// depth by opts.MaxDepth: a pattern nested deeper than that fails fast
// with a RecursionLimitExceeded Error instead of risking a stack overflow
// on pathological input (e.g. thousands of nested parens).
func ParseWithOptions(src string, opts Options) (*Pattern, *Error) {
	return parser.ParseWithMaxDepth(src, opts.MaxDepth)
}

// Matches reports whether p matches the haystack h anywhere at the root
// (use Search(...) patterns, i.e. "...(...)", to match anywhere in the
// tree).
func Matches(p *Pattern, h cbor.Value) bool {
	return match.Matches(p, h)
}

// Paths returns every path p matches against h.
func Paths(p *Pattern, h cbor.Value) []Path {
	return match.Paths(p, h)
}

// PathsWithCaptures returns every matched path together with the merged
// table of named captures recorded along the way.
func PathsWithCaptures(p *Pattern, h cbor.Value) ([]Path, Captures) {
	return match.PathsWithCaptures(p, h)
}

// Display renders p back to its canonical pattern-language text; reparsing
// the result yields a structurally equal Pattern.
func Display(p *Pattern) string {
	return p.String()
}

// Compile translates p into a Program for repeated matching via Run — the
// same matching contract as Matches/Paths/PathsWithCaptures, executed by
// the bytecode VM instead of the direct tree-walking matcher.
func Compile(p *Pattern) *Program {
	return vm.Compile(p)
}

// CompileWithOptions compiles p like Compile, additionally baking in
// opts.MaxSteps as the returned Program's step budget: Run/Matches abort
// with a *vm.RunError wrapping vm.ErrStepBudgetExceeded once that many
// instructions have executed without reaching a verdict.
func CompileWithOptions(p *Pattern, opts Options) *Program {
	prog := vm.Compile(p)
	prog.MaxSteps = opts.MaxSteps
	return prog
}

// Run executes a compiled Program against h, returning the same
// (paths, captures) pair PathsWithCaptures would for the Pattern it was
// compiled from. err is non-nil only when prog was compiled with
// CompileWithOptions and its step budget was exceeded.
func Run(prog *Program, h cbor.Value) ([]Path, Captures, error) {
	return vm.Run(prog, h)
}

// FormatPaths renders a list of matched paths for display.
func FormatPaths(paths []Path, opts Options) string {
	return format.FormatPaths(paths, opts.Format)
}

// FormatPathsWithCaptures renders captures (sorted lexicographically by
// name) followed by the regular match paths.
func FormatPathsWithCaptures(paths []Path, captures Captures, opts Options) string {
	return format.FormatPathsWithCaptures(paths, captures, opts.Format)
}
