package dcborpath

import (
	"errors"
	"strings"
	"testing"

	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/perr"
	"github.com/dcbor-community/dcborpath/vm"
)

func TestFacadeParseMatchesPathsRoundtrip(t *testing.T) {
	p, err := Parse("[@first(number), @rest((*)*)]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	h := cbor.Array(cbor.Int(1), cbor.Text("a"), cbor.Bool(true))
	if !Matches(p, h) {
		t.Fatal("expected match")
	}
	paths, caps := PathsWithCaptures(p, h)
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	if len(caps["first"]) != 1 {
		t.Fatalf("expected 1 capture for first, got %+v", caps["first"])
	}

	reparsed, err := Parse(Display(p))
	if err != nil {
		t.Fatalf("reparse Display output: %v", err)
	}
	if Display(reparsed) != Display(p) {
		t.Fatalf("display roundtrip mismatch: %q vs %q", Display(reparsed), Display(p))
	}
}

func TestFacadeCompileRunAgreesWithDirect(t *testing.T) {
	p, err := Parse("1..10")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog := Compile(p)
	h := cbor.Int(5)
	directPaths := Paths(p, h)
	vmPaths, _, err2 := Run(prog, h)
	if err2 != nil {
		t.Fatalf("Run: %v", err2)
	}
	if len(directPaths) != len(vmPaths) {
		t.Fatalf("direct=%d vm=%d", len(directPaths), len(vmPaths))
	}
}

func TestFacadeFormatPaths(t *testing.T) {
	p, _ := Parse("number")
	h := cbor.Int(42)
	paths := Paths(p, h)
	out := FormatPaths(paths, DefaultOptions())
	if !strings.Contains(out, "42") {
		t.Fatalf("expected rendered output to contain 42, got %q", out)
	}
}

func TestFacadeParseError(t *testing.T) {
	_, err := Parse("number extra")
	if err == nil {
		t.Fatal("expected a parse error for trailing garbage")
	}
}

func TestParseWithOptionsRecursionLimit(t *testing.T) {
	nested := strings.Repeat("(", 10) + "number" + strings.Repeat(")", 10)

	if _, err := ParseWithOptions(nested, Options{MaxDepth: 20}); err != nil {
		t.Fatalf("expected nesting within the limit to parse cleanly, got %v", err)
	}

	_, err := ParseWithOptions(nested, Options{MaxDepth: 3})
	if err == nil {
		t.Fatal("expected a RecursionLimitExceeded error for nesting beyond MaxDepth")
	}
	if err.Kind != perr.RecursionLimitExceeded {
		t.Fatalf("expected RecursionLimitExceeded, got %v", err.Kind)
	}

	// MaxDepth 0 (DefaultOptions) stays unbounded.
	if _, err := ParseWithOptions(nested, DefaultOptions()); err != nil {
		t.Fatalf("expected unbounded default options to parse deep nesting, got %v", err)
	}
}

func TestCompileWithOptionsStepBudget(t *testing.T) {
	p, err := Parse("[(number)*]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	h := cbor.Array(cbor.Int(1), cbor.Int(2), cbor.Int(3), cbor.Int(4), cbor.Int(5))

	prog := CompileWithOptions(p, Options{MaxSteps: 1})
	_, _, runErr := Run(prog, h)
	if runErr == nil {
		t.Fatal("expected a step-budget error for a one-instruction budget")
	}
	if !errors.Is(runErr, vm.ErrStepBudgetExceeded) {
		t.Fatalf("expected ErrStepBudgetExceeded, got %v", runErr)
	}

	unbounded := CompileWithOptions(p, Options{MaxSteps: 0})
	paths, _, runErr := Run(unbounded, h)
	if runErr != nil {
		t.Fatalf("expected MaxSteps 0 to mean unbounded, got %v", runErr)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
}
