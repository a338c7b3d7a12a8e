package ast

// Reluctance controls how a Repeat tries alternative repetition counts.
type Reluctance int

const (
	Greedy Reluctance = iota
	Lazy
	Possessive
)

// Suffix returns the string suffix the lexer/formatter attaches to a
// quantifier: "" for greedy, "?" for lazy, "+" for possessive.
func (r Reluctance) Suffix() string {
	switch r {
	case Lazy:
		return "?"
	case Possessive:
		return "+"
	default:
		return ""
	}
}

// Quantifier is {interval, reluctance}. The zero value is {0,} greedy
// (the zero Interval is unbounded); DefaultQuantifier gives exactly(1).
type Quantifier struct {
	Interval   Interval
	Reluctance Reluctance
}

// DefaultQuantifier is exactly(1), greedy.
func DefaultQuantifier() Quantifier {
	return Quantifier{Interval: Exactly(1), Reluctance: Greedy}
}

func (q Quantifier) String() string {
	iv := q.Interval
	var base string
	switch {
	case iv.Min == 0 && iv.Max == nil:
		base = "*"
	case iv.Min == 1 && iv.Max == nil:
		base = "+"
	case iv.Min == 0 && iv.Max != nil && *iv.Max == 1:
		base = "?"
	default:
		base = iv.String()
	}
	return base + q.Reluctance.Suffix()
}
