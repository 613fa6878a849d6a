// Package expr parses and evaluates feedback conditions over simulator variables.
package expr

import (
	"math"
	"sync"

	"flightdeck/pkg/simvar"
)

// Operator is a comparison operator token.
type Operator string

// Operators in scan priority order. Two-character tokens come before their
// one-character prefixes so ">=" is never read as ">".
const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpTruncatedEqual Operator = "~"
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
)

var operators = []Operator{
	OpEqual,
	OpNotEqual,
	OpGreaterOrEqual,
	OpLessOrEqual,
	OpTruncatedEqual,
	OpGreater,
	OpLess,
}

// Compare applies the operator. Comparisons follow IEEE-754; "~" compares the
// floored values.
func (op Operator) Compare(a, b float64) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpTruncatedEqual:
		return math.Floor(a) == math.Floor(b)
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterOrEqual:
		return a >= b
	case OpLessOrEqual:
		return a <= b
	}
	return false
}

// Expression is a parsed boolean predicate over one or two variables.
// It is safe for concurrent use and may be shared between actions.
type Expression struct {
	Left    simvar.Registration
	Op      Operator
	Right   *simvar.Registration // nil for a literal comparison
	Literal float64

	mu         sync.Mutex
	evaluated  bool
	lastLeft   float64
	lastRight  float64
	lastResult bool
}

// Dependencies returns the registrations the expression reads.
func (e *Expression) Dependencies() []simvar.Registration {
	if e.Right != nil {
		return []simvar.Registration{e.Left, *e.Right}
	}
	return []simvar.Registration{e.Left}
}

// Evaluate computes the predicate from live values. A missing operand
// evaluates to false. The result for the last operand pair is memoized.
func (e *Expression) Evaluate(values map[simvar.Registration]float64) bool {
	if e == nil {
		return false
	}
	left, ok := values[e.Left]
	if !ok {
		return false
	}
	right := e.Literal
	if e.Right != nil {
		if right, ok = values[*e.Right]; !ok {
			return false
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evaluated && e.lastLeft == left && e.lastRight == right {
		return e.lastResult
	}
	e.lastLeft, e.lastRight = left, right
	e.lastResult = e.Op.Compare(left, right)
	e.evaluated = true
	return e.lastResult
}
