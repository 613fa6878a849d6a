package expr

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"flightdeck/pkg/simvar"
)

// DefaultCacheSize is the number of parsed expressions a Parser keeps.
const DefaultCacheSize = 256

type parsed struct {
	deps []simvar.Registration
	expr *Expression
}

// Parser parses feedback expressions and caches the result per input string.
type Parser struct {
	cache *lru.Cache[string, parsed]
}

// NewParser returns a parser with an LRU cache of the given size.
func NewParser(size int) *Parser {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, parsed](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Parser{cache: cache}
}

// Parse returns the dependent registrations and the expression for input.
// Equal inputs return the same *Expression.
func (p *Parser) Parse(input string) ([]simvar.Registration, *Expression) {
	key := strings.TrimSpace(input)
	if key == "" {
		return nil, nil
	}
	if hit, ok := p.cache.Get(key); ok {
		return cloneDeps(hit.deps), hit.expr
	}
	deps, e := Parse(key)
	p.cache.Add(key, parsed{deps: deps, expr: e})
	return cloneDeps(deps), e
}

// Parse parses a feedback expression such as "GENERAL ENG OIL PRESSURE:1 > 0".
// Without an operator the input is a single variable tested for non-zero.
// Unparseable input yields no dependencies and a nil expression.
func Parse(input string) ([]simvar.Registration, *Expression) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	for _, op := range operators {
		idx := strings.Index(input, string(op))
		if idx < 0 {
			continue
		}
		return parseComparison(input[:idx], op, input[idx+len(op):])
	}

	left, ok := simvar.ResolveSetting(input)
	if !ok {
		return nil, nil
	}
	e := &Expression{Left: left, Op: OpNotEqual, Literal: 0}
	return e.Dependencies(), e
}

func parseComparison(lhs string, op Operator, rhs string) ([]simvar.Registration, *Expression) {
	left, ok := simvar.ResolveSetting(lhs)
	if !ok {
		return nil, nil
	}

	rhs = strings.TrimSpace(rhs)
	if literal, err := strconv.ParseFloat(rhs, 64); err == nil {
		e := &Expression{Left: left, Op: op, Literal: literal}
		return e.Dependencies(), e
	}

	right, ok := simvar.ResolveSetting(rhs)
	if !ok || right == left {
		return nil, nil
	}
	e := &Expression{Left: left, Op: op, Right: &right}
	return e.Dependencies(), e
}

func cloneDeps(deps []simvar.Registration) []simvar.Registration {
	if deps == nil {
		return nil
	}
	return append([]simvar.Registration(nil), deps...)
}
