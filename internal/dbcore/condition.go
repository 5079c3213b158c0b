package dbcore

import (
	"fmt"
	"regexp"
	"strings"
)

// Symbol is the comparison operator of a Case. Implemented as a tagged sum
// per DESIGN NOTES §9 rather than a class hierarchy with runtime dispatch.
type Symbol string

const (
	Eq     Symbol = "="
	NotEq  Symbol = "!="
	Lt     Symbol = "<"
	Le     Symbol = "<="
	Gt     Symbol = ">"
	Ge     Symbol = ">="
	In     Symbol = "IN"
	NotIn  Symbol = "NOT_IN"
	Like   Symbol = "LIKE"
	RangeOp Symbol = "RANGE"
)

// Case is a (symbol, operand) predicate against a single field (§4.5).
type Case struct {
	Symbol  Symbol
	Operand any // scalar, []any (IN/NOT_IN), or [2]any (RANGE: low, high)
}

// Evaluate coerces the operand to typ and reports whether value satisfies
// the case.
func (c *Case) Evaluate(value any, typ DataType) (bool, error) {
	switch c.Symbol {
	case Eq, NotEq, Lt, Le, Gt, Ge:
		operand, err := coerceType(unquote(c.Operand), typ)
		if err != nil {
			return false, err
		}
		return compareOrdered(c.Symbol, value, operand, typ)
	case In, NotIn:
		items, ok := c.Operand.([]any)
		if !ok {
			return false, Newf(KindParse, "IN/NOT_IN requires a sequence operand")
		}
		found := false
		for _, it := range items {
			coerced, err := coerceType(unquote(it), typ)
			if err != nil {
				return false, err
			}
			if valuesEqual(value, coerced) {
				found = true
				break
			}
		}
		if c.Symbol == In {
			return found, nil
		}
		return !found, nil
	case Like:
		pattern, ok := c.Operand.(string)
		if !ok {
			return false, Newf(KindParse, "LIKE requires a string operand")
		}
		re, err := likeToRegexp(pattern)
		if err != nil {
			return false, err
		}
		s, _ := value.(string)
		return re.MatchString(s), nil
	case RangeOp:
		bounds, ok := c.Operand.([2]any)
		if !ok {
			return false, Newf(KindParse, "RANGE requires a (low, high) pair")
		}
		low, err := coerceType(bounds[0], typ)
		if err != nil {
			return false, err
		}
		high, err := coerceType(bounds[1], typ)
		if err != nil {
			return false, err
		}
		okLow, _ := compareOrdered(Ge, value, low, typ)
		okHigh, _ := compareOrdered(Le, value, high, typ)
		return okLow && okHigh, nil
	default:
		return false, Newf(KindParse, "unknown case symbol %q", c.Symbol)
	}
}

// unquote strips a single layer of surrounding quotes from a string operand,
// the way a parsed string literal arrives with its quotes still attached.
func unquote(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return v
}

func compareOrdered(sym Symbol, value, operand any, typ DataType) (bool, error) {
	if typ == TypeVarchar {
		vs, _ := value.(string)
		os, _ := operand.(string)
		switch sym {
		case Eq:
			return vs == os, nil
		case NotEq:
			return vs != os, nil
		case Lt:
			return vs < os, nil
		case Le:
			return vs <= os, nil
		case Gt:
			return vs > os, nil
		case Ge:
			return vs >= os, nil
		}
	}
	vf, ok1 := toFloat(value)
	of, ok2 := toFloat(operand)
	if !ok1 || !ok2 {
		return false, Newf(KindConstraint, "cannot compare %v and %v", value, operand)
	}
	switch sym {
	case Eq:
		return vf == of, nil
	case NotEq:
		return vf != of, nil
	case Lt:
		return vf < of, nil
	case Le:
		return vf <= of, nil
	case Gt:
		return vf > of, nil
	case Ge:
		return vf >= of, nil
	}
	return false, Newf(KindParse, "unsupported comparison symbol %q", sym)
}

// likeToRegexp translates SQL wildcards (_ -> any one char, % -> any run)
// into an anchored regular expression (§4.5).
func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '_':
			b.WriteString(".")
		case '%':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, Wrap(KindParse, err, "invalid LIKE pattern %q", pattern)
	}
	return re, nil
}

func (c *Case) String() string {
	return fmt.Sprintf("%s %v", c.Symbol, c.Operand)
}
