package unitmath

import (
	"fmt"
	"strconv"
)

// ParseUnit parses a compound unit expression such as "m", "m/s",
// "kg m/s2", "m2" or "1/s" against a registry. Terms in the numerator
// are separated by spaces, '.' or '*'; a single '/' starts the
// denominator; a trailing signed integer on a term is its exponent.
func ParseUnit(s string, reg UnitRegistry) (Unit, error) {
	p := unitParser{in: s, reg: reg}
	return p.parse()
}

// MustParseUnit is ParseUnit against StdUnits, panicking on error.
func MustParseUnit(s string) Unit {
	u, err := ParseUnit(s, StdUnits)
	if err != nil {
		panic(err)
	}
	return u
}

type unitParser struct {
	in  string
	pos int
	reg UnitRegistry
}

func (p *unitParser) parse() (Unit, error) {
	if p.in == "" {
		return Dimensionless, nil
	}
	ans := Dimensionless
	sign := 1.0
	expectTerm := true
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		switch {
		case c == ' ' || c == '.' || c == '*':
			p.pos++
			expectTerm = true
		case c == '/':
			if sign < 0 {
				return Unit{}, fmt.Errorf("parse unit %q: repeated '/'", p.in)
			}
			sign = -1
			p.pos++
			expectTerm = true
		case c == '1' && expectTerm && p.peekDigitsOnly():
			// a bare "1" numerator, as in "1/s"
			p.pos++
			expectTerm = false
		default:
			if !expectTerm {
				return Unit{}, fmt.Errorf("parse unit %q: unexpected %q", p.in, string(c))
			}
			u, err := p.term(sign)
			if err != nil {
				return Unit{}, err
			}
			ans = ans.Mul(u)
			expectTerm = false
		}
	}
	// reparse through the registry name map so single-name results
	// keep their symbolic name
	if u, ok := p.reg.GetByName(p.in); ok {
		return u, nil
	}
	return ans, nil
}

// term scans one unit name with an optional exponent. Names are matched
// longest first via the registry peek, so "cm" never lexes as "c"+"m".
func (p *unitParser) term(sign float64) (Unit, error) {
	rest := p.in[p.pos:]
	n, ok := p.reg.Peek(rest)
	if !ok {
		return Unit{}, fmt.Errorf("parse unit %q: unknown unit at %q", p.in, rest)
	}
	u, _ := p.reg.GetByName(rest[:n])
	p.pos += n
	exp := 1.0
	if p.pos < len(p.in) && (isDigit(p.in[p.pos]) || p.in[p.pos] == '-') {
		start := p.pos
		if p.in[p.pos] == '-' {
			p.pos++
		}
		for p.pos < len(p.in) && isDigit(p.in[p.pos]) {
			p.pos++
		}
		v, err := strconv.Atoi(p.in[start:p.pos])
		if err != nil {
			return Unit{}, fmt.Errorf("parse unit %q: bad exponent at %q", p.in, p.in[start:])
		}
		exp = float64(v)
	}
	return u.Pow(sign * exp), nil
}

func (p *unitParser) peekDigitsOnly() bool {
	// the "1" shorthand only stands alone, not as a prefix of "1x"
	return p.pos+1 >= len(p.in) || !isDigit(p.in[p.pos+1])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
