package unitmath

import (
	"math"
)

// operand is one coerced input of a dispatch: either a quantity or a
// plain number/slice.
type operand struct {
	q        *Quantity // nil for plain operands
	values   []float64
	scalar   bool
	isInt    bool // plain integer operand (the ldexp exponent)
	bareUnit bool // a Unit passed with no magnitude
}

func (o *operand) hasUnit() bool {
	return o.q != nil
}

func (o *operand) unit() Unit {
	if o.q != nil {
		return o.q.unit
	}
	return Dimensionless
}

// converter prepares one input for the raw kernel: an optional value
// check followed by an optional rescale. All unit conversions are pure
// scalings.
type converter struct {
	scale float64
	check func(vals []float64) error
}

func identityConvs(n int) []converter {
	convs := make([]converter, n)
	for i := range convs {
		convs[i].scale = 1
	}
	return convs
}

// outSpec describes one output: its unit, or that the unit is stripped
// and a plain array comes back.
type outSpec struct {
	unit  Unit
	plain bool
}

// helper is one classification rule: given the operation name and its
// coerced operands it decides the input conversions and the output
// units, or rejects the operation.
type helper func(op string, args []*operand) ([]converter, []outSpec, error)

// checkArbitrary permits a plain operand next to a unit-bearing one
// only when every value is unit-exempt: zero, infinite or nan.
func checkArbitrary(op string) func([]float64) error {
	return func(vals []float64) error {
		for _, v := range vals {
			if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			return errIncompatible(op)
		}
		return nil
	}
}

func helperInvariant1(op string, args []*operand) ([]converter, []outSpec, error) {
	return identityConvs(1), []outSpec{{unit: args[0].unit()}}, nil
}

// sign strips to a pure dimensionless number whatever the input unit.
func helperSign(op string, args []*operand) ([]converter, []outSpec, error) {
	return identityConvs(1), []outSpec{{unit: Dimensionless}}, nil
}

func helperOneArgTest(op string, args []*operand) ([]converter, []outSpec, error) {
	return identityConvs(1), []outSpec{{plain: true}}, nil
}

func helperDimensionless1(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(1)
	outs := []outSpec{{unit: Dimensionless}}
	a := args[0]
	if !a.hasUnit() {
		return convs, outs, nil
	}
	f, err := a.unit().FactorTo(Dimensionless)
	if err != nil {
		return nil, nil, errCanOnlyApply(op, reqDimensionless)
	}
	convs[0].scale = f
	return convs, outs, nil
}

func helperAngleToDimensionless(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(1)
	outs := []outSpec{{unit: Dimensionless}}
	a := args[0]
	if !a.hasUnit() {
		// a plain number is taken to already be in radians
		return convs, outs, nil
	}
	f, err := a.unit().FactorTo(Radian)
	if err != nil {
		return nil, nil, errCanOnlyApply(op, reqAngle)
	}
	convs[0].scale = f
	return convs, outs, nil
}

func helperDimensionlessToAngle(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(1)
	outs := []outSpec{{unit: Radian}}
	a := args[0]
	if !a.hasUnit() {
		return convs, outs, nil
	}
	f, err := a.unit().FactorTo(Dimensionless)
	if err != nil {
		return nil, nil, errCanOnlyApply(op, reqDimensionless)
	}
	convs[0].scale = f
	return convs, outs, nil
}

// helperDegRad covers the deg2rad/rad2deg family: the input is
// reinterpreted in the conversion's source unit whatever its declared
// angle unit, so the fixed factor of the raw kernel always applies.
func helperDegRad(from, to Unit) helper {
	return func(op string, args []*operand) ([]converter, []outSpec, error) {
		convs := identityConvs(1)
		outs := []outSpec{{unit: to}}
		a := args[0]
		if !a.hasUnit() {
			return convs, outs, nil
		}
		u := a.unit()
		switch {
		case u.isAngle():
			f, err := u.FactorTo(from)
			if err != nil {
				return nil, nil, errCanOnlyApply(op, reqAngle)
			}
			convs[0].scale = f
		case u.dims.IsZero():
			// scaled dimensionless input reads as the source unit
			f, _ := u.FactorTo(Dimensionless)
			convs[0].scale = f
		default:
			return nil, nil, errCanOnlyApply(op, reqAngle)
		}
		return convs, outs, nil
	}
}

func helperPowerFixed(p float64) helper {
	return func(op string, args []*operand) ([]converter, []outSpec, error) {
		return identityConvs(1), []outSpec{{unit: args[0].unit().Pow(p)}}, nil
	}
}

// helperModf requires input convertible to dimensionless; both outputs
// are unscaled dimensionless.
func helperModf(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(1)
	outs := []outSpec{{unit: Dimensionless}, {unit: Dimensionless}}
	a := args[0]
	if !a.hasUnit() {
		return convs, outs, nil
	}
	f, err := a.unit().FactorTo(Dimensionless)
	if err != nil {
		return nil, nil, errCanOnlyApply(op, reqDimensionless)
	}
	convs[0].scale = f
	return convs, outs, nil
}

// helperFrexp is stricter than helperModf: the input unit must be
// literally unscaled dimensionless, not merely convertible. The second
// output is a plain integer array.
func helperFrexp(op string, args []*operand) ([]converter, []outSpec, error) {
	a := args[0]
	if a.hasUnit() && !a.unit().IsUnscaledDimensionless() {
		return nil, nil, errCanOnlyApply(op, reqUnscaled)
	}
	return identityConvs(1), []outSpec{{unit: Dimensionless}, {plain: true}}, nil
}

// helperTwoArgInvariant serves both the invariant arithmetic family and
// the comparisons: both sides must share compatible dimensions, and the
// second operand is converted into the first operand's unit (the
// documented tie-break for two genuinely different compatible units).
// A plain operand next to a dimension-bearing one is exempt only where
// its values are all zero/inf/nan.
func helperTwoArgInvariant(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(2)
	a, b := args[0], args[1]
	switch {
	case a.hasUnit() && b.hasUnit():
		f, err := b.unit().FactorTo(a.unit())
		if err != nil {
			return nil, nil, errIncompatible(op)
		}
		convs[1].scale = f
		return convs, []outSpec{{unit: a.unit()}}, nil
	case a.hasUnit():
		return halfPlainInvariant(op, convs, a, 1)
	case b.hasUnit():
		return halfPlainInvariant(op, convs, b, 0)
	default:
		return convs, []outSpec{{unit: Dimensionless}}, nil
	}
}

// halfPlainInvariant handles one quantity next to one plain operand:
// a dimensionless quantity is normalized to unscaled and the plain side
// is free; a dimension-bearing one keeps its unit and the plain side
// must pass the value exemption.
func halfPlainInvariant(op string, convs []converter, q *operand, plainIdx int) ([]converter, []outSpec, error) {
	qIdx := 1 - plainIdx
	if q.unit().IsDimensionless() {
		f, err := q.unit().FactorTo(Dimensionless)
		if err != nil {
			return nil, nil, errIncompatible(op)
		}
		convs[qIdx].scale = f
		return convs, []outSpec{{unit: Dimensionless}}, nil
	}
	convs[plainIdx].check = checkArbitrary(op)
	return convs, []outSpec{{unit: q.unit()}}, nil
}

func helperMultiply(op string, args []*operand) ([]converter, []outSpec, error) {
	out := args[0].unit().Mul(args[1].unit())
	return identityConvs(2), []outSpec{{unit: out}}, nil
}

func helperDivide(op string, args []*operand) ([]converter, []outSpec, error) {
	out := args[0].unit().Div(args[1].unit())
	return identityConvs(2), []outSpec{{unit: out}}, nil
}

// floorDivideConvs carries the shared operand logic of the flooring
// division family: the divisor converts into the dividend's unit, and
// bare units (no magnitude) are rejected.
func floorDivideConvs(op string, args []*operand) ([]converter, Unit, error) {
	a, b := args[0], args[1]
	if a.bareUnit || b.bareUnit {
		return nil, Unit{}, typeErrorf(op, "'%s' function requires quantities, not bare units", op)
	}
	convs := identityConvs(2)
	switch {
	case a.hasUnit() && b.hasUnit():
		f, err := b.unit().FactorTo(a.unit())
		if err != nil {
			return nil, Unit{}, errIncompatible(op)
		}
		convs[1].scale = f
	case a.hasUnit():
		if !a.unit().IsDimensionless() {
			convs[1].check = checkArbitrary(op)
		}
	case b.hasUnit():
		if !b.unit().IsDimensionless() {
			convs[0].check = checkArbitrary(op)
		}
	}
	return convs, args[0].unit(), nil
}

// helperFloorDivide: the quotient of a flooring division is a count,
// so its unit is always dimensionless.
func helperFloorDivide(op string, args []*operand) ([]converter, []outSpec, error) {
	convs, _, err := floorDivideConvs(op, args)
	if err != nil {
		return nil, nil, err
	}
	return convs, []outSpec{{unit: Dimensionless}}, nil
}

// helperRemainder: the remainder keeps the dividend's unit.
func helperRemainder(op string, args []*operand) ([]converter, []outSpec, error) {
	convs, u, err := floorDivideConvs(op, args)
	if err != nil {
		return nil, nil, err
	}
	return convs, []outSpec{{unit: u}}, nil
}

func helperDivmod(op string, args []*operand) ([]converter, []outSpec, error) {
	convs, u, err := floorDivideConvs(op, args)
	if err != nil {
		return nil, nil, err
	}
	return convs, []outSpec{{unit: Dimensionless}, {unit: u}}, nil
}

// helperPower: the exponent must be a dimensionless scalar for the
// general case. An array exponent is only acceptable over a base whose
// unit is dimensionless (any scale; it is normalized first), since a
// unit raised to varying powers cannot be a single quantity.
func helperPower(op string, args []*operand) ([]converter, []outSpec, error) {
	base, e := args[0], args[1]
	if base.bareUnit || e.bareUnit {
		return nil, nil, typeErrorf(op, "'%s' function requires quantities, not bare units", op)
	}
	convs := identityConvs(2)
	if e.hasUnit() {
		f, err := e.unit().FactorTo(Dimensionless)
		if err != nil {
			return nil, nil, typeErrorf(op, "Can only raise something to a dimensionless quantity")
		}
		convs[1].scale = f
	}
	if !e.scalar {
		if base.hasUnit() {
			f, err := base.unit().FactorTo(Dimensionless)
			if err != nil {
				return nil, nil, valueErrorf(op, "Quantities and units may only be raised to a scalar power")
			}
			convs[0].scale = f
		}
		return convs, []outSpec{{unit: Dimensionless}}, nil
	}
	if !base.hasUnit() {
		return convs, []outSpec{{unit: Dimensionless}}, nil
	}
	p := e.values[0] * convs[1].scale
	return convs, []outSpec{{unit: base.unit().Pow(p)}}, nil
}

// helperArctan2: both inputs must be mutually convertible (or both
// dimensionless); the output is always radian. A dimension-bearing
// quantity next to a plain number has no valid reading.
func helperArctan2(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(2)
	outs := []outSpec{{unit: Radian}}
	a, b := args[0], args[1]
	switch {
	case a.hasUnit() && b.hasUnit():
		f, err := b.unit().FactorTo(a.unit())
		if err != nil {
			return nil, nil, errIncompatible(op)
		}
		convs[1].scale = f
	case a.hasUnit():
		f, err := a.unit().FactorTo(Dimensionless)
		if err != nil {
			return nil, nil, errAsymmetricDimensionless(op)
		}
		convs[0].scale = f
	case b.hasUnit():
		f, err := b.unit().FactorTo(Dimensionless)
		if err != nil {
			return nil, nil, errAsymmetricDimensionless(op)
		}
		convs[1].scale = f
	}
	return convs, outs, nil
}

// helperHeaviside: only the sign of the first input matters, so any
// unit is fine there; the halfway value must be dimensionless.
func helperHeaviside(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(2)
	b := args[1]
	if b.hasUnit() {
		f, err := b.unit().FactorTo(Dimensionless)
		if err != nil {
			return nil, nil, errCanOnlyApply(op, reqDimensionless)
		}
		convs[1].scale = f
	}
	return convs, []outSpec{{unit: Dimensionless}}, nil
}

func helperTwoArgDimensionless(op string, args []*operand) ([]converter, []outSpec, error) {
	convs := identityConvs(2)
	for i, a := range args {
		if !a.hasUnit() {
			continue
		}
		f, err := a.unit().FactorTo(Dimensionless)
		if err != nil {
			return nil, nil, errCanOnlyApply(op, reqDimensionless)
		}
		convs[i].scale = f
	}
	return convs, []outSpec{{unit: Dimensionless}}, nil
}

// helperCopysign: the second operand contributes only its sign and is
// fully unit-exempt. A plain first operand keeps the result plain.
func helperCopysign(op string, args []*operand) ([]converter, []outSpec, error) {
	a := args[0]
	if !a.hasUnit() {
		return identityConvs(2), []outSpec{{plain: true}}, nil
	}
	return identityConvs(2), []outSpec{{unit: a.unit()}}, nil
}

// helperLdexp: the exponent must be a plain integer, never unit-bearing
// and never floating.
func helperLdexp(op string, args []*operand) ([]converter, []outSpec, error) {
	a, e := args[0], args[1]
	if e.hasUnit() || e.bareUnit {
		return nil, nil, typeErrorf(op, "Cannot use a quantity as the second argument of '%s'", op)
	}
	if !e.isInt {
		return nil, nil, typeErrorf(op, "'%s' function requires a plain integer exponent", op)
	}
	if !a.hasUnit() {
		return identityConvs(2), []outSpec{{plain: true}}, nil
	}
	return identityConvs(2), []outSpec{{unit: a.unit()}}, nil
}

// ufuncHelpers maps every supported operation to its classification
// rule; unsupportedUfuncs holds the rest. Together they must cover the
// engine registry exactly. Both are fixed at process start.
var ufuncHelpers = map[string]helper{}

var unsupportedUfuncs = map[string]bool{
	"bitwise_and": true,
	"bitwise_or":  true,
	"bitwise_xor": true,
	"invert":      true,
	"left_shift":  true,
	"right_shift": true,
	"logical_and": true,
	"logical_or":  true,
	"logical_xor": true,
	"logical_not": true,
	"isnat":       true,
}

func registerHelper(h helper, names ...string) {
	for _, name := range names {
		ufuncHelpers[name] = h
	}
}

func init() {
	registerHelper(helperInvariant1,
		"absolute", "fabs", "conj", "conjugate", "negative", "positive",
		"rint", "floor", "ceil", "trunc", "spacing")
	registerHelper(helperSign, "sign")
	registerHelper(helperOneArgTest, "isfinite", "isinf", "isnan", "signbit")
	registerHelper(helperDimensionless1,
		"exp", "exp2", "expm1", "log", "log2", "log10", "log1p")
	registerHelper(helperAngleToDimensionless,
		"sin", "cos", "tan", "sinh", "cosh", "tanh")
	registerHelper(helperDimensionlessToAngle,
		"arcsin", "arccos", "arctan", "arcsinh", "arccosh", "arctanh")
	registerHelper(helperDegRad(Degree, Radian), "deg2rad", "radians")
	registerHelper(helperDegRad(Radian, Degree), "rad2deg", "degrees")
	registerHelper(helperPowerFixed(0.5), "sqrt")
	registerHelper(helperPowerFixed(2), "square")
	registerHelper(helperPowerFixed(1.0/3.0), "cbrt")
	registerHelper(helperPowerFixed(-1), "reciprocal")
	registerHelper(helperModf, "modf")
	registerHelper(helperFrexp, "frexp")
	registerHelper(helperTwoArgInvariant,
		"add", "subtract", "hypot", "maximum", "minimum", "fmax", "fmin",
		"nextafter",
		"greater", "greater_equal", "less", "less_equal", "equal", "not_equal")
	registerHelper(helperRemainder, "remainder", "mod", "fmod")
	registerHelper(helperFloorDivide, "floor_divide")
	registerHelper(helperDivmod, "divmod")
	registerHelper(helperMultiply, "multiply")
	registerHelper(helperDivide, "divide", "true_divide")
	registerHelper(helperPower, "power", "float_power")
	registerHelper(helperArctan2, "arctan2")
	registerHelper(helperHeaviside, "heaviside")
	registerHelper(helperTwoArgDimensionless, "logaddexp", "logaddexp2")
	registerHelper(helperCopysign, "copysign")
	registerHelper(helperLdexp, "ldexp")
}
