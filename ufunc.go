package unitmath

import (
	"math"
	"sort"
)

// Ufunc is one elementwise operation of the engine: a name, an arity
// and raw float64 kernels. Unit handling is layered on top by the
// dispatcher; the kernels never see units.
type Ufunc struct {
	name string
	nin  int
	nout int

	fn1   func(float64) float64            // nin=1, nout=1
	fn2   func(a, b float64) float64       // nin=2, nout=1
	pair1 func(float64) (float64, float64) // nin=1, nout=2
	pair2 func(a, b float64) (float64, float64)
	cmp2  func(a, b float64) bool // comparisons: plain bool output
	test1 func(float64) bool      // isfinite and friends

	// frexp's second output is a plain integer array, never unit-tagged
	intOut2 bool
}

func (u *Ufunc) Name() string { return u.name }
func (u *Ufunc) NIn() int     { return u.nin }
func (u *Ufunc) NOut() int    { return u.nout }

func (u *Ufunc) boolOut() bool {
	return u.cmp2 != nil || u.test1 != nil
}

// Lookup returns the named elementwise operation.
func Lookup(name string) (*Ufunc, bool) {
	u, ok := ufuncs[name]
	return u, ok
}

// MustLookup is Lookup that panics on unknown names.
func MustLookup(name string) *Ufunc {
	u, ok := ufuncs[name]
	if !ok {
		panic("unknown ufunc " + name)
	}
	return u
}

// Names lists every operation of the engine, sorted.
func Names() []string {
	names := make([]string, 0, len(ufuncs))
	for name := range ufuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unary(name string, f func(float64) float64) *Ufunc {
	return &Ufunc{name: name, nin: 1, nout: 1, fn1: f}
}

func binary(name string, f func(a, b float64) float64) *Ufunc {
	return &Ufunc{name: name, nin: 2, nout: 1, fn2: f}
}

func compare(name string, f func(a, b float64) bool) *Ufunc {
	return &Ufunc{name: name, nin: 2, nout: 1, cmp2: f}
}

func test(name string, f func(float64) bool) *Ufunc {
	return &Ufunc{name: name, nin: 1, nout: 1, test1: f}
}

func unaryPair(name string, f func(float64) (float64, float64)) *Ufunc {
	return &Ufunc{name: name, nin: 1, nout: 2, pair1: f}
}

func binaryPair(name string, f func(a, b float64) (float64, float64)) *Ufunc {
	return &Ufunc{name: name, nin: 2, nout: 2, pair2: f}
}

// opaque registers an operation the engine names but has no float
// kernel for (bitwise, logical, datetime ops). The dispatcher rejects
// them up front.
func opaque(name string, nin int) *Ufunc {
	return &Ufunc{name: name, nin: nin, nout: 1}
}

const (
	degPerRad = 180 / math.Pi
	radPerDeg = math.Pi / 180
)

func floorDiv(a, b float64) float64 {
	return math.Floor(a / b)
}

// rem follows the convention of flooring division: the result takes the
// sign of the divisor.
func rem(a, b float64) float64 {
	return a - math.Floor(a/b)*b
}

func divmod(a, b float64) (float64, float64) {
	q := math.Floor(a / b)
	return q, a - q*b
}

// modf splits into fractional and integral parts, fractional first.
func modf(a float64) (float64, float64) {
	ip, fp := math.Modf(a)
	return fp, ip
}

func frexp(a float64) (float64, float64) {
	fr, exp := math.Frexp(a)
	return fr, float64(exp)
}

func heaviside(a, h float64) float64 {
	switch {
	case math.IsNaN(a):
		return math.NaN()
	case a < 0:
		return 0
	case a > 0:
		return 1
	}
	return h
}

func logaddexp(a, b float64) float64 {
	if a == b {
		return a + math.Ln2
	}
	hi, lo := a, b
	if hi < lo {
		hi, lo = lo, hi
	}
	return hi + math.Log1p(math.Exp(lo-hi))
}

func logaddexp2(a, b float64) float64 {
	if a == b {
		return a + 1
	}
	hi, lo := a, b
	if hi < lo {
		hi, lo = lo, hi
	}
	return hi + math.Log2(1+math.Exp2(lo-hi))
}

func fmax(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}

func fmin(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Min(a, b)
}

func sign(a float64) float64 {
	switch {
	case math.IsNaN(a):
		return math.NaN()
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}

func spacing(a float64) float64 {
	abs := math.Abs(a)
	return math.Copysign(math.Nextafter(abs, math.Inf(1))-abs, a)
}

func identity(a float64) float64 { return a }

var ufuncs = map[string]*Ufunc{}

func register(us ...*Ufunc) {
	for _, u := range us {
		ufuncs[u.name] = u
	}
}

func init() {
	// arithmetic
	register(
		binary("add", func(a, b float64) float64 { return a + b }),
		binary("subtract", func(a, b float64) float64 { return a - b }),
		binary("multiply", func(a, b float64) float64 { return a * b }),
		binary("divide", func(a, b float64) float64 { return a / b }),
		binary("true_divide", func(a, b float64) float64 { return a / b }),
		binary("floor_divide", floorDiv),
		binary("remainder", rem),
		binary("mod", rem),
		binary("fmod", math.Mod),
		binaryPair("divmod", divmod),
		binary("power", math.Pow),
		binary("float_power", math.Pow),
		binary("heaviside", heaviside),
		binary("logaddexp", logaddexp),
		binary("logaddexp2", logaddexp2),
		unary("negative", func(a float64) float64 { return -a }),
		unary("positive", identity),
		unary("absolute", math.Abs),
		unary("fabs", math.Abs),
		unary("rint", math.RoundToEven),
		unary("sign", sign),
		unary("conj", identity),
		unary("conjugate", identity),
		unary("floor", math.Floor),
		unary("ceil", math.Ceil),
		unary("trunc", math.Trunc),
		unary("spacing", spacing),
		unary("reciprocal", func(a float64) float64 { return 1 / a }),
		unary("sqrt", math.Sqrt),
		unary("cbrt", math.Cbrt),
		unary("square", func(a float64) float64 { return a * a }),
	)
	// exponential and logarithmic
	register(
		unary("exp", math.Exp),
		unary("exp2", math.Exp2),
		unary("expm1", math.Expm1),
		unary("log", math.Log),
		unary("log2", math.Log2),
		unary("log10", math.Log10),
		unary("log1p", math.Log1p),
		unaryPair("modf", modf),
		unaryPair("frexp", frexp),
		binary("ldexp", func(a, e float64) float64 { return math.Ldexp(a, int(e)) }),
	)
	ufuncs["frexp"].intOut2 = true
	// trigonometric and hyperbolic
	register(
		unary("sin", math.Sin),
		unary("cos", math.Cos),
		unary("tan", math.Tan),
		unary("arcsin", math.Asin),
		unary("arccos", math.Acos),
		unary("arctan", math.Atan),
		unary("sinh", math.Sinh),
		unary("cosh", math.Cosh),
		unary("tanh", math.Tanh),
		unary("arcsinh", math.Asinh),
		unary("arccosh", math.Acosh),
		unary("arctanh", math.Atanh),
		binary("arctan2", math.Atan2),
		binary("hypot", math.Hypot),
		unary("deg2rad", func(a float64) float64 { return a * radPerDeg }),
		unary("radians", func(a float64) float64 { return a * radPerDeg }),
		unary("rad2deg", func(a float64) float64 { return a * degPerRad }),
		unary("degrees", func(a float64) float64 { return a * degPerRad }),
	)
	// extrema and floating-point manipulation
	register(
		binary("maximum", math.Max),
		binary("minimum", math.Min),
		binary("fmax", fmax),
		binary("fmin", fmin),
		binary("copysign", math.Copysign),
		binary("nextafter", math.Nextafter),
	)
	// comparisons and floating-point tests
	register(
		compare("greater", func(a, b float64) bool { return a > b }),
		compare("greater_equal", func(a, b float64) bool { return a >= b }),
		compare("less", func(a, b float64) bool { return a < b }),
		compare("less_equal", func(a, b float64) bool { return a <= b }),
		compare("equal", func(a, b float64) bool { return a == b }),
		compare("not_equal", func(a, b float64) bool { return a != b }),
		test("isfinite", func(a float64) bool { return !math.IsInf(a, 0) && !math.IsNaN(a) }),
		test("isinf", func(a float64) bool { return math.IsInf(a, 0) }),
		test("isnan", math.IsNaN),
		test("signbit", math.Signbit),
	)
	// named by the engine but carrying no float kernel; the dispatcher
	// rejects these for quantities before any kernel lookup
	register(
		opaque("bitwise_and", 2),
		opaque("bitwise_or", 2),
		opaque("bitwise_xor", 2),
		opaque("invert", 1),
		opaque("left_shift", 2),
		opaque("right_shift", 2),
		opaque("logical_and", 2),
		opaque("logical_or", 2),
		opaque("logical_xor", 2),
		opaque("logical_not", 1),
		opaque("isnat", 1),
	)
}
