package unitmath

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Base dimension indexes of the Dims exponent vector.
const (
	DimLength = iota
	DimMass
	DimTime
	DimAngle
	DimCurrent
	DimTemperature
	numDims
)

var dimSymbols = [numDims]string{"L", "M", "T", "A", "I", "K"}

// Dims is a vector of exponents over the base physical dimensions.
// Exponents are kept as floats so that roots of units (m^0.5 from a
// square root) stay representable.
type Dims [numDims]float64

func (d Dims) add(o Dims) Dims {
	var ans Dims
	for i := range d {
		ans[i] = d[i] + o[i]
	}
	return ans
}

func (d Dims) sub(o Dims) Dims {
	var ans Dims
	for i := range d {
		ans[i] = d[i] - o[i]
	}
	return ans
}

func (d Dims) scale(p float64) Dims {
	var ans Dims
	for i := range d {
		// skip the zeros so no negative zero sneaks into
		// the exact == comparison
		if d[i] != 0 && p != 0 {
			ans[i] = d[i] * p
		}
	}
	return ans
}

func (d Dims) IsZero() bool {
	return d == Dims{}
}

// foldAngle projects the angle exponent away, for comparisons made
// under the angle-dimensionless equivalency.
func (d Dims) foldAngle() Dims {
	d[DimAngle] = 0
	return d
}

func (d Dims) String() string {
	var sb strings.Builder
	for i, e := range d {
		if e == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s^%g", dimSymbols[i], e)
	}
	if sb.Len() == 0 {
		return "1"
	}
	return sb.String()
}

// Unit is an immutable dimension vector plus a scale factor relative to
// the base unit of that dimension vector, with an optional symbolic
// name. Two units are equal iff dims and scale both match; they are
// compatible iff the dims match regardless of scale.
type Unit struct {
	name  string
	dims  Dims
	scale decimal.Decimal
}

func NewUnit(name string, dims Dims, scale decimal.Decimal) Unit {
	return Unit{name: name, dims: dims, scale: scale}
}

// ScaledUnit derives an anonymous unit from u with an extra scale
// factor, e.g. ScaledUnit(0.0254, Meter) for an inch.
func ScaledUnit(factor float64, u Unit) Unit {
	return Unit{dims: u.dims, scale: u.scale.Mul(decimal.NewFromFloat(factor))}
}

func (u Unit) Name() string {
	return u.name
}

func (u Unit) Dims() Dims {
	return u.dims
}

func (u Unit) Scale() float64 {
	f, _ := u.scale.Float64()
	return f
}

func (u Unit) String() string {
	if u.name != "" {
		return u.name
	}
	if u.dims.IsZero() && u.isUnscaled() {
		return ""
	}
	return fmt.Sprintf("%s %s", u.scale.String(), u.dims.String())
}

func (u Unit) Mul(o Unit) Unit {
	name := ""
	if u.name != "" && o.name != "" {
		name = u.name + " " + o.name
	}
	return Unit{name: name, dims: u.dims.add(o.dims), scale: u.scale.Mul(o.scale)}
}

func (u Unit) Div(o Unit) Unit {
	name := ""
	if u.name != "" && o.name != "" {
		name = u.name + "/" + o.name
	}
	return Unit{name: name, dims: u.dims.sub(o.dims), scale: u.scale.Div(o.scale)}
}

// Pow raises the unit to the power p. Integer powers keep the scale
// exact through decimal arithmetic; fractional powers go through floats.
func (u Unit) Pow(p float64) Unit {
	dims := u.dims.scale(p)
	var scale decimal.Decimal
	if p == math.Trunc(p) {
		scale = u.scale.Pow(decimal.NewFromInt(int64(p)))
	} else {
		f, _ := u.scale.Float64()
		scale = decimal.NewFromFloat(math.Pow(f, p))
	}
	name := ""
	switch {
	case p == 1:
		name = u.name
	case u.name != "" && p == math.Trunc(p):
		name = fmt.Sprintf("%s%d", u.name, int64(p))
	}
	return Unit{name: name, dims: dims, scale: scale}
}

func (u Unit) Equal(o Unit) bool {
	return u.dims == o.dims && u.scale.Equal(o.scale)
}

// Compatible reports whether a conversion factor to o exists under the
// currently enabled equivalencies.
func (u Unit) Compatible(o Unit) bool {
	_, err := u.FactorTo(o)
	return err == nil
}

func (u Unit) isUnscaled() bool {
	return u.scale.Equal(decimal.NewFromInt(1))
}

// IsDimensionless reports whether the unit has a zero dimension vector,
// or one that folds to zero under the enabled equivalencies.
func (u Unit) IsDimensionless() bool {
	if u.dims.IsZero() {
		return true
	}
	return activeEquivalencies().anglesDimensionless && u.dims.foldAngle().IsZero()
}

// IsUnscaledDimensionless reports a literal scale-1 dimensionless unit,
// stricter than merely being convertible to dimensionless.
func (u Unit) IsUnscaledDimensionless() bool {
	return u.dims.IsZero() && u.isUnscaled()
}

func (u Unit) isAngle() bool {
	d := u.dims
	d[DimAngle] = 0
	return u.dims[DimAngle] != 0 && d.IsZero()
}

// FactorTo computes the multiplicative conversion factor from u to the
// target unit, honoring the enabled equivalencies. The factor is derived
// from the exact decimal scales and collapsed to a float only here, at
// the payload boundary.
func (u Unit) FactorTo(target Unit) (float64, error) {
	du, dt := u.dims, target.dims
	if du != dt && activeEquivalencies().anglesDimensionless {
		du, dt = du.foldAngle(), dt.foldAngle()
	}
	if du != dt {
		return 0, &UnitsError{
			Message: fmt.Sprintf("'%s' and '%s' are not convertible: compatible dimensions required", u, target),
		}
	}
	f, _ := u.scale.Div(target.scale).Float64()
	return f, nil
}

// UnitRegistry resolves unit names to units.
type UnitRegistry interface {
	// Peek checks if the start of s is a known unit name,
	// returning the matched name length.
	Peek(s string) (int, bool)
	GetByName(name string) (Unit, bool)
	MustGet(name string) Unit
	// ListByDims lists the named units sharing a dimension vector.
	ListByDims(dims Dims) []Unit
}

//go:embed unit.csv
var unitAsset embed.FS

type staticRegistry struct {
	m map[string]Unit

	dimUnits map[Dims][]Unit

	// names ordered by length, longest first, for the peek operation
	ulens []int
	names []string
}

func newStaticRegistry() UnitRegistry {
	m := make(map[string]Unit)
	dimUnits := make(map[Dims][]Unit)
	var names []string

	f, _ := unitAsset.Open("unit.csv")
	rd := csv.NewReader(f)
	rowid := 0
	for ; ; rowid++ {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if rowid == 0 {
			continue // skip header row
		}
		var dims Dims
		for i := 0; i < numDims; i++ {
			dims[i], _ = strconv.ParseFloat(record[2+i], 64)
		}
		scale, _ := decimal.NewFromString(record[2+numDims])
		u := Unit{name: record[0], dims: dims, scale: scale}
		m[u.name] = u
		dimUnits[u.dims] = append(dimUnits[u.dims], u)
		names = append(names, u.name)
	}

	sort.Slice(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	ulens := make([]int, len(names))
	for i, name := range names {
		ulens[i] = len(name)
	}
	return &staticRegistry{names: names, ulens: ulens, m: m, dimUnits: dimUnits}
}

func (sr *staticRegistry) Peek(s string) (int, bool) {
	for i, name := range sr.names {
		n := sr.ulens[i]
		if len(s) < n {
			continue
		}
		if s[:n] == name {
			return n, true
		}
	}
	return 0, false
}

func (sr *staticRegistry) GetByName(name string) (Unit, bool) {
	u, ok := sr.m[name]
	return u, ok
}

func (sr *staticRegistry) MustGet(name string) Unit {
	u, ok := sr.m[name]
	if !ok {
		panic(fmt.Sprintf("unknown unit %q", name))
	}
	return u
}

func (sr *staticRegistry) ListByDims(dims Dims) []Unit {
	ans := append([]Unit(nil), sr.dimUnits[dims]...)
	sort.SliceStable(ans, func(i, j int) bool {
		return ans[i].name < ans[j].name
	})
	return ans
}

// StdUnits is the builtin static unit registry. It should be used as
// read only; one can replace it with another implementation globally
// before any quantities are built.
var StdUnits = newStaticRegistry()

// Dimensionless is the unscaled dimensionless unit.
var Dimensionless = Unit{scale: decimal.NewFromInt(1)}

var (
	Meter       = StdUnits.MustGet("m")
	Centimeter  = StdUnits.MustGet("cm")
	Millimeter  = StdUnits.MustGet("mm")
	Kilometer   = StdUnits.MustGet("km")
	Inch        = StdUnits.MustGet("in")
	Parsec      = StdUnits.MustGet("pc")
	Kiloparsec  = StdUnits.MustGet("kpc")
	Gram        = StdUnits.MustGet("g")
	Kilogram    = StdUnits.MustGet("kg")
	Second      = StdUnits.MustGet("s")
	Microsecond = StdUnits.MustGet("us")
	Millisecond = StdUnits.MustGet("ms")
	Megasecond  = StdUnits.MustGet("Ms")
	Radian      = StdUnits.MustGet("rad")
	Degree      = StdUnits.MustGet("deg")
	Cycle       = StdUnits.MustGet("cycle")
	Ampere      = StdUnits.MustGet("A")
	Kelvin      = StdUnits.MustGet("K")
	Newton      = StdUnits.MustGet("N")
	Joule       = StdUnits.MustGet("J")
	Percent     = StdUnits.MustGet("percent")
)
