package unitmath

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DType is the element kind of a quantity payload.
type DType int

const (
	Float64 DType = iota
	Float32
	Int32
	Int64
)

func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	}
	return "unknown"
}

func (d DType) integer() bool {
	return d == Int32 || d == Int64
}

// round coerces a computed value back into the element kind.
func (d DType) round(v float64) float64 {
	switch d {
	case Float32:
		return float64(float32(v))
	case Int32:
		return float64(int32(v))
	case Int64:
		return float64(int64(v))
	}
	return v
}

// Quantity is a numeric payload, scalar or one dimensional, tagged with
// a Unit. The quantity exclusively owns its payload buffer; in-place
// operations mutate the buffer and the unit tag together, or fail
// before mutating either.
type Quantity struct {
	values []float64
	scalar bool
	dtype  DType
	unit   Unit
}

// New builds a scalar quantity.
func New(value float64, u Unit) *Quantity {
	return &Quantity{values: []float64{value}, scalar: true, unit: u}
}

// NewSlice builds an array quantity taking ownership of values.
func NewSlice(values []float64, u Unit) *Quantity {
	return &Quantity{values: values, unit: u}
}

// NewWithDType builds a scalar quantity of the given element kind.
func NewWithDType(value float64, u Unit, dtype DType) *Quantity {
	return &Quantity{values: []float64{dtype.round(value)}, scalar: true, dtype: dtype, unit: u}
}

// NewSliceWithDType builds an array quantity of the given element kind,
// taking ownership of values.
func NewSliceWithDType(values []float64, u Unit, dtype DType) *Quantity {
	for i, v := range values {
		values[i] = dtype.round(v)
	}
	return &Quantity{values: values, dtype: dtype, unit: u}
}

// Arange is a test-friendly constructor for 0,1,...,n-1 tagged with u.
func Arange(n int, u Unit) *Quantity {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = float64(i)
	}
	return NewSlice(vs, u)
}

func (q *Quantity) Unit() Unit     { return q.unit }
func (q *Quantity) DType() DType   { return q.dtype }
func (q *Quantity) IsScalar() bool { return q.scalar }
func (q *Quantity) Len() int       { return len(q.values) }

// Value returns the scalar payload value.
func (q *Quantity) Value() float64 {
	return q.values[0]
}

// Values returns the owned payload buffer.
func (q *Quantity) Values() []float64 {
	return q.values
}

func (q *Quantity) Copy() *Quantity {
	vs := append([]float64(nil), q.values...)
	return &Quantity{values: vs, scalar: q.scalar, dtype: q.dtype, unit: q.unit}
}

// To converts the quantity to the target unit, honoring the enabled
// equivalencies, returning a new quantity.
func (q *Quantity) To(target Unit) (*Quantity, error) {
	vs, err := q.ToValue(target)
	if err != nil {
		return nil, err
	}
	for i, v := range vs {
		vs[i] = q.dtype.round(v)
	}
	return &Quantity{values: vs, scalar: q.scalar, dtype: q.dtype, unit: target}, nil
}

// ToValue converts the payload values to the target unit, stripping
// the unit tag.
func (q *Quantity) ToValue(target Unit) ([]float64, error) {
	factor, err := q.unit.FactorTo(target)
	if err != nil {
		return nil, err
	}
	vs := append([]float64(nil), q.values...)
	if factor != 1 {
		floats.Scale(factor, vs)
	}
	return vs, nil
}

// ConvertTo rescales the payload and retags the unit in place. On
// failure the quantity is left untouched; on success the two fields
// update together.
func (q *Quantity) ConvertTo(target Unit) error {
	factor, err := q.unit.FactorTo(target)
	if err != nil {
		return err
	}
	if factor != 1 {
		floats.Scale(factor, q.values)
		for i, v := range q.values {
			q.values[i] = q.dtype.round(v)
		}
	}
	q.unit = target
	return nil
}

func (q *Quantity) String() string {
	us := q.unit.String()
	if us != "" {
		us = " " + us
	}
	if q.scalar {
		return formatValue(q.values[0]) + us
	}
	parts := make([]string, len(q.values))
	for i, v := range q.values {
		parts[i] = formatValue(v)
	}
	return "[" + strings.Join(parts, " ") + "]" + us
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// In-place arithmetic forms. These route through the same dispatcher as
// the non-mutating ufunc calls, with q as the output target, so unit
// validation and casting rules apply identically.

func (q *Quantity) AddInPlace(other interface{}) error {
	return q.applyInPlace("add", other)
}

func (q *Quantity) SubInPlace(other interface{}) error {
	return q.applyInPlace("subtract", other)
}

func (q *Quantity) MulInPlace(other interface{}) error {
	return q.applyInPlace("multiply", other)
}

func (q *Quantity) DivInPlace(other interface{}) error {
	return q.applyInPlace("divide", other)
}

func (q *Quantity) applyInPlace(op string, other interface{}) error {
	uf, ok := Lookup(op)
	if !ok {
		return typeErrorf(op, "unknown function '%s'", op)
	}
	_, err := uf.CallInto([]*Quantity{q}, q, other)
	return err
}

func errNotQuantity(op string, arg interface{}) error {
	return typeErrorf(op, "'%s' function got unsupported operand of type %T", op, arg)
}
