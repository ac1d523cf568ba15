package unitmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneArgUfuncInPlace(t *testing.T) {
	s := New(1, Radian)
	outs, err := MustLookup("sin").CallInto([]*Quantity{s}, s)
	require.NoError(t, err)
	// the target is the output, mutated in its own buffer
	assert.Same(t, s, outs[0].(*Quantity))
	assert.True(t, s.Unit().Equal(Dimensionless))
	assert.InDelta(t, math.Sin(1), s.Value(), 1e-12)

	// a scaled input converts before the kernel, aliasing safely
	s2, err := New(1, Radian).To(Degree)
	require.NoError(t, err)
	_, err = MustLookup("sin").CallInto([]*Quantity{s2}, s2)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(1), s2.Value(), 1e-12)

	v := New(30, Degree)
	_, err = MustLookup("deg2rad").CallInto([]*Quantity{v}, v)
	require.NoError(t, err)
	assert.True(t, v.Unit().Equal(Radian))
	assert.InDelta(t, math.Pi/6, v.Value(), 1e-12)
}

func TestPlainInputQuantityOutput(t *testing.T) {
	s := NewSlice(make([]float64, 4), Meter)
	_, err := MustLookup("absolute").CallInto([]*Quantity{s}, []float64{-1, 2, -3, 4})
	require.NoError(t, err)
	assert.True(t, s.Unit().Equal(Dimensionless))
	assert.Equal(t, []float64{1, 2, 3, 4}, s.Values())

	_, err = MustLookup("arcsin").CallInto([]*Quantity{s}, []float64{0, 0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.True(t, s.Unit().Equal(Radian))
	assert.InDelta(t, math.Asin(0.1), s.Values()[1], 1e-12)
}

func TestTwoOutputUfuncInPlace(t *testing.T) {
	vals := make([]float64, 6)
	for i := range vals {
		vals[i] = 100 * float64(i)
	}
	v := NewSlice(vals, Centimeter.Div(Meter))
	tmp := v.Copy()

	outs, err := MustLookup("modf").CallInto([]*Quantity{tmp, v}, v)
	require.NoError(t, err)
	assert.Same(t, v, outs[1].(*Quantity))
	assert.True(t, v.Unit().Equal(Dimensionless))
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, v.Values())
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, tmp.Values())
}

func TestInPlaceOperators(t *testing.T) {
	s := New(1, Cycle)
	require.NoError(t, s.DivInPlace(2.0))
	assert.True(t, s.Unit().Equal(Cycle))
	assert.Equal(t, 0.5, s.Value())

	require.NoError(t, s.DivInPlace(New(2, Second)))
	assert.True(t, s.Unit().Equal(Cycle.Div(Second)))
	assert.Equal(t, 0.25, s.Value())

	require.NoError(t, s.MulInPlace(New(4, Second)))
	assert.True(t, s.Unit().Equal(Cycle))
	assert.Equal(t, 1.0, s.Value())

	m := New(4.7, Meter)
	require.NoError(t, m.AddInPlace(New(9.4, Kilometer)))
	assert.True(t, m.Unit().Equal(Meter))
	assert.InDelta(t, 9404.7, m.Value(), 1e-9)
	require.NoError(t, m.SubInPlace(New(9.4, Kilometer)))
	assert.InDelta(t, 4.7, m.Value(), 1e-9)
}

func TestTwoArgUfuncInPlace(t *testing.T) {
	s := New(0.5, Cycle)
	_, err := MustLookup("arctan2").CallInto([]*Quantity{s}, s, s)
	require.NoError(t, err)
	assert.True(t, s.Unit().Equal(Radian))
	assert.InDelta(t, math.Pi/4, s.Value(), 1e-12)

	// the failed operation leaves the target untouched
	err = s.AddInPlace(New(1, Meter))
	require.Error(t, err)
	var uerr *UnitsError
	require.ErrorAs(t, err, &uerr)
	assert.True(t, s.Unit().Equal(Radian))
	assert.InDelta(t, math.Pi/4, s.Value(), 1e-12)

	// the target may be the second input; the first decides the unit
	_, err = MustLookup("add").CallInto([]*Quantity{s}, New(45, Degree), s)
	require.NoError(t, err)
	assert.True(t, s.Unit().Equal(Degree))
	assert.InDelta(t, 90, s.Value(), 1e-9)
}

func TestDivmodInPlace(t *testing.T) {
	v := New(1, Meter)
	quo := New(0, Dimensionless)
	outs, err := MustLookup("divmod").CallInto([]*Quantity{quo, v}, v, New(70, Centimeter))
	require.NoError(t, err)
	assert.Same(t, v, outs[1].(*Quantity))
	assert.True(t, quo.Unit().Equal(Dimensionless))
	assert.Equal(t, 1.0, quo.Value())
	assert.True(t, v.Unit().Equal(Meter))
	assert.InDelta(t, 0.3, v.Value(), 1e-12)
}

func TestInPlaceDTypeCasting(t *testing.T) {
	a := NewSliceWithDType([]float64{1, 2, 3, 4}, Meter, Float32)
	require.NoError(t, a.MulInPlace(float32(10)))
	assert.True(t, a.Unit().Equal(Meter))
	assert.Equal(t, []float64{10, 20, 30, 40}, a.Values())
	assert.Equal(t, Float32, a.DType())

	// converted values are fine for float targets
	a2 := NewSliceWithDType([]float64{1, 2}, Meter, Float32)
	require.NoError(t, a2.AddInPlace(New(20, Kilometer)))
	assert.Equal(t, []float64{20001, 20002}, a2.Values())

	// and for integer targets when no conversion happens
	a3 := NewSliceWithDType([]float64{1, 2}, Meter, Int32)
	require.NoError(t, a3.AddInPlace(NewWithDType(10, Meter, Int64)))
	assert.Equal(t, []float64{11, 12}, a3.Values())
	assert.Equal(t, Int32, a3.DType())

	// but a conversion cannot be stored back into an integer payload
	a4 := NewSliceWithDType([]float64{1, 2}, Meter, Int32)
	err := a4.AddInPlace(NewWithDType(10, Millimeter, Int64))
	require.Error(t, err)
	var terr *TypeError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, err.Error(), "integer quantity")
	assert.Equal(t, []float64{1, 2}, a4.Values())
	assert.True(t, a4.Unit().Equal(Meter))
}

func TestAllocatedOutputKeepsDType(t *testing.T) {
	f32 := NewSliceWithDType([]float64{1, 2}, Meter, Float32)
	q, err := MustLookup("negative").CallQ(f32)
	require.NoError(t, err)
	assert.Equal(t, Float32, q.DType())
	assert.Equal(t, []float64{-1, -2}, q.Values())

	// values round through the element kind on the way out
	q, err = MustLookup("multiply").CallQ(NewWithDType(1, Meter, Float32), 0.1)
	require.NoError(t, err)
	assert.Equal(t, Float32, q.DType())
	assert.Equal(t, float64(float32(0.1)), q.Value())

	q, err = MustLookup("divide").CallQ(NewSliceWithDType([]float64{5}, Meter, Int32), 2.0)
	require.NoError(t, err)
	assert.Equal(t, Int32, q.DType())
	assert.Equal(t, []float64{2}, q.Values())

	// plain inputs still allocate float64 outputs
	q, err = MustLookup("negative").CallQ(1.5)
	require.NoError(t, err)
	assert.Equal(t, Float64, q.DType())
}

func TestInPlaceIntegerRounding(t *testing.T) {
	a := NewSliceWithDType([]float64{5, 7}, Meter, Int32)
	require.NoError(t, a.DivInPlace(2.0))
	assert.Equal(t, []float64{2, 3}, a.Values())
}

func TestInvalidTargets(t *testing.T) {
	s := New(1, Meter)
	_, err := MustLookup("greater").CallInto([]*Quantity{s}, s, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot store non-quantity output")

	// a unit-stripped output cannot land in a quantity either
	_, err = MustLookup("copysign").CallInto([]*Quantity{s}, 1.0, New(-1, Meter))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot store non-quantity output")

	short := NewSlice([]float64{1}, Meter)
	_, err = MustLookup("negative").CallInto([]*Quantity{short}, NewSlice([]float64{1, 2}, Meter))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output length")
}
