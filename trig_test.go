package unitmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinScalar(t *testing.T) {
	q, err := MustLookup("sin").CallQ(New(30, Degree))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Dimensionless))
	assert.InDelta(t, 0.5, q.Value(), 1e-12)
}

func TestSinArray(t *testing.T) {
	q, err := MustLookup("sin").CallQ(NewSlice([]float64{0, math.Pi / 2, math.Pi}, Radian))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Dimensionless))
	assert.InDeltaSlice(t, []float64{0, 1, 0}, q.Values(), 1e-12)
}

func TestSinInvalidUnits(t *testing.T) {
	_, err := MustLookup("sin").Call(New(3, Meter))
	require.Error(t, err)
	var terr *TypeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Can only apply 'sin' function to quantities with angle units", err.Error())
}

func TestSinPlainNumberIsRadians(t *testing.T) {
	q, err := MustLookup("sin").CallQ(math.Pi / 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, q.Value(), 1e-12)
}

func TestArcsinScalar(t *testing.T) {
	q30 := New(30, Degree)
	s, err := MustLookup("sin").CallQ(q30)
	require.NoError(t, err)
	back, err := MustLookup("arcsin").CallQ(s)
	require.NoError(t, err)
	assert.True(t, back.Unit().Equal(Radian))
	deg, err := back.To(Degree)
	require.NoError(t, err)
	assert.InDelta(t, 30, deg.Value(), 1e-9)
}

func TestArcsinInvalidUnits(t *testing.T) {
	_, err := MustLookup("arcsin").Call(New(3, Meter))
	require.Error(t, err)
	assert.Equal(t, "Can only apply 'arcsin' function to dimensionless quantities", err.Error())
}

func TestArcsinNoWarningOnQuantity(t *testing.T) {
	a := New(15, Kiloparsec)
	b := New(27, Parsec)
	ratio, err := MustLookup("divide").CallQ(b, a)
	require.NoError(t, err)
	q, err := MustLookup("arcsin").CallQ(ratio)
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Radian))
	assert.InDelta(t, math.Asin(0.0018), q.Value(), 1e-12)
}

func TestCosTan(t *testing.T) {
	q, err := MustLookup("cos").CallQ(New(60, Degree))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, q.Value(), 1e-12)

	q, err = MustLookup("tan").CallQ(New(45, Degree))
	require.NoError(t, err)
	assert.InDelta(t, 1, q.Value(), 1e-12)

	q, err = MustLookup("arctan").CallQ(New(1, Dimensionless))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Radian))
	assert.InDelta(t, math.Pi/4, q.Value(), 1e-12)
}

func TestHyperbolic(t *testing.T) {
	q, err := MustLookup("sinh").CallQ(New(1, Radian))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Dimensionless))
	assert.InDelta(t, math.Sinh(1), q.Value(), 1e-12)

	q, err = MustLookup("arctanh").CallQ(New(0.5, Dimensionless))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Radian))
	assert.InDelta(t, math.Atanh(0.5), q.Value(), 1e-12)

	_, err = MustLookup("cosh").Call(New(1, Second))
	require.Error(t, err)
	assert.Equal(t, "Can only apply 'cosh' function to quantities with angle units", err.Error())

	_, err = MustLookup("arccosh").Call(New(2, Second))
	require.Error(t, err)
	assert.Equal(t, "Can only apply 'arccosh' function to dimensionless quantities", err.Error())
}

func TestArctan2Valid(t *testing.T) {
	q, err := MustLookup("arctan2").CallQ(New(1, Meter), New(2, Kilometer))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Radian))
	assert.InDelta(t, math.Atan2(1, 2000), q.Value(), 1e-12)

	// both sides convertible to dimensionless
	q, err = MustLookup("arctan2").CallQ(New(1, Meter.Div(Kilometer)), 1.0)
	require.NoError(t, err)
	assert.InDelta(t, math.Atan2(0.001, 1), q.Value(), 1e-12)
}

func TestArctan2Invalid(t *testing.T) {
	_, err := MustLookup("arctan2").Call(New(1, Meter), New(2, Second))
	require.Error(t, err)
	assert.Equal(t, "Can only apply 'arctan2' function to quantities with compatible dimensions", err.Error())

	_, err = MustLookup("arctan2").Call(1.5, New(1, Meter))
	require.Error(t, err)
	var uerr *UnitsError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, err.Error(), "dimensionless quantities when other argument is not a quantity")
}

func TestHypot(t *testing.T) {
	q, err := MustLookup("hypot").CallQ(New(3, Kilometer), New(4000, Meter))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Kilometer))
	assert.InDelta(t, 5, q.Value(), 1e-12)

	_, err = MustLookup("hypot").Call(New(3, Kilometer), 4.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compatible dimensions")
}

func TestDegRadFamily(t *testing.T) {
	q, err := MustLookup("deg2rad").CallQ(New(180, Degree))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Radian))
	assert.InDelta(t, math.Pi, q.Value(), 1e-12)

	q, err = MustLookup("radians").CallQ(New(90, Degree))
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, q.Value(), 1e-12)

	q, err = MustLookup("rad2deg").CallQ(New(math.Pi, Radian))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Degree))
	assert.InDelta(t, 180, q.Value(), 1e-12)

	q, err = MustLookup("degrees").CallQ(New(math.Pi/3, Radian))
	require.NoError(t, err)
	assert.InDelta(t, 60, q.Value(), 1e-12)
}

// an angle input is reinterpreted in the conversion's source unit, so
// the declared angle unit survives the round trip unchanged in value
func TestDegRadAngleReinterpreted(t *testing.T) {
	q, err := MustLookup("deg2rad").CallQ(New(3, Radian))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Radian))
	assert.InDelta(t, 3, q.Value(), 1e-12)

	q, err = MustLookup("rad2deg").CallQ(New(3, Degree))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Degree))
	assert.InDelta(t, 3, q.Value(), 1e-12)
}

func TestDimensionlessRulesUnderEquivalency(t *testing.T) {
	// without the equivalency an angle is not dimensionless
	_, err := MustLookup("exp").Call(New(1, Radian))
	require.Error(t, err)

	restore := EnableEquivalencies(DimensionlessAngles)
	defer restore()

	q, err := MustLookup("exp").CallQ(New(1, Radian))
	require.NoError(t, err)
	assert.True(t, q.Unit().Equal(Dimensionless))
	assert.InDelta(t, math.E, q.Value(), 1e-12)

	// degrees convert through radians on the way to dimensionless
	q, err = MustLookup("log").CallQ(New(180, Degree))
	require.NoError(t, err)
	assert.InDelta(t, math.Log(math.Pi), q.Value(), 1e-12)
}

func TestDegRadInvalidUnits(t *testing.T) {
	for _, name := range []string{"deg2rad", "radians", "rad2deg", "degrees"} {
		_, err := MustLookup(name).Call(New(3, Meter))
		require.Error(t, err, name)
		assert.Equal(t, "Can only apply '"+name+"' function to quantities with angle units", err.Error())
	}
}
