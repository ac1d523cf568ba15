package unitmath

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// coerceOperand admits quantities, bare units and plain numbers or
// slices as dispatch inputs.
func coerceOperand(op string, arg interface{}) (*operand, error) {
	switch a := arg.(type) {
	case *Quantity:
		return &operand{q: a, values: a.values, scalar: a.scalar}, nil
	case Unit:
		q := New(1, a)
		return &operand{q: q, values: q.values, scalar: true, bareUnit: true}, nil
	case float64:
		return &operand{values: []float64{a}, scalar: true}, nil
	case float32:
		return &operand{values: []float64{float64(a)}, scalar: true}, nil
	case int:
		return &operand{values: []float64{float64(a)}, scalar: true, isInt: true}, nil
	case int64:
		return &operand{values: []float64{float64(a)}, scalar: true, isInt: true}, nil
	case []float64:
		return &operand{values: a}, nil
	case []int:
		vs := make([]float64, len(a))
		for i, v := range a {
			vs[i] = float64(v)
		}
		return &operand{values: vs, isInt: true}, nil
	default:
		return nil, errNotQuantity(op, arg)
	}
}

// Call applies the operation to one or two operands, each a *Quantity,
// a Unit, or a plain number/slice. It returns one value per output:
// a *Quantity for unit-bearing results, bool/[]bool for comparisons and
// tests, float64/[]float64 for unit-stripped results, and int/[]int for
// frexp's exponent output.
func (u *Ufunc) Call(args ...interface{}) ([]interface{}, error) {
	return u.call(nil, args)
}

// Call1 is Call returning only the first output.
func (u *Ufunc) Call1(args ...interface{}) (interface{}, error) {
	outs, err := u.call(nil, args)
	if err != nil {
		return nil, err
	}
	return outs[0], nil
}

// CallQ is Call1 for operations known to produce a quantity.
func (u *Ufunc) CallQ(args ...interface{}) (*Quantity, error) {
	out, err := u.Call1(args...)
	if err != nil {
		return nil, err
	}
	q, ok := out.(*Quantity)
	if !ok {
		return nil, typeErrorf(u.name, "'%s' function does not produce a quantity", u.name)
	}
	return q, nil
}

// CallInto is Call with in-place output targets. A nil entry lets the
// corresponding output allocate; a non-nil one receives the result in
// its own buffer, its unit tag updating together with the payload.
// Validation happens before any target mutates.
func (u *Ufunc) CallInto(out []*Quantity, args ...interface{}) ([]interface{}, error) {
	return u.call(out, args)
}

func (u *Ufunc) call(targets []*Quantity, args []interface{}) ([]interface{}, error) {
	op := u.name
	if unsupportedUfuncs[op] {
		return nil, errUnsupported(op)
	}
	if len(args) != u.nin {
		return nil, valueErrorf(op, "'%s' function takes %d inputs, got %d", op, u.nin, len(args))
	}
	ops := make([]*operand, len(args))
	for i, arg := range args {
		o, err := coerceOperand(op, arg)
		if err != nil {
			return nil, err
		}
		ops[i] = o
	}
	h := ufuncHelpers[op]
	convs, outSpecs, err := h(op, ops)
	if err != nil {
		return nil, err
	}

	// convert inputs; scaled inputs become private copies so targets
	// that alias an input stay untouched until the write phase
	ins := make([][]float64, len(ops))
	converted := false
	for i, o := range ops {
		vals := o.values
		if convs[i].check != nil {
			if err := convs[i].check(vals); err != nil {
				return nil, err
			}
		}
		if convs[i].scale != 1 {
			vals = append([]float64(nil), vals...)
			floats.Scale(convs[i].scale, vals)
			converted = true
		}
		ins[i] = vals
	}

	// broadcast scalars against a common array length
	n, scalar := 1, true
	for _, o := range ops {
		if o.scalar {
			continue
		}
		scalar = false
		if n == 1 {
			n = len(o.values)
		} else if len(o.values) != n {
			return nil, valueErrorf(op, "operands have mismatched lengths %d and %d", n, len(o.values))
		}
	}

	if len(targets) > u.nout {
		return nil, valueErrorf(op, "'%s' function has %d outputs, got %d targets", op, u.nout, len(targets))
	}
	for j, t := range targets {
		if t == nil {
			continue
		}
		if u.boolOut() || outSpecs[j].plain {
			return nil, typeErrorf(op, "Cannot store non-quantity output of '%s' in a quantity", op)
		}
		if t.Len() != n {
			return nil, valueErrorf(op, "output length %d does not match result length %d", t.Len(), n)
		}
		if t.dtype.integer() && converted {
			return nil, typeErrorf(op, "Cannot store converted values of '%s' in an integer quantity", op)
		}
	}

	// validation done; allocate or adopt output buffers and compute.
	// allocated outputs inherit the element kind of the first quantity
	// operand; targets keep their own
	outDType := Float64
	for _, o := range ops {
		if o.q != nil {
			outDType = o.q.dtype
			break
		}
	}
	dsts := make([][]float64, u.nout)
	dtypes := make([]DType, u.nout)
	for j := 0; j < u.nout; j++ {
		if j < len(targets) && targets[j] != nil {
			dsts[j] = targets[j].values
			dtypes[j] = targets[j].dtype
		} else {
			dsts[j] = make([]float64, n)
			dtypes[j] = outDType
		}
	}
	var bools []bool
	if u.boolOut() {
		bools = make([]bool, n)
	}

	a := ins[0]
	ai := func(i int) int {
		if ops[0].scalar {
			return 0
		}
		return i
	}
	var b []float64
	bi := func(i int) int { return 0 }
	if u.nin == 2 {
		b = ins[1]
		if !ops[1].scalar {
			bi = func(i int) int { return i }
		}
	}
	for i := 0; i < n; i++ {
		switch {
		case u.test1 != nil:
			bools[i] = u.test1(a[ai(i)])
		case u.cmp2 != nil:
			bools[i] = u.cmp2(a[ai(i)], b[bi(i)])
		case u.fn1 != nil:
			dsts[0][i] = dtypes[0].round(u.fn1(a[ai(i)]))
		case u.fn2 != nil:
			dsts[0][i] = dtypes[0].round(u.fn2(a[ai(i)], b[bi(i)]))
		case u.pair1 != nil:
			v0, v1 := u.pair1(a[ai(i)])
			dsts[0][i], dsts[1][i] = dtypes[0].round(v0), dtypes[1].round(v1)
		case u.pair2 != nil:
			v0, v1 := u.pair2(a[ai(i)], b[bi(i)])
			dsts[0][i], dsts[1][i] = dtypes[0].round(v0), dtypes[1].round(v1)
		default:
			return nil, errUnsupported(op)
		}
	}

	if u.boolOut() {
		if scalar {
			return []interface{}{bools[0]}, nil
		}
		return []interface{}{bools}, nil
	}
	outs := make([]interface{}, u.nout)
	for j := 0; j < u.nout; j++ {
		spec := outSpecs[j]
		switch {
		case spec.plain && u.intOut2 && j == 1:
			ints := make([]int, n)
			for i, v := range dsts[j] {
				ints[i] = int(v)
			}
			if scalar {
				outs[j] = ints[0]
			} else {
				outs[j] = ints
			}
		case spec.plain:
			if scalar {
				outs[j] = dsts[j][0]
			} else {
				outs[j] = dsts[j]
			}
		case j < len(targets) && targets[j] != nil:
			t := targets[j]
			t.unit = spec.unit
			t.scalar = scalar
			outs[j] = t
		default:
			outs[j] = &Quantity{values: dsts[j], scalar: scalar, dtype: dtypes[j], unit: spec.unit}
		}
	}
	return outs, nil
}

// At applies the operation in place at the given index set of q. The
// rule's output unit must match q's current unit: selective application
// never rescales, except that a unit made interchangeable by an enabled
// equivalency (radian vs dimensionless) is accepted.
func (u *Ufunc) At(q *Quantity, indices []int, other ...interface{}) error {
	op := u.name
	if unsupportedUfuncs[op] {
		return errUnsupported(op)
	}
	if u.boolOut() {
		return typeErrorf(op, "Cannot store boolean output of '%s' in a quantity", op)
	}
	if u.nout != 1 {
		return valueErrorf(op, "selective application needs a single output, '%s' has %d", op, u.nout)
	}
	if len(other) != u.nin-1 {
		return valueErrorf(op, "'%s' function takes %d inputs, got %d", op, u.nin, 1+len(other))
	}
	ops := make([]*operand, u.nin)
	ops[0] = &operand{q: q, values: q.values, scalar: q.scalar}
	if u.nin == 2 {
		o, err := coerceOperand(op, other[0])
		if err != nil {
			return err
		}
		ops[1] = o
	}
	h := ufuncHelpers[op]
	convs, outSpecs, err := h(op, ops)
	if err != nil {
		return err
	}
	spec := outSpecs[0]
	if spec.plain {
		return typeErrorf(op, "Cannot store non-quantity output of '%s' in a quantity", op)
	}
	if !spec.unit.Equal(q.unit) {
		f, ferr := spec.unit.FactorTo(q.unit)
		if ferr != nil || f != 1 {
			return unitsErrorf(op, "selective in-place '%s' cannot change the unit of its target", op)
		}
	}

	var b []float64
	if u.nin == 2 {
		b = ops[1].values
		if convs[1].check != nil {
			if err := convs[1].check(b); err != nil {
				return err
			}
		}
		if convs[1].scale != 1 {
			b = append([]float64(nil), b...)
			floats.Scale(convs[1].scale, b)
		}
		if !ops[1].scalar && len(b) != len(indices) {
			return valueErrorf(op, "second operand length %d does not match %d indices", len(b), len(indices))
		}
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(q.values) {
			return valueErrorf(op, "index %d out of range for length %d", idx, len(q.values))
		}
	}

	for k, idx := range indices {
		x := q.values[idx] * convs[0].scale
		var v float64
		switch {
		case u.fn1 != nil:
			v = u.fn1(x)
		case u.fn2 != nil:
			y := b[0]
			if !ops[1].scalar {
				y = b[k]
			}
			v = u.fn2(x, y)
		default:
			return errUnsupported(op)
		}
		q.values[idx] = q.dtype.round(v)
	}
	return nil
}

// reducible decides whether folding the operation over a single unit is
// legal: the helper is run against (unit, unit) and the result unit
// must come back unchanged, since a fold feeds its intermediate back in
// at the same unit on every step.
func (u *Ufunc) reducible(q *Quantity) error {
	op := u.name
	if unsupportedUfuncs[op] {
		return errUnsupported(op)
	}
	if u.nin != 2 || u.nout != 1 {
		return valueErrorf(op, "'%s' function cannot be folded: need two inputs and one output", op)
	}
	if u.boolOut() {
		return typeErrorf(op, "Cannot fold '%s': its intermediate result is not a quantity", op)
	}
	if len(q.values) == 0 {
		return valueErrorf(op, "cannot fold '%s' over a zero-length quantity", op)
	}
	ops := []*operand{
		{q: q, values: q.values, scalar: q.scalar},
		{q: q, values: q.values, scalar: q.scalar},
	}
	h := ufuncHelpers[op]
	_, outSpecs, err := h(op, ops)
	if err != nil {
		return err
	}
	if outSpecs[0].plain || !outSpecs[0].unit.Equal(q.unit) {
		return unitsErrorf(op, "folding '%s' would change the unit at every step", op)
	}
	return nil
}

// Reduce folds the operation over the payload to a scalar quantity of
// the same unit.
func (u *Ufunc) Reduce(q *Quantity) (*Quantity, error) {
	if err := u.reducible(q); err != nil {
		return nil, err
	}
	var acc float64
	switch u.name {
	case "add":
		acc = floats.Sum(q.values)
	case "multiply":
		acc = floats.Prod(q.values)
	default:
		acc = q.values[0]
		for _, v := range q.values[1:] {
			acc = u.fn2(acc, v)
		}
	}
	return &Quantity{values: []float64{q.dtype.round(acc)}, scalar: true, dtype: q.dtype, unit: q.unit}, nil
}

// Accumulate folds the operation over the payload keeping every running
// prefix.
func (u *Ufunc) Accumulate(q *Quantity) (*Quantity, error) {
	if err := u.reducible(q); err != nil {
		return nil, err
	}
	dst := make([]float64, len(q.values))
	switch u.name {
	case "add":
		floats.CumSum(dst, q.values)
	case "multiply":
		floats.CumProd(dst, q.values)
	default:
		acc := q.values[0]
		dst[0] = acc
		for i, v := range q.values[1:] {
			acc = u.fn2(acc, v)
			dst[i+1] = acc
		}
	}
	for i, v := range dst {
		dst[i] = q.dtype.round(v)
	}
	return &Quantity{values: dst, scalar: q.scalar, dtype: q.dtype, unit: q.unit}, nil
}

// ReduceAt folds the operation over segments: element k covers
// indices[k] up to but excluding indices[k+1] (to the end for the last
// segment); an empty or backward segment yields the single element at
// indices[k].
func (u *Ufunc) ReduceAt(q *Quantity, indices []int) (*Quantity, error) {
	if err := u.reducible(q); err != nil {
		return nil, err
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(q.values) {
			return nil, valueErrorf(u.name, "index %d out of range for length %d", idx, len(q.values))
		}
	}
	dst := make([]float64, len(indices))
	for k, start := range indices {
		end := len(q.values)
		if k+1 < len(indices) {
			end = indices[k+1]
		}
		if start >= end {
			dst[k] = q.values[start]
			continue
		}
		acc := q.values[start]
		for _, v := range q.values[start+1 : end] {
			acc = u.fn2(acc, v)
		}
		dst[k] = q.dtype.round(acc)
	}
	return &Quantity{values: dst, scalar: false, dtype: q.dtype, unit: q.unit}, nil
}

// Matrix is a two dimensional payload tagged with a unit, produced by
// the outer-product path.
type Matrix struct {
	unit Unit
	data *mat.Dense
}

func (m *Matrix) Unit() Unit       { return m.unit }
func (m *Matrix) Data() *mat.Dense { return m.data }

func (m *Matrix) Dims() (rows, cols int) {
	return m.data.Dims()
}

func (m *Matrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// Outer applies the operation to every pair of elements of the two
// operands. Units follow the elementwise two-input rule; comparisons
// strip to plain boolean matrices, unit-stripped results to *mat.Dense.
func (u *Ufunc) Outer(a, b interface{}) (interface{}, error) {
	op := u.name
	if unsupportedUfuncs[op] {
		return nil, errUnsupported(op)
	}
	if u.nin != 2 {
		return nil, valueErrorf(op, "outer product needs two inputs, '%s' has %d", op, u.nin)
	}
	if u.nout != 1 {
		return nil, valueErrorf(op, "outer product needs a single output, '%s' has %d", op, u.nout)
	}
	ops := make([]*operand, 2)
	for i, arg := range []interface{}{a, b} {
		o, err := coerceOperand(op, arg)
		if err != nil {
			return nil, err
		}
		ops[i] = o
	}
	h := ufuncHelpers[op]
	convs, outSpecs, err := h(op, ops)
	if err != nil {
		return nil, err
	}
	ins := make([][]float64, 2)
	for i, o := range ops {
		vals := o.values
		if convs[i].check != nil {
			if err := convs[i].check(vals); err != nil {
				return nil, err
			}
		}
		if convs[i].scale != 1 {
			vals = append([]float64(nil), vals...)
			floats.Scale(convs[i].scale, vals)
		}
		ins[i] = vals
	}
	rows, cols := len(ins[0]), len(ins[1])

	if u.cmp2 != nil {
		out := make([][]bool, rows)
		for i := range out {
			out[i] = make([]bool, cols)
			for j := range out[i] {
				out[i][j] = u.cmp2(ins[0][i], ins[1][j])
			}
		}
		return out, nil
	}

	d := mat.NewDense(rows, cols, nil)
	if op == "multiply" {
		d.Outer(1, mat.NewVecDense(rows, ins[0]), mat.NewVecDense(cols, ins[1]))
	} else {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				d.Set(i, j, u.fn2(ins[0][i], ins[1][j]))
			}
		}
	}
	if outSpecs[0].plain {
		return d, nil
	}
	return &Matrix{unit: outSpecs[0].unit, data: d}, nil
}
