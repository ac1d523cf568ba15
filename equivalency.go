package unitmath

// Equivalency names a rule that permits conversion between otherwise
// incompatible dimensions while it is enabled.
type Equivalency int

const (
	// DimensionlessAngles makes angle units interchangeable with
	// dimensionless ones (a radian converts to dimensionless at
	// factor one, a degree at pi/180).
	DimensionlessAngles Equivalency = iota
)

type equivState struct {
	anglesDimensionless bool
}

// the enabled-equivalency stack. All operations are synchronous and
// single threaded, so a plain slice is enough.
var equivStack []equivState

// EnableEquivalencies enables the given equivalencies for a scope. The
// returned restore func pops them again and must be deferred so that the
// state cannot leak past the scope on any exit path:
//
//	restore := EnableEquivalencies(DimensionlessAngles)
//	defer restore()
//
// Enabling is cumulative: equivalencies already active in an outer scope
// stay active.
func EnableEquivalencies(eqs ...Equivalency) (restore func()) {
	st := activeEquivalencies()
	for _, eq := range eqs {
		switch eq {
		case DimensionlessAngles:
			st.anglesDimensionless = true
		}
	}
	equivStack = append(equivStack, st)
	depth := len(equivStack)
	return func() {
		// tolerate out-of-order restores by truncating to the
		// recorded depth
		if len(equivStack) >= depth {
			equivStack = equivStack[:depth-1]
		}
	}
}

func activeEquivalencies() equivState {
	if len(equivStack) == 0 {
		return equivState{}
	}
	return equivStack[len(equivStack)-1]
}
