package dataspec

// Conformed is the result of conforming a value: either a conformed value or
// the terminal "could not conform" marker. The zero value is the invalid
// marker, so a Conformed carrying a legitimate nil is still distinguishable
// from a failure.
type Conformed struct {
	value any
	valid bool
}

// ConformedValue wraps v as a successful conformation result.
func ConformedValue(v any) Conformed { return Conformed{value: v, valid: true} }

// Invalid returns the terminal "could not conform" result.
func Invalid() Conformed { return Conformed{} }

// Valid reports whether the conformation succeeded.
func (c Conformed) Valid() bool { return c.valid }

// Value returns the conformed value. It is nil when the result is invalid.
func (c Conformed) Value() any { return c.value }

// Conformer transforms an already-validated value into its canonical form.
// Returning Invalid() signals that the value could not be conformed.
type Conformer func(v any) Conformed
