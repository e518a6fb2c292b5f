package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveUniqued(t *testing.T) {
	tc := NewTypeContext()
	a := tc.Primitive(PrimI32)
	b := tc.Primitive(PrimI32)
	assert.Same(t, a, b, "same primitive kind must be the same pointer")

	c := tc.Primitive(PrimI64)
	assert.NotSame(t, a, c)
}

func TestConstraintUniqued(t *testing.T) {
	tc := NewTypeContext()
	a := tc.Constraint(ConstraintNumeric)
	b := tc.Constraint(ConstraintNumeric)
	assert.Same(t, a, b)
}

func TestRefUniqued(t *testing.T) {
	tc := NewTypeContext()
	inner := tc.Primitive(PrimI8)
	a := tc.Ref(inner, true)
	b := tc.Ref(inner, true)
	assert.Same(t, a, b, "same inner+ownership must be uniqued")

	c := tc.Ref(inner, false)
	assert.NotSame(t, a, c, "owned vs borrowed must be distinct types")
}

func TestNameUniqued(t *testing.T) {
	tc := NewTypeContext()
	a := tc.Name("mod::Point")
	b := tc.Name("mod::Point")
	assert.Same(t, a, b)

	c := tc.Name("mod::Other")
	assert.NotSame(t, a, c)
}

func TestFreshVarMonotonic(t *testing.T) {
	tc := NewTypeContext()
	a := tc.FreshVar()
	b := tc.FreshVar()
	assert.NotEqual(t, a.id, b.id)
	assert.Less(t, a.id, b.id)
}

func TestAllowsPrimitive(t *testing.T) {
	assert.True(t, ConstraintNumeric.AllowsPrimitive(PrimI32))
	assert.True(t, ConstraintNumeric.AllowsPrimitive(PrimI64))
	assert.False(t, ConstraintNumeric.AllowsPrimitive(PrimBool))

	assert.True(t, ConstraintDecimal.AllowsPrimitive(PrimF32))
	assert.False(t, ConstraintDecimal.AllowsPrimitive(PrimI32))
}

func TestDefaultPrimitive(t *testing.T) {
	assert.Equal(t, PrimI32, ConstraintNumeric.DefaultPrimitive())
	assert.Equal(t, PrimF64, ConstraintDecimal.DefaultPrimitive())
}

func TestStringRendering(t *testing.T) {
	tc := NewTypeContext()
	ref := tc.Ref(tc.Primitive(PrimI8), true)
	assert.Equal(t, "own i8", ref.String())

	borrow := tc.Ref(tc.Primitive(PrimI8), false)
	assert.Equal(t, "ref i8", borrow.String())

	assert.Equal(t, "numeric", (&Constraint{Kind: ConstraintNumeric}).String())
}

func TestInternedCountGrows(t *testing.T) {
	tc := NewTypeContext()
	before := tc.InternedCount()
	tc.Primitive(PrimBool)
	tc.Name("x::Y")
	after := tc.InternedCount()
	assert.Greater(t, after, before)
}
