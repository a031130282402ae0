package statsevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMask_String(t *testing.T) {
	assert.Equal(t, "none", ErrorMask(0).String())
	assert.Equal(t, "no_atom_id", ErrorNoAtomID.String())
	assert.Equal(t, "no_timestamp|overflow", (ErrorNoTimestamp | ErrorOverflow).String())
	assert.Equal(t, "too_many_fields|0x4000", (ErrorTooManyFields | 0x4000).String())
}

func TestErrorMask_Has(t *testing.T) {
	m := ErrorOverflow | ErrorTooManyAnnotations
	assert.True(t, m.Has(ErrorOverflow))
	assert.True(t, m.Has(ErrorOverflow|ErrorTooManyAnnotations))
	assert.False(t, m.Has(ErrorNoAtomID))
	assert.False(t, m.Has(0))
}

func TestErrorMask_BitsAreDistinct(t *testing.T) {
	var seen ErrorMask
	for _, n := range errorMaskNames {
		assert.Zero(t, seen&n.flag, "flag %s overlaps", n.name)
		seen |= n.flag
	}
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "int", TypeInt32.String())
	assert.Equal(t, "attribution_chain", TypeAttributionChain.String())
	assert.Equal(t, "errors", TypeErrors.String())
	assert.Equal(t, "unknown(12)", TypeID(12).String())
}

func TestHeaderLayout(t *testing.T) {
	assert.Equal(t, 1, posNumElements)
	assert.Equal(t, 2, posTimestampNs)
	assert.Equal(t, 11, posAtomID)
	assert.Equal(t, 16, HeaderSize)
}
