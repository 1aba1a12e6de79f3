package decimal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextPrecision(t *testing.T) {
	assert.EqualValues(t, 28, Context.Precision)
}

func TestAddExact(t *testing.T) {
	a := MustParse("0.4")
	b := MustParse("0.6")
	sum, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, "1.0", String(sum))
}

func TestSignedConvention(t *testing.T) {
	qty := MustParse("1.5")
	assert.Equal(t, "1.5", String(Signed(qty, "BUY")))
	assert.Equal(t, "-1.5", String(Signed(qty, "SELL")))
}

func TestAbsDiff(t *testing.T) {
	a := MustParse("10.0")
	b := MustParse("10.0005")
	diff, err := AbsDiff(a, b)
	require.NoError(t, err)
	assert.Equal(t, "0.0005", String(diff))
}

func TestFillAccumulationExact(t *testing.T) {
	// Mirrors spec.md §8 scenario 2: 0.4 + 0.6 == 1.0 exactly.
	pos := Zero()
	for _, f := range []string{"0.4", "0.6"} {
		delta := Signed(MustParse(f), "BUY")
		var err error
		pos, err = Add(pos, delta)
		require.NoError(t, err)
	}
	assert.Equal(t, "1.0", String(pos))
}
