package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareSameVariant(t *testing.T) {
	assert.Equal(t, -1, U64(1).Compare(U64(2)))
	assert.Equal(t, 0, U64(5).Compare(U64(5)))
	assert.Equal(t, 1, U64(9).Compare(U64(2)))

	assert.Equal(t, -1, I32(-5).Compare(I32(5)))
	assert.Equal(t, 1, I32(5).Compare(I32(-5)))

	assert.Equal(t, -1, Bool(false).Compare(Bool(true)))
	assert.Equal(t, 0, Bool(true).Compare(Bool(true)))
	assert.Equal(t, 1, Bool(true).Compare(Bool(false)))

	assert.True(t, String("abc").Compare(String("abd")) < 0)
	assert.True(t, String("abd").Compare(String("abc")) > 0)
	assert.Equal(t, 0, String("x").Compare(String("x")))
}

func TestCompareCrossVariantIsOrdinalFallback(t *testing.T) {
	// Cross-variant comparison is a programming error in practice (a
	// single index only ever carries one variant), but must not panic.
	assert.NotPanics(t, func() {
		U64(1).Compare(I32(1))
	})
	assert.Equal(t, int(KindU64)-int(KindString), U64(1).Compare(String("1")))
}

func TestEqual(t *testing.T) {
	assert.True(t, U64(42).Equal(U64(42)))
	assert.False(t, U64(42).Equal(U64(43)))
}

func TestSuccPred(t *testing.T) {
	next, ok := U64(5).Succ()
	assert.True(t, ok)
	assert.Equal(t, U64(6), next)

	_, ok = U64(maxUint64).Succ()
	assert.False(t, ok)

	prev, ok := U64(5).Pred()
	assert.True(t, ok)
	assert.Equal(t, U64(4), prev)

	_, ok = U64(0).Pred()
	assert.False(t, ok)

	_, ok = String("x").Succ()
	assert.False(t, ok)
}

func TestStringRendersVariant(t *testing.T) {
	assert.Equal(t, "42", U64(42).String())
	assert.Equal(t, "-7", I32(-7).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "hello", String("hello").String())
}
