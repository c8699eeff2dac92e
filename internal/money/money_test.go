package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danbahadur2060/event/internal/money"
)

func TestSubtotal(t *testing.T) {
	assert.Equal(t, int64(0), money.Subtotal(nil, nil))
	assert.Equal(t, int64(10000), money.Subtotal([]int64{5000}, []int{2}))
	assert.Equal(t, int64(12500), money.Subtotal([]int64{5000, 2500}, []int{2, 1}))
}

func TestApplyPercent(t *testing.T) {
	// cart [{price 5000, qty 2}] with SAVE10 (percent, 10) -> 9000
	assert.Equal(t, int64(9000), money.ApplyPercent(10000, 10))

	// rounding: 999 * 0.9 = 899.1 -> 899
	assert.Equal(t, int64(899), money.ApplyPercent(999, 10))
	// 995 * 0.5 = 497.5 rounds up
	assert.Equal(t, int64(498), money.ApplyPercent(995, 50))

	assert.Equal(t, int64(10000), money.ApplyPercent(10000, 0))
	assert.Equal(t, int64(0), money.ApplyPercent(10000, 100))
}

func TestApplyFixedNeverNegative(t *testing.T) {
	assert.Equal(t, int64(7500), money.ApplyFixed(10000, 2500))
	assert.Equal(t, int64(0), money.ApplyFixed(1000, 2500))
	assert.Equal(t, int64(0), money.ApplyFixed(0, 1))
}
