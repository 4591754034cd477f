package pricing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCost_Formula(t *testing.T) {
	for totes := MinTotes; totes <= MaxTotes; totes++ {
		got, err := SetupCost(totes)
		require.NoError(t, err)
		assert.Equal(t, int64(20+10*totes), got, "totes=%d", totes)
	}
}

func TestSetupCost_OutOfRange(t *testing.T) {
	for _, totes := range []int{-1, 0, 1, 11, 100} {
		_, err := SetupCost(totes)
		assert.ErrorIs(t, err, ErrToteCountOutOfRange, "totes=%d", totes)
	}
}

func TestSetupCost_Deterministic(t *testing.T) {
	a, err := SetupCost(7)
	require.NoError(t, err)
	b, err := SetupCost(7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSetupCost_StrictlyIncreasing(t *testing.T) {
	prev, err := SetupCost(MinTotes)
	require.NoError(t, err)
	for totes := MinTotes + 1; totes <= MaxTotes; totes++ {
		cur, err := SetupCost(totes)
		require.NoError(t, err)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestMonthlyCost(t *testing.T) {
	assert.Equal(t, int64(20), MonthlyCost(2))
	assert.Equal(t, int64(50), MonthlyCost(5))
	assert.Equal(t, int64(100), MonthlyCost(10))
}

func TestCentsVariants(t *testing.T) {
	cents, err := SetupCostCents(5)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), cents)
	assert.Equal(t, int64(5000), MonthlyCostCents(5))

	_, err = SetupCostCents(1)
	assert.ErrorIs(t, err, ErrToteCountOutOfRange)
}

func TestBoundsConstants(t *testing.T) {
	lo, err := SetupCostCents(MinTotes)
	require.NoError(t, err)
	hi, err := SetupCostCents(MaxTotes)
	require.NoError(t, err)
	assert.Equal(t, int64(MinSetupCents), lo)
	assert.Equal(t, int64(MaxSetupCents), hi)
	assert.Equal(t, MonthlyCost(MinTotes), int64(MinMonthly))
	assert.Equal(t, MonthlyCost(MaxTotes), int64(MaxMonthly))
}

func TestMatchesSetup(t *testing.T) {
	assert.True(t, MatchesSetup(70.00, 5))
	assert.True(t, MatchesSetup(70.01, 5))
	assert.True(t, MatchesSetup(69.99, 5))
	assert.False(t, MatchesSetup(70.02, 5))
	assert.False(t, MatchesSetup(65.00, 5))
	assert.False(t, MatchesSetup(70.00, 1), "invalid count never matches")
}

func TestMatchesSetupCents(t *testing.T) {
	assert.True(t, MatchesSetupCents(7000, 5))
	assert.True(t, MatchesSetupCents(7001, 5))
	assert.True(t, MatchesSetupCents(6999, 5))
	assert.False(t, MatchesSetupCents(7002, 5))
	assert.False(t, MatchesSetupCents(7000, 0))
}

func TestCostMessage(t *testing.T) {
	cost, err := SetupCost(5)
	require.NoError(t, err)
	msg := CostMessage(cost, 5)
	assert.Equal(t, "Total for 5 totes: $70.00 today, then $50.00/month after your first month", msg)
}

func ExampleCostMessage() {
	cost, _ := SetupCost(2)
	fmt.Println(CostMessage(cost, 2))
	// Output: Total for 2 totes: $40.00 today, then $20.00/month after your first month
}
