package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestEvaluate_NoPriorDistribution(t *testing.T) {
	res := Evaluate(nil, 30, asOf)

	assert.True(t, res.Eligible)
	assert.Nil(t, res.DaysSinceLast)
	assert.Contains(t, res.Reason, "never received")
}

func TestEvaluate_CooldownElapsed(t *testing.T) {
	last := asOf.AddDate(0, 0, -45)

	res := Evaluate(&last, 30, asOf)

	assert.True(t, res.Eligible)
	require.NotNil(t, res.DaysSinceLast)
	assert.Equal(t, 45, *res.DaysSinceLast)
}

func TestEvaluate_WithinCooldown(t *testing.T) {
	last := asOf.AddDate(0, 0, -3)

	res := Evaluate(&last, 30, asOf)

	assert.False(t, res.Eligible)
	require.NotNil(t, res.DaysSinceLast)
	assert.Equal(t, 3, *res.DaysSinceLast)
	assert.Contains(t, res.Reason, "must wait 27 more days")
}

func TestEvaluate_BoundaryExactlyCooldownDays(t *testing.T) {
	last := asOf.AddDate(0, 0, -30)

	res := Evaluate(&last, 30, asOf)

	assert.True(t, res.Eligible, "entry dated exactly cooldown days ago must be eligible")
	require.NotNil(t, res.DaysSinceLast)
	assert.Equal(t, 30, *res.DaysSinceLast)
}

func TestEvaluate_BoundaryOneDayShort(t *testing.T) {
	last := asOf.AddDate(0, 0, -29)

	res := Evaluate(&last, 30, asOf)

	assert.False(t, res.Eligible, "entry dated cooldown-1 days ago must not be eligible")
	require.NotNil(t, res.DaysSinceLast)
	assert.Equal(t, 29, *res.DaysSinceLast)
}

func TestEvaluate_SameDay(t *testing.T) {
	last := asOf

	res := Evaluate(&last, 30, asOf)

	assert.False(t, res.Eligible)
	require.NotNil(t, res.DaysSinceLast)
	assert.Equal(t, 0, *res.DaysSinceLast)
}

func TestEvaluate_Deterministic(t *testing.T) {
	last := asOf.AddDate(0, 0, -12)

	first := Evaluate(&last, 30, asOf)
	second := Evaluate(&last, 30, asOf)

	assert.Equal(t, first.Eligible, second.Eligible)
	assert.Equal(t, first.Reason, second.Reason)
	require.NotNil(t, second.DaysSinceLast)
	assert.Equal(t, *first.DaysSinceLast, *second.DaysSinceLast)
}
