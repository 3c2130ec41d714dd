package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBillingDate(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		unit     int
		period   BillingPeriod
		expected time.Time
	}{
		{
			name:     "monthly mid-month",
			start:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_MONTHLY,
			expected: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps jan 31 to end of february",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_MONTHLY,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly clamps in non leap year",
			start:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_MONTHLY,
			expected: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly with multiplier crosses year boundary",
			start:    time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
			unit:     2,
			period:   BILLING_PERIOD_MONTHLY,
			expected: time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "quarterly adds three months",
			start:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_QUARTERLY,
			expected: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "quarterly clamps oct 31 to end of january",
			start:    time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_QUARTERLY,
			expected: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly keeps the calendar date",
			start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_YEARLY,
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly clamps feb 29 outside a leap year",
			start:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			unit:     1,
			period:   BILLING_PERIOD_YEARLY,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextBillingDate(tc.start, tc.unit, tc.period)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.expected), "got %s, want %s", got, tc.expected)
		})
	}

	t.Run("preserves the time of day", func(t *testing.T) {
		start := time.Date(2024, 5, 10, 13, 45, 30, 0, time.UTC)
		got, err := NextBillingDate(start, 1, BILLING_PERIOD_MONTHLY)
		require.NoError(t, err)
		assert.Equal(t, 13, got.Hour())
		assert.Equal(t, 45, got.Minute())
		assert.Equal(t, 30, got.Second())
	})

	t.Run("rejects non positive unit", func(t *testing.T) {
		_, err := NextBillingDate(time.Now(), 0, BILLING_PERIOD_MONTHLY)
		require.Error(t, err)
	})

	t.Run("rejects unknown period", func(t *testing.T) {
		_, err := NextBillingDate(time.Now(), 1, BillingPeriod("WEEKLY"))
		require.Error(t, err)
	})
}

func TestBillingPeriodMonths(t *testing.T) {
	assert.Equal(t, 1, BILLING_PERIOD_MONTHLY.Months())
	assert.Equal(t, 3, BILLING_PERIOD_QUARTERLY.Months())
	assert.Equal(t, 12, BILLING_PERIOD_YEARLY.Months())
}
