package pricing

import (
	"testing"

	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLineTotal(t *testing.T) {
	t.Run("plain line without tax or discount", func(t *testing.T) {
		total, err := ComputeLineTotal(LineInput{
			UnitPrice: d("100"),
			Quantity:  2,
		})
		require.NoError(t, err)
		assert.True(t, total.Equal(d("200")), "got %s", total)
	})

	t.Run("tax raises the line total", func(t *testing.T) {
		total, err := ComputeLineTotal(LineInput{
			UnitPrice:  d("100"),
			Quantity:   2,
			TaxPercent: d("10"),
		})
		require.NoError(t, err)
		assert.True(t, total.Equal(d("220")), "got %s", total)
	})

	t.Run("discount lowers the line total", func(t *testing.T) {
		total, err := ComputeLineTotal(LineInput{
			UnitPrice:       d("50"),
			Quantity:        4,
			DiscountPercent: d("25"),
		})
		require.NoError(t, err)
		assert.True(t, total.Equal(d("150")), "got %s", total)
	})

	t.Run("tax and discount combine on the same base", func(t *testing.T) {
		total, err := ComputeLineTotal(LineInput{
			UnitPrice:       d("10"),
			Quantity:        10,
			TaxPercent:      d("18"),
			DiscountPercent: d("8"),
		})
		require.NoError(t, err)
		assert.True(t, total.Equal(d("110")), "got %s", total)
	})

	t.Run("zero price is a valid free line", func(t *testing.T) {
		total, err := ComputeLineTotal(LineInput{
			UnitPrice: decimal.Zero,
			Quantity:  3,
		})
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestValidateLineInput(t *testing.T) {
	cases := []struct {
		name string
		in   LineInput
	}{
		{
			name: "zero quantity",
			in:   LineInput{UnitPrice: d("10"), Quantity: 0},
		},
		{
			name: "negative quantity",
			in:   LineInput{UnitPrice: d("10"), Quantity: -1},
		},
		{
			name: "negative unit price",
			in:   LineInput{UnitPrice: d("-1"), Quantity: 1},
		},
		{
			name: "tax above 100",
			in:   LineInput{UnitPrice: d("10"), Quantity: 1, TaxPercent: d("101")},
		},
		{
			name: "negative tax",
			in:   LineInput{UnitPrice: d("10"), Quantity: 1, TaxPercent: d("-5")},
		},
		{
			name: "discount above 100",
			in:   LineInput{UnitPrice: d("10"), Quantity: 1, DiscountPercent: d("100.01")},
		},
		{
			name: "negative discount",
			in:   LineInput{UnitPrice: d("10"), Quantity: 1, DiscountPercent: d("-0.5")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLineInput(tc.in)
			require.Error(t, err)
			assert.True(t, ierr.Is(err, ierr.ErrInvalidLineInput))

			_, err = ComputeLineTotal(tc.in)
			require.Error(t, err)
		})
	}

	t.Run("boundary percents are valid", func(t *testing.T) {
		require.NoError(t, ValidateLineInput(LineInput{
			UnitPrice:       d("10"),
			Quantity:        1,
			TaxPercent:      d("100"),
			DiscountPercent: d("100"),
		}))
	})
}

func TestComputeAggregate(t *testing.T) {
	t.Run("single line plus plan price", func(t *testing.T) {
		totals, err := ComputeAggregate([]LineInput{
			{UnitPrice: d("100"), Quantity: 2, TaxPercent: d("10")},
		}, d("50"))
		require.NoError(t, err)

		assert.True(t, totals.Subtotal.Equal(d("250")), "subtotal %s", totals.Subtotal)
		assert.True(t, totals.TaxTotal.Equal(d("20")), "tax %s", totals.TaxTotal)
		assert.True(t, totals.DiscountTotal.IsZero(), "discount %s", totals.DiscountTotal)
		assert.True(t, totals.GrandTotal.Equal(d("270")), "grand %s", totals.GrandTotal)
	})

	t.Run("grand total equals plan price plus per-line totals", func(t *testing.T) {
		lines := []LineInput{
			{UnitPrice: d("19.99"), Quantity: 3, TaxPercent: d("18")},
			{UnitPrice: d("5"), Quantity: 10, DiscountPercent: d("20")},
			{UnitPrice: d("0.01"), Quantity: 7, TaxPercent: d("5"), DiscountPercent: d("5")},
		}
		planPrice := d("99")

		totals, err := ComputeAggregate(lines, planPrice)
		require.NoError(t, err)

		sum := planPrice
		for _, line := range lines {
			lineTotal, err := ComputeLineTotal(line)
			require.NoError(t, err)
			sum = sum.Add(lineTotal)
		}
		assert.True(t, totals.GrandTotal.Equal(sum), "grand %s != sum %s", totals.GrandTotal, sum)
	})

	t.Run("recomputation does not drift", func(t *testing.T) {
		lines := []LineInput{
			{UnitPrice: d("33.33"), Quantity: 3, TaxPercent: d("12.5"), DiscountPercent: d("2.5")},
		}

		first, err := ComputeAggregate(lines, d("10"))
		require.NoError(t, err)
		second, err := ComputeAggregate(lines, d("10"))
		require.NoError(t, err)

		assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
		assert.True(t, first.Subtotal.Equal(second.Subtotal))
	})

	t.Run("no lines bills the plan price alone", func(t *testing.T) {
		totals, err := ComputeAggregate(nil, d("49.99"))
		require.NoError(t, err)
		assert.True(t, totals.GrandTotal.Equal(d("49.99")))
	})

	t.Run("negative plan price is rejected", func(t *testing.T) {
		_, err := ComputeAggregate(nil, d("-1"))
		require.Error(t, err)
		assert.True(t, ierr.Is(err, ierr.ErrInvalidLineInput))
	})

	t.Run("one bad line fails the whole aggregate", func(t *testing.T) {
		_, err := ComputeAggregate([]LineInput{
			{UnitPrice: d("10"), Quantity: 1},
			{UnitPrice: d("10"), Quantity: 0},
		}, decimal.Zero)
		require.Error(t, err)
	})
}
