// Package pricing holds the pure line and aggregate total computations.
// Everything here is stateless and decimal-safe; callers own persistence
// and lifecycle rules.
package pricing

import (
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput is the pricing view of a single subscription or invoice line.
type LineInput struct {
	UnitPrice       decimal.Decimal
	Quantity        int
	TaxPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Totals is the aggregate result over a set of lines plus the plan price.
type Totals struct {
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
}

// ValidateLineInput checks the numeric constraints on a line before any
// total is computed. Quantity must be a positive integer, percentages must
// fall within [0,100] and the unit price must not be negative.
func ValidateLineInput(in LineInput) error {
	if in.Quantity <= 0 {
		return ierr.NewError("quantity must be a positive integer").
			WithHint("Provide a quantity of at least 1, or remove the line instead").
			WithReportableDetails(map[string]any{
				"quantity": in.Quantity,
			}).
			Mark(ierr.ErrInvalidLineInput)
	}
	if in.UnitPrice.IsNegative() {
		return ierr.NewError("unit price must not be negative").
			WithReportableDetails(map[string]any{
				"unit_price": in.UnitPrice,
			}).
			Mark(ierr.ErrInvalidLineInput)
	}
	if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(hundred) {
		return ierr.NewError("tax percent must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"tax_percent": in.TaxPercent,
			}).
			Mark(ierr.ErrInvalidLineInput)
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return ierr.NewError("discount percent must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"discount_percent": in.DiscountPercent,
			}).
			Mark(ierr.ErrInvalidLineInput)
	}
	return nil
}

// ComputeLineTotal returns unitPrice * quantity * (1 + tax/100 - discount/100).
func ComputeLineTotal(in LineInput) (decimal.Decimal, error) {
	if err := ValidateLineInput(in); err != nil {
		return decimal.Zero, err
	}

	base := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	factor := decimal.NewFromInt(1).
		Add(in.TaxPercent.Div(hundred)).
		Sub(in.DiscountPercent.Div(hundred))
	return base.Mul(factor), nil
}

// ComputeAggregate folds a set of lines and the plan price into the four
// totals carried by subscriptions and invoices:
//
//	subtotal      = planPrice + sum(unitPrice * quantity)
//	taxTotal      = sum(unitPrice * quantity * taxPercent / 100)
//	discountTotal = sum(unitPrice * quantity * discountPercent / 100)
//	grandTotal    = subtotal + taxTotal - discountTotal
func ComputeAggregate(lines []LineInput, planPrice decimal.Decimal) (Totals, error) {
	if planPrice.IsNegative() {
		return Totals{}, ierr.NewError("plan price must not be negative").
			WithReportableDetails(map[string]any{
				"plan_price": planPrice,
			}).
			Mark(ierr.ErrInvalidLineInput)
	}

	totals := Totals{
		Subtotal:      planPrice,
		TaxTotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
	}

	for _, line := range lines {
		if err := ValidateLineInput(line); err != nil {
			return Totals{}, err
		}

		base := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		totals.Subtotal = totals.Subtotal.Add(base)
		totals.TaxTotal = totals.TaxTotal.Add(base.Mul(line.TaxPercent).Div(hundred))
		totals.DiscountTotal = totals.DiscountTotal.Add(base.Mul(line.DiscountPercent).Div(hundred))
	}

	totals.GrandTotal = totals.Subtotal.Add(totals.TaxTotal).Sub(totals.DiscountTotal)
	return totals, nil
}
