package types

import (
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the cadence at which a subscription is invoiced.
type BillingPeriod string

const (
	BILLING_PERIOD_MONTHLY   BillingPeriod = "MONTHLY"
	BILLING_PERIOD_QUARTERLY BillingPeriod = "QUARTERLY"
	BILLING_PERIOD_YEARLY    BillingPeriod = "YEARLY"
)

func (b BillingPeriod) Validate() error {
	allowed := []BillingPeriod{
		BILLING_PERIOD_MONTHLY,
		BILLING_PERIOD_QUARTERLY,
		BILLING_PERIOD_YEARLY,
	}
	if !lo.Contains(allowed, b) {
		return ierr.NewError("invalid billing period").
			WithHint("Billing period must be one of MONTHLY, QUARTERLY or YEARLY").
			WithReportableDetails(map[string]any{
				"billing_period": b,
				"allowed":        allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (b BillingPeriod) String() string {
	return string(b)
}

// Months returns the number of calendar months a single period spans.
func (b BillingPeriod) Months() int {
	switch b {
	case BILLING_PERIOD_QUARTERLY:
		return 3
	case BILLING_PERIOD_YEARLY:
		return 12
	default:
		return 1
	}
}
