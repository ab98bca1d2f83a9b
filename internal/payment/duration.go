package payment

import (
	"fmt"
	"math/big"

	"github.com/mysterylink/button-server/internal/domain"
)

// DurationCalculator converts a validated payment amount into a whole-second
// ownership duration at a fixed price per hour. Payments buy whole hours:
// the remainder below one hour is not credited.
type DurationCalculator struct {
	costPerHour     *big.Int
	minimumDuration int64
	decimals        int
}

// NewDurationCalculator creates a calculator with the given hourly rate
// (smallest unit) and minimum duration floor in seconds
func NewDurationCalculator(costPerHour *big.Int, minimumDurationSeconds int64, decimals int) *DurationCalculator {
	return &DurationCalculator{
		costPerHour:     costPerHour,
		minimumDuration: minimumDurationSeconds,
		decimals:        decimals,
	}
}

// Duration returns the ownership duration bought by amount. A duration below
// the minimum floor rejects the whole purchase with domain.ErrPaymentTooSmall;
// sub-minimum durations are never persisted.
func (c *DurationCalculator) Duration(amount *big.Int) (int64, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, c.tooSmall(amount)
	}

	hours := new(big.Int).Div(amount, c.costPerHour)
	seconds := new(big.Int).Mul(hours, big.NewInt(3600))

	if !seconds.IsInt64() {
		// An absurdly large payment still yields a bounded duration
		return 0, fmt.Errorf("payment of %s buys an out-of-range duration", amount.String())
	}
	if seconds.Int64() < c.minimumDuration {
		return 0, c.tooSmall(amount)
	}
	return seconds.Int64(), nil
}

func (c *DurationCalculator) tooSmall(amount *big.Int) error {
	return fmt.Errorf("%w: %s buys less than the minimum %d seconds (cost per hour is %s)",
		domain.ErrPaymentTooSmall,
		FormatAmount(amount, c.decimals),
		c.minimumDuration,
		FormatAmount(c.costPerHour, c.decimals))
}
