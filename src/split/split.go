package split

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeSplits divides abs(amount) across members by percentage. Each
// share is rounded to 2 decimal places and any rounding residual is
// assigned to the largest share (lowest user id on ties), so the shares
// always sum back to the full amount.
func ComputeSplits(amount decimal.Decimal, percentages map[int64]decimal.Decimal) (map[int64]decimal.Decimal, error) {
	if len(percentages) == 0 {
		return nil, fmt.Errorf("must have at least one member share")
	}

	total := amount.Abs()
	shares := make(map[int64]decimal.Decimal, len(percentages))

	allocated := decimal.Zero
	largestUser := int64(0)
	largestRaw := decimal.NewFromInt(-1)
	for userID, pct := range percentages {
		raw := total.Mul(pct).Div(hundred)
		share := raw.Round(2)
		shares[userID] = share
		allocated = allocated.Add(share)
		if raw.GreaterThan(largestRaw) || (raw.Equal(largestRaw) && userID < largestUser) {
			largestRaw = raw
			largestUser = userID
		}
	}

	residual := total.Sub(allocated)
	if !residual.IsZero() {
		shares[largestUser] = shares[largestUser].Add(residual)
	}

	return shares, nil
}
