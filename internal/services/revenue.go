// internal/services/revenue.go
package services

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/javajoker/royalty-ledger/internal/models"
)

// PaymentAmount is the part of a royalty payment the calculator needs.
type PaymentAmount struct {
	Amount    decimal.Decimal
	IsClaimed bool
}

// Claimable returns the owner's share of the unclaimed payments:
// sum(amount * royaltyPercent / 100). The division is a decimal shift, so the
// result is exact.
func Claimable(payments []PaymentAmount, royaltyPercent decimal.Decimal) decimal.Decimal {
	unclaimed := lo.Filter(payments, func(p PaymentAmount, _ int) bool {
		return !p.IsClaimed
	})
	return lo.Reduce(unclaimed, func(total decimal.Decimal, p PaymentAmount, _ int) decimal.Decimal {
		return total.Add(p.Amount.Mul(royaltyPercent).Shift(-2))
	}, decimal.Zero)
}

func paymentAmounts(payments []models.RoyaltyPayment) []PaymentAmount {
	return lo.Map(payments, func(p models.RoyaltyPayment, _ int) PaymentAmount {
		return PaymentAmount{Amount: p.Amount.Decimal, IsClaimed: p.IsClaimed}
	})
}

// ParseAmount parses a positive decimal amount such as "0.5".
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid(field, "not a decimal number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, invalid(field, "must be greater than zero")
	}
	if wei := amount.Shift(weiDecimals); !wei.Equal(wei.Truncate(0)) {
		return decimal.Zero, invalid(field, "more than 18 decimal places")
	}
	return amount, nil
}
