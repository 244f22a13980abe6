// internal/services/units.go
package services

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const weiDecimals = 18

// ToWei converts an IP/WIP amount to its 18-decimal integer form. Digits
// below one wei are truncated.
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(weiDecimals).BigInt()
}

// FromWei converts an 18-decimal integer amount back to IP/WIP.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiDecimals)
}
