package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidEthAmount = errors.New("invalid eth amount")

// ParseEth converts a decimal ETH string to integer wei. Negative values,
// malformed numbers and more than 18 fractional digits are rejected, matching
// on-chain granularity.
func ParseEth(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidEthAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidEthAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidEthAmount
	}
	wei := d.Shift(18)
	if !wei.IsInteger() {
		return decimal.Zero, ErrInvalidEthAmount
	}
	return wei, nil
}

// WeiToEth returns the float ETH value of a wei amount, for display-grade
// pricing math only. Settlement amounts stay in wei.
func WeiToEth(wei decimal.Decimal) float64 {
	f, _ := wei.Shift(-18).Float64()
	return f
}

// FormatEth renders a wei amount as a decimal ETH string without precision loss.
func FormatEth(wei decimal.Decimal) string {
	return wei.Shift(-18).String()
}
