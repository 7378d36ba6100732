package units

import (
	"fmt"
	"math/big"
	"strings"
)

// EtherDecimals is the number of decimals of the native currency.
const EtherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(EtherDecimals), nil)

// ParseEther converts a decimal ether string into wei.
// The amount must be a non-negative decimal with at most 18 fractional digits.
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("negative amount: %s", amount)
	}
	if strings.HasPrefix(amount, "+") {
		amount = amount[1:]
	}

	whole := amount
	frac := ""
	if idx := strings.IndexByte(amount, '.'); idx >= 0 {
		whole = amount[:idx]
		frac = amount[idx+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return nil, fmt.Errorf("invalid amount: %s", amount)
		}
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	if len(frac) > EtherDecimals {
		return nil, fmt.Errorf("too many decimal places: %s", amount)
	}

	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	wholeWei, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	wholeWei.Mul(wholeWei, weiPerEther)

	if frac != "" {
		// Right-pad the fraction to 18 digits before parsing.
		padded := frac + strings.Repeat("0", EtherDecimals-len(frac))
		fracWei, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount: %s", amount)
		}
		wholeWei.Add(wholeWei, fracWei)
	}

	return wholeWei, nil
}

// FormatEther converts a wei value into a decimal ether string.
// Trailing fractional zeros are trimmed down to one decimal place.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}

	str := wei.String()
	negative := false
	if strings.HasPrefix(str, "-") {
		negative = true
		str = str[1:]
	}

	for len(str) <= EtherDecimals {
		str = "0" + str
	}

	pos := len(str) - EtherDecimals
	whole := str[:pos]
	frac := str[pos:]

	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	out := whole + "." + frac
	if negative {
		out = "-" + out
	}
	return out
}

// FormatWeiString formats a decimal wei string, passing malformed input through.
func FormatWeiString(wei string) string {
	value, ok := new(big.Int).SetString(strings.TrimSpace(wei), 10)
	if !ok {
		return wei
	}
	return FormatEther(value)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
