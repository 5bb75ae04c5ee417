// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fincast/internal/model"
)

// FormatAmount formats a ledger amount with thousands separators and two
// decimal places. e.g., 1234567.5 -> "1,234,567.50"
func FormatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return d.StringFixed(2)
	}
	out := FormatNumber(n) + "." + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// FormatMoney formats a forecast value the same way as FormatAmount.
func FormatMoney(f float64) string {
	return FormatAmount(decimal.NewFromFloat(f))
}

// FormatCompact shortens a value with a K, M or B suffix: 1234 -> "1.2K".
func FormatCompact(f float64) string {
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}} {
		if math.Abs(f) >= u.div {
			return fmt.Sprintf("%.1f%s", f/u.div, u.suffix)
		}
	}
	return fmt.Sprintf("%.0f", f)
}

// FormatNumber groups digits in threes: 1234567 -> "1,234,567".
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	digits := strconv.FormatInt(n, 10)
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	groups := []string{digits[:min(head, len(digits))]}
	for i := head; i < len(digits); i += 3 {
		groups = append(groups, digits[i:i+3])
	}
	return strings.Join(groups, ",")
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change between two values with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

// FormatInterval formats a confidence interval as "lower .. upper".
func FormatInterval(iv model.Interval) string {
	return FormatMoney(iv.Lower) + " .. " + FormatMoney(iv.Upper)
}

// FormatAccuracy formats R² and 1-MAPE side by side.
func FormatAccuracy(a model.Accuracy) string {
	return fmt.Sprintf("R² %.3f  1-MAPE %s", a.R2, FormatPercent(a.MAPE))
}
