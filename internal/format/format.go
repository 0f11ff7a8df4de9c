// Package format turns condition values into display strings.
//
// The unit of a value is inferred from its condition label, the same way the
// backend names its rules, so one function serves both value and threshold.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Kind is the display unit of a condition value.
type Kind int

const (
	KindCurrency Kind = iota
	KindPercent
	KindRatio
)

func (k Kind) String() string {
	switch k {
	case KindPercent:
		return "percent"
	case KindRatio:
		return "ratio"
	default:
		return "currency"
	}
}

// percentMarkers name growth (상승률), spike (급등) and volatility (변동성) rules.
var percentMarkers = []string{"상승률", "급등", "변동성"}

// ratioMarker names turnover rules.
const ratioMarker = "회전율"

// KindOf classifies a condition label. Percent markers win over the ratio
// marker when a label carries both.
func KindOf(label string) Kind {
	for _, m := range percentMarkers {
		if strings.Contains(label, m) {
			return KindPercent
		}
	}
	if strings.Contains(label, ratioMarker) {
		return KindRatio
	}
	return KindCurrency
}

// Value formats a condition's observed value.
func Value(label string, v float64) string {
	switch KindOf(label) {
	case KindPercent:
		return Percent(v)
	case KindRatio:
		return Ratio(v)
	default:
		return Number(v)
	}
}

// Threshold formats a condition's threshold. Same rules as Value.
func Threshold(label string, v float64) string {
	return Value(label, v)
}

// Percent formats a fraction as a percentage with at most 2 fraction digits.
// 0.1234 -> "12.34%", 0.5 -> "50%".
func Percent(v float64) string {
	d := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(2)
	return group(d) + "%"
}

// Ratio formats a multiplier with exactly 2 decimals. 1.5 -> "1.50x".
// Ties on the exact binary value round away from zero, so 1.125 -> "1.13x"
// while 1.005 (stored just below the tie) -> "1.00x".
func Ratio(v float64) string {
	d, ok := fixed(v, 2)
	if !ok {
		return fmt.Sprintf("%.2fx", v)
	}
	return d.StringFixed(2) + "x"
}

// Number formats a ko-KR grouped number with at most 3 fraction digits.
// 1234567 -> "1,234,567".
func Number(v float64) string {
	return group(decimal.NewFromFloat(v).Round(3))
}

// Won formats a price followed by the won sign. 70100 -> "70,100원".
func Won(v float64) string {
	return Number(v) + "원"
}

// Money formats a price with its currency code. 71200, "KRW" -> "71,200 KRW".
func Money(v float64, currency string) string {
	if currency == "" {
		return Number(v)
	}
	return Number(v) + " " + currency
}

// fixed rounds the exact value of v to digits fraction digits, half away
// from zero. ok is false for NaN and infinities.
func fixed(v float64, digits int32) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, false
	}

	r := new(big.Rat).SetFloat64(v)
	r.Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)))

	neg := r.Sign() < 0
	r.Abs(r)
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())
	if neg {
		n.Neg(n)
	}
	return decimal.NewFromBigInt(n, -digits), true
}

// group renders d with locale digit grouping on the integer part and the
// fraction digits left as decimal produced them.
func group(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	s := d.String()
	intDigits, frac, hasFrac := strings.Cut(s, ".")

	grouped := intDigits
	if ip := d.Truncate(0); ip.LessThanOrEqual(decimal.NewFromInt(1<<53)) {
		grouped = message.NewPrinter(language.Korean).Sprintf("%d", ip.IntPart())
	}

	if hasFrac {
		return sign + grouped + "." + frac
	}
	return sign + grouped
}
