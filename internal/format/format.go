// Package format renders numbers for reports: grouped integer counts and
// fixed-point decimals.
package format

import (
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// Fixed renders f with exactly places decimals, rounding half away from zero.
func Fixed(f float64, places int32) string {
	return decimal.NewFromFloat(f).StringFixed(places)
}

// Round rounds f to places decimals.
func Round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

// OptCount renders a count, or an empty string when absent.
func OptCount(v models.Optional[int64]) string {
	if !v.Valid {
		return ""
	}
	return Count(v.Value)
}

// OptFixed renders a decimal, or an empty string when absent.
func OptFixed(v models.Optional[float64], places int32) string {
	if !v.Valid {
		return ""
	}
	return Fixed(v.Value, places)
}

// Percent renders f as "12.34%".
func Percent(f float64) string {
	return Fixed(f, 2) + "%"
}

// OptPercent renders a percentage, or an empty string when absent.
func OptPercent(v models.Optional[float64]) string {
	if !v.Valid {
		return ""
	}
	return Percent(v.Value)
}

// Millis renders a millisecond timing as "12.34 ms".
func Millis(f float64) string {
	return Fixed(f, 2) + " ms"
}

// SecondsAsMillis renders a duration stored in seconds as whole milliseconds.
func SecondsAsMillis(sec float64) string {
	return Count(decimal.NewFromFloat(sec).Mul(decimal.NewFromInt(1000)).Round(0).IntPart()) + " ms"
}
