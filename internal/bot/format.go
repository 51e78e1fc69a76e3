package bot

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders value with two decimals and thousands separators,
// as "$1,234.50" or, without prefix, "1,234.50 VELO".
func FormatCurrency(value float64, symbol string, prefix bool) string {
	v := printer.Sprintf("%.2f", value)
	if prefix {
		return symbol + v
	}
	return v + " " + symbol
}

// FormatPercentage renders value as "12.34 %".
func FormatPercentage(value float64) string {
	return printer.Sprintf("%.2f", value) + " %"
}

// AmountToK renders 2500 as "2.5K".
func AmountToK(amount float64) string {
	return roundTo2(amount/1_000) + "K"
}

// AmountToM renders 2500000 as "2.5M".
func AmountToM(amount float64) string {
	return roundTo2(amount/1_000_000) + "M"
}

func roundTo2(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// AppURL joins base and path and appends params as a sorted query string.
func AppURL(base, path string, params map[string]string) string {
	out := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) == 0 {
		return out
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return out + "?" + values.Encode()
}
