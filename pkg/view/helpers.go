package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyFromCents renders an amount in minor units with the currency symbol.
// Rupees use lakh grouping: 123456789 paise -> "₹12,34,567.89".
func MoneyFromCents(cents int, currency string) string {
	d := decimal.New(int64(cents), -2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	if currency == "INR" || currency == "" {
		whole = groupIndian(whole)
	} else {
		whole = groupThousands(whole)
	}

	out := currencySymbol(currency) + whole + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// Amount is the grouped INR amount without a symbol, for fonts that lack ₹.
func Amount(paise int) string {
	s := MoneyFromCents(paise, "INR")
	return strings.Replace(s, "₹", "", 1)
}

// Rupees is MoneyFromCents for INR.
func Rupees(paise int) string { return MoneyFromCents(paise, "INR") }

// Decimal is the plain major-unit amount, for spreadsheets and widgets.
func Decimal(cents int) decimal.Decimal { return decimal.New(int64(cents), -2) }

func groupIndian(s string) string {
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func groupThousands(s string) string {
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

func currencySymbol(code string) string {
	switch code {
	case "INR", "":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return code + " "
	}
}

// DiscountLabel is the "x% off" badge text, empty when there is no discount.
func DiscountLabel(percent int) string {
	if percent <= 0 {
		return ""
	}
	return itoa(percent) + "% off"
}

func itoa(n int) string { return decimal.NewFromInt(int64(n)).String() }

// PaymentLabel is the shopper-facing name of a payment choice.
func PaymentLabel(method, manualMode string) string {
	if method == "online" {
		return "Online (Razorpay)"
	}
	switch manualMode {
	case "upi":
		return "UPI transfer"
	case "bank":
		return "Bank transfer"
	case "cod":
		return "Cash on delivery"
	}
	return "Manual payment"
}

// StatusLabel turns a status code such as partially_refunded into words.
func StatusLabel(status string) string {
	if status == "" {
		return ""
	}
	s := strings.ReplaceAll(status, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
