// Package numutil turns numbers scraped off of html into decimals.
//
// Scraped text carries formatting artifacts: thousands separators, line breaks and
// tab runs left over from the markup's indentation, currency and percent signs.
// Every parse either yields the exact decimal value or fails, a number that could
// not be read is never treated as zero.
package numutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmpty    = errors.New("empty number")
	ErrNegative = errors.New("negative quantity")
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Clean removes whitespace (including `\r\n\t` runs) and thousands separators.
func Clean(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, ",", "")
}

// StripSymbols removes the currency and percent signs the site decorates values with.
// Accounting style negatives, ex. "($1.50)", become "-1.50".
func StripSymbols(text string) string {
	text = Clean(text)
	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}
	text = strings.ReplaceAll(text, "$", "")
	text = strings.TrimSuffix(text, "%")
	if negative && !strings.HasPrefix(text, "-") {
		text = "-" + text
	}
	return text
}

// ParseSigned parses a decimal that may be negative, like a return or a gain.
func ParseSigned(text string) (decimal.Decimal, error) {
	cleaned := Clean(text)
	if cleaned == "" {
		return decimal.Decimal{}, ErrEmpty
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", text, err)
	}
	return d, nil
}

// ParseQuantity parses a decimal that must be non-negative, like a price, a share count
// or an account total.
func ParseQuantity(text string) (decimal.Decimal, error) {
	d, err := ParseSigned(text)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", text, ErrNegative)
	}
	return d, nil
}

// ParseMoney is ParseSigned for display values carrying currency or percent signs.
func ParseMoney(text string) (decimal.Decimal, error) {
	d, err := ParseSigned(StripSymbols(text))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("money %q: %w", text, err)
	}
	return d, nil
}

// ParseMoneyQuantity is ParseQuantity for display values carrying currency signs.
func ParseMoneyQuantity(text string) (decimal.Decimal, error) {
	d, err := ParseQuantity(StripSymbols(text))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("money %q: %w", text, err)
	}
	return d, nil
}
