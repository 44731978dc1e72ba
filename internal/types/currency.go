package types

import "strings"

// currencySymbols maps lowercase ISO 4217 codes to display symbols
var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"chf": "CHF",
	"sek": "kr",
	"nzd": "NZ$",
	"jpy": "¥",
	"inr": "₹",
	"brl": "R$",
	"pln": "zł",
}

// NormalizeCurrency lowercases and trims a currency code. Plans store codes in lowercase.
func NormalizeCurrency(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	code = NormalizeCurrency(code)
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	return strings.ToUpper(code)
}
