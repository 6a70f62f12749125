package core

import "strings"

// currencyAliases maps exchange-reported codes to their canonical form.
// The table mirrors the common substitutions used across venue feeds.
var currencyAliases = map[string]string{
	"XBT": "BTC",
	"BCC": "BCH",
	"DRK": "DASH",
}

// NormalizeCurrencyCode canonicalizes an exchange-reported currency code:
// uppercase plus alias substitution. Unknown codes pass through uppercased.
func NormalizeCurrencyCode(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if canonical, ok := currencyAliases[upper]; ok {
		return canonical
	}
	return upper
}
