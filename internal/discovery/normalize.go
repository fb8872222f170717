package discovery

import "strings"

// Exchange suffixes some feeds append to tickers ("AAPL.US"). Only these
// are stripped; class shares like BRK.B keep their dot.
var exchangeSuffixes = map[string]string{
	"US":     "US",
	"NYSE":   "NYSE",
	"NASDAQ": "NASDAQ",
	"AMEX":   "AMEX",
	"NYS":    "NYSE",
	"NAS":    "NASDAQ",
}

const maxSymbolLen = 12

// NormalizeSymbol canonicalizes a raw ticker: trims whitespace, upper-cases,
// and strips a known exchange suffix. It returns the cleaned symbol, the
// exchange implied by the suffix (empty if none), and whether the input is
// usable at all. Malformed tickers are skipped upstream with a warning.
func NormalizeSymbol(raw string) (symbol, exchange string, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", "", false
	}

	if i := strings.LastIndexAny(s, ".:"); i > 0 {
		if exch, known := exchangeSuffixes[s[i+1:]]; known {
			exchange = exch
			s = s[:i]
		}
	}

	if len(s) > maxSymbolLen || !validSymbol(s) {
		return "", "", false
	}
	return s, exchange, true
}

// validSymbol accepts tickers made of A-Z, 0-9, dot and hyphen.
func validSymbol(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}
