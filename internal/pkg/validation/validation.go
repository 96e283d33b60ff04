package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Usernames: 3-32 chars of letters, digits, underscore, dot, hyphen.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,32}$`)

// Tickers are stored upper-case: 1-10 chars of letters, digits, dot, hyphen (BRK.B, RDS-A).
var tickerRe = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// TradeDateLayout is the only accepted trade date format.
const TradeDateLayout = "2006-01-02"

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// IsValidPassword requires 8 to 72 bytes with a letter, a digit and a special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 || len(password) > MaxPasswordBytes {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// IsValidTicker expects an already normalized ticker.
func IsValidTicker(ticker string) bool {
	return tickerRe.MatchString(ticker)
}

func IsValidTradeDate(date string) bool {
	_, err := time.Parse(TradeDateLayout, date)
	return err == nil
}
