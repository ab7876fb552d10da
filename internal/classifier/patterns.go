package classifier

import (
	"regexp"
	"strings"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// Detected data type identifiers. Custom database patterns add to this
// set with their own names.
const (
	TypeNationalID   = "national-id"
	TypeForeignID    = "foreign-id"
	TypeCreditCard   = "credit-card"
	TypeBankAccount  = "bank-account"
	TypeSocialSecNum = "social-security-number"
	TypeEmail        = "email"
	TypePhone        = "phone"
)

const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

// stripSeparators removes the formatting noise tolerated inside numeric
// identifiers (spaces, dashes, dots).
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return -1
		}
		return r
	}, s)
}

// validDNI checks the control letter of a Spanish DNI (number mod 23).
func validDNI(match string) bool {
	s := stripSeparators(match)
	if len(s) != 9 {
		return false
	}
	n := 0
	for _, r := range s[:8] {
		n = n*10 + int(r-'0')
	}
	letter := s[8]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	return dniLetters[n%23] == letter
}

// validNIE checks a Spanish NIE: the leading letter maps to a digit
// (X=0, Y=1, Z=2), then the DNI control-letter rule applies.
func validNIE(match string) bool {
	s := stripSeparators(match)
	if len(s) != 9 {
		return false
	}
	var prefix byte
	switch s[0] {
	case 'X', 'x':
		prefix = '0'
	case 'Y', 'y':
		prefix = '1'
	case 'Z', 'z':
		prefix = '2'
	default:
		return false
	}
	return validDNI(string(prefix) + s[1:])
}

// validLuhn runs the Luhn checksum over a separator-tolerant card number.
func validLuhn(match string) bool {
	s := stripSeparators(match)
	if len(s) < 13 || len(s) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		d := int(s[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validIBAN runs the ISO 13616 mod-97 check over a Spanish IBAN.
func validIBAN(match string) bool {
	s := strings.ToUpper(stripSeparators(match))
	if len(s) != 24 {
		return false
	}
	// Move the country code and check digits to the end, letters become
	// two-digit numbers (E=14, S=28), then the whole number mod 97 == 1.
	rearranged := s[4:] + "1428" + s[2:4]
	rem := 0
	for _, r := range rearranged {
		if r < '0' || r > '9' {
			return false
		}
		rem = (rem*10 + int(r-'0')) % 97
	}
	return rem == 1
}

// validSSN checks the two control digits of a Spanish social security
// number (first ten digits mod 97).
func validSSN(match string) bool {
	s := stripSeparators(match)
	if len(s) != 12 {
		return false
	}
	n := 0
	for _, r := range s[:10] {
		n = n*10 + int(r-'0')
	}
	check := int(s[10]-'0')*10 + int(s[11]-'0')
	return n%97 == check
}

// builtinMatchers is the fixed jurisdiction-specific pattern set. Order
// matters only as a tie-breaker when two matchers claim the same span:
// earlier entries win.
func builtinMatchers() []Matcher {
	return []Matcher{
		{
			Type:     TypeBankAccount,
			Level:    models.LevelUltraSensitive,
			Pattern:  regexp.MustCompile(`\b[Ee][Ss]\d{2}(?:[ .-]?\d{4}){5}\b`),
			Validate: validIBAN,
		},
		{
			Type:     TypeCreditCard,
			Level:    models.LevelUltraSensitive,
			Pattern:  regexp.MustCompile(`\b(?:\d[ .-]?){12,18}\d\b`),
			Validate: validLuhn,
		},
		{
			Type:     TypeSocialSecNum,
			Level:    models.LevelConfidential,
			Pattern:  regexp.MustCompile(`\b\d{2}[ .-]?\d{8}[ .-]?\d{2}\b`),
			Validate: validSSN,
		},
		{
			Type:     TypeNationalID,
			Level:    models.LevelConfidential,
			Pattern:  regexp.MustCompile(`\b\d{8}[ -]?[A-Za-z]\b`),
			Validate: validDNI,
		},
		{
			Type:     TypeForeignID,
			Level:    models.LevelConfidential,
			Pattern:  regexp.MustCompile(`\b[XYZxyz][ -]?\d{7}[ -]?[A-Za-z]\b`),
			Validate: validNIE,
		},
		{
			Type:    TypeEmail,
			Level:   models.LevelInternal,
			Pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		},
		{
			Type:    TypePhone,
			Level:   models.LevelInternal,
			Pattern: regexp.MustCompile(`(?:\+34[ -]?)?\b[6789]\d{2}[ .-]?\d{3}[ .-]?\d{3}\b`),
		},
	}
}
