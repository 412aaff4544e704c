package util

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

// NormalizeCategory lowercases and collapses whitespace.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// OtherNumber returns the plural of a singular category name and the
// singular of a plural one, the way shoppers mistype them: ring and rings.
func OtherNumber(name string) string {
	switch {
	case name == "":
		return ""
	case strings.HasSuffix(name, "ss"):
		return name + "es"
	case strings.HasSuffix(name, "s") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name + "s"
	}
}

// MaskEmail keeps the first rune of the local part: j***@example.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local := []rune(email[:at])
	return string(local[0]) + "***" + email[at:]
}
