package common

import (
	"fmt"
	"strings"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// DigitsOnly strips everything but 0-9
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeUSPhone reduces a US number to its 10 national digits.
// Accepts 10 digits, or 11 digits with a leading country code 1.
func NormalizeUSPhone(phone string) (string, bool) {
	d := DigitsOnly(phone)
	switch {
	case len(d) == 10:
		return d, true
	case len(d) == 11 && d[0] == '1':
		return d[1:], true
	}
	return "", false
}

// FormatPhoneE164 formats a stored phone as +1XXXXXXXXXX for SMS providers
func FormatPhoneE164(phone string) (string, bool) {
	d, ok := NormalizeUSPhone(phone)
	if !ok {
		return "", false
	}
	return "+1" + d, true
}

// NormalizeEmail lowercases and trims
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ContainsString reports whether s is in list
func ContainsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
