// Package referralcode generates and normalizes user referral codes of the
// form REF-<NAME>-<6digits>. Codes are stored uppercase and compared
// case-insensitively.
package referralcode

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode"
)

const (
	prefix    = "REF"
	nameLen   = 4
	digitsLen = 6
)

// Generate builds a fresh code from the user's name. The caller is
// responsible for retrying on the rare unique-index collision.
func Generate(name string) (string, error) {
	buf := make([]byte, digitsLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random digits: %w", err)
	}
	for i := range buf {
		buf[i] = '0' + buf[i]%10
	}
	return fmt.Sprintf("%s-%s-%s", prefix, namePart(name), buf), nil
}

// Normalize uppercases and trims a user-supplied code before lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// namePart takes the first letters of the name, uppercased and padded with
// X to a fixed width so codes line up visually.
func namePart(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() == nameLen {
			break
		}
		if r >= 'a' && r <= 'z' {
			r = unicode.ToUpper(r)
		}
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	for b.Len() < nameLen {
		b.WriteByte('X')
	}
	return b.String()
}
