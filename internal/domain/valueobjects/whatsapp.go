package valueobjects

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidWhatsApp = errors.New("invalid whatsapp number")

var whatsappPattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

var whatsappSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizeWhatsApp strips separators and validates the number:
// an optional leading '+' followed by 8 to 15 digits.
func NormalizeWhatsApp(raw string) (string, error) {
	n := whatsappSeparators.Replace(strings.TrimSpace(raw))
	if !whatsappPattern.MatchString(n) {
		return "", ErrInvalidWhatsApp
	}
	return n, nil
}

// IsValidWhatsApp reports whether raw normalizes to a valid number.
func IsValidWhatsApp(raw string) bool {
	_, err := NormalizeWhatsApp(raw)
	return err == nil
}
