package valueobjects

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("invalid email format")
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Email is a value object holding a normalized, well-formed address.
type Email struct {
	value string
}

// NewEmail creates a validated Email.
func NewEmail(email string) (Email, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if !isValidEmail(email) {
		return Email{}, ErrInvalidEmail
	}

	return Email{value: email}, nil
}

// String returns the address.
func (e Email) String() string {
	return e.value
}

// Domain returns the part after the '@'.
func (e Email) Domain() string {
	at := strings.LastIndexByte(e.value, '@')
	if at < 0 {
		return ""
	}
	return e.value[at+1:]
}

// InDomain reports whether the address belongs to domain or one of its subdomains,
// e.g. "student.uni.ac.ke" is in "uni.ac.ke".
func (e Email) InDomain(domain string) bool {
	domain = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(domain)), "@")
	if domain == "" {
		return false
	}
	d := e.Domain()
	return d == domain || strings.HasSuffix(d, "."+domain)
}

func isValidEmail(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	return emailPattern.MatchString(email)
}
