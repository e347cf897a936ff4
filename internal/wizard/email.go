package wizard

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// IsValidEmail reports whether s has the shape local@domain.tld. The check is
// syntactic only and case-insensitive.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.ToLower(s))
}
