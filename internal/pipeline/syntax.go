package pipeline

import "regexp"

// addressPattern requires a local part, a domain label and at least one dot in
// the domain, none of them containing whitespace or "@".
var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsSyntacticallyValid reports whether address has the shape local@domain.tld.
func IsSyntacticallyValid(address string) bool {
	return addressPattern.MatchString(address)
}
