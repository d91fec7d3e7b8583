// Package validate provides hostname syntax checks.
package validate

import (
	"net/netip"
	"regexp"
)

// domainRegexp validates RFC-compliant hostnames.
var domainRegexp = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// IsDomain reports whether s is a valid RFC-compliant hostname.
func IsDomain(s string) bool {
	return domainRegexp.MatchString(s)
}

// IsIP reports whether s is a literal IPv4 or IPv6 address.
func IsIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}
