package abnf

import (
	"regexp"
)

var (
	domainPattern  = regexp.MustCompile(`^(localhost|(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})(?::\d{1,5})?$`)
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*$`)
	addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	noncePattern   = regexp.MustCompile(`^[a-zA-Z0-9]{8,}$`)
)

func IsValidDomain(domain string) bool {
	return domainPattern.MatchString(domain)
}

func isValidScheme(scheme string) bool {
	return schemePattern.MatchString(scheme)
}
