// Package abnf implements the EIP-4361 message grammar. It turns a raw
// multi-line message into a populated Fields record, or fails with a
// diagnostic describing the first grammar violation encountered.
//
// REF: https://eips.ethereum.org/EIPS/eip-4361
package abnf

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// Fields is the structured form of a parsed EIP-4361 message. Timestamp
// fields keep the exact strings found in the message so a re-serialized
// message is byte-identical to its source.
type Fields struct {
	Scheme  string // empty when the authority line carries no scheme
	Domain  string
	Address string

	// Statement is nil when the message has no statement block.
	Statement *string

	URI     url.URL
	Version string
	ChainID int
	Nonce   string

	IssuedAt       string
	ExpirationTime *string
	NotBefore      *string

	RequestID *string
	Resources []url.URL
}

const headerSuffix = " wants you to sign in with your Ethereum account:"

// ParseFields parses a raw message. The minimal well-formed message has
// eight lines: authority, address, separator, URI, Version, Chain ID,
// Nonce and Issued At.
func ParseFields(raw string) (*Fields, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 8 {
		return nil, ErrMessageTooShort
	}

	header := lines[0]
	if !strings.HasSuffix(header, headerSuffix) {
		return nil, ErrInvalidHeader
	}

	authority := strings.TrimSuffix(header, headerSuffix)

	fields := &Fields{}

	if scheme, rest, found := strings.Cut(authority, "://"); found {
		if !isValidScheme(scheme) {
			return nil, ErrInvalidScheme
		}
		fields.Scheme = scheme
		authority = rest
	}

	if !IsValidDomain(authority) {
		return nil, ErrInvalidDomain
	}
	fields.Domain = authority

	address := lines[1]
	if !addressPattern.MatchString(address) {
		return nil, ErrInvalidAddress
	}
	fields.Address = address

	if lines[2] != "" {
		return nil, ErrThirdLineNotEmpty
	}

	startIndex := 3
	if lines[3] != "" && lines[4] == "" {
		statement := lines[3]
		fields.Statement = &statement
		startIndex = 5
	}

	var issuedAt, expirationTime *time.Time

	inResources := false
	for i := startIndex; i < len(lines); i++ {

		line := lines[i]

		if inResources {
			if after, ok := strings.CutPrefix(line, "- "); ok {
				resourceURL, err := url.ParseRequestURI(after)
				if err != nil {
					return nil, errInvalidResource(len(fields.Resources))
				}

				fields.Resources = append(fields.Resources, *resourceURL)
				continue
			} else {
				inResources = false
			}
		}

		if line == "Resources:" {
			inResources = true
			continue
		}

		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ": ")
		if !found {
			// "Request ID:" with an empty value still carries the
			// separator colon but no trailing space.
			if k, ok := strings.CutSuffix(line, ":"); ok && k == "Request ID" {
				empty := ""
				fields.RequestID = &empty
				continue
			}
			return nil, errUnparsableLine(i)
		}

		switch key {
		case "URI":
			uri, err := url.ParseRequestURI(value)
			if err != nil {
				return nil, ErrInvalidURI
			}
			fields.URI = *uri

		case "Version":
			fields.Version = value

		case "Chain ID":
			chainID, err := strconv.Atoi(value)
			if err != nil || chainID <= 0 {
				// REF: https://eips.ethereum.org/EIPS/eip-155
				return nil, ErrInvalidChainID
			}
			fields.ChainID = chainID

		case "Nonce":
			if !noncePattern.MatchString(value) {
				return nil, ErrInvalidNonce
			}
			fields.Nonce = value

		case "Issued At":
			ts, err := iso8601.Parse([]byte(value))
			if err != nil {
				return nil, ErrInvalidIssuedAt
			}
			issuedAt = &ts
			fields.IssuedAt = value

		case "Expiration Time":
			ts, err := iso8601.Parse([]byte(value))
			if err != nil {
				return nil, ErrInvalidExpirationTime
			}
			if issuedAt != nil && issuedAt.After(ts) {
				return nil, ErrIssuedAfterExpiration
			}
			expirationTime = &ts
			fields.ExpirationTime = &value

		case "Not Before":
			ts, err := iso8601.Parse([]byte(value))
			if err != nil {
				return nil, ErrInvalidNotBefore
			}
			if expirationTime != nil && ts.After(*expirationTime) {
				return nil, ErrNotBeforeAfterExpiration
			}
			fields.NotBefore = &value

		case "Request ID":
			fields.RequestID = &value
		}
	}

	if fields.Version != "1" {
		return nil, errUnsupportedVersion(fields.Version)
	}

	if fields.URI.String() == "" {
		return nil, ErrMissingURI
	}

	if fields.ChainID == 0 {
		return nil, ErrMissingChainID
	}

	if fields.Nonce == "" {
		return nil, ErrMissingNonce
	}

	if fields.IssuedAt == "" {
		return nil, ErrMissingIssuedAt
	}

	return fields, nil
}
