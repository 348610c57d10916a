// Package siwe implements the EIP-4361 "Sign-In with Ethereum" message
// lifecycle: building the canonical human-readable message and
// verifying that a signature over it authorizes the claimed account.
//
// The package does not store or transmit messages and owns no chain
// connectivity; an on-chain provider for EIP-1271 contract-wallet
// checks is injected by the caller per verification call.
//
// REF: https://eips.ethereum.org/EIPS/eip-4361
package siwe

import (
	"net/url"
	"time"

	"github.com/relvacode/iso8601"
)

// Message is an immutable EIP-4361 message. Construct one with
// ParseMessage or InitMessage; every Message that exists has passed
// the grammar and re-serializes losslessly.
//
// Timestamp fields are kept as the ISO-8601 strings that appear in the
// message text so serialization never reformats them.
type Message struct {
	scheme  *string
	domain  string
	address string

	statement *string

	uri     url.URL
	version string
	chainID int
	nonce   string

	issuedAt       string
	expirationTime *string
	notBefore      *string

	requestID *string
	resources []url.URL
}

func (m *Message) GetScheme() *string {
	return copyOptional(m.scheme)
}

func (m *Message) GetDomain() string {
	return m.domain
}

// GetAddress returns the account identifier exactly as it appears in
// the message. Addresses are compared by exact string equality
// throughout this package; callers must supply EIP-55 checksummed
// addresses.
func (m *Message) GetAddress() string {
	return m.address
}

func (m *Message) GetStatement() *string {
	return copyOptional(m.statement)
}

func (m *Message) GetURI() url.URL {
	return m.uri
}

func (m *Message) GetVersion() string {
	return m.version
}

func (m *Message) GetChainID() int {
	return m.chainID
}

func (m *Message) GetNonce() string {
	return m.nonce
}

func (m *Message) GetIssuedAt() string {
	return m.issuedAt
}

func (m *Message) GetExpirationTime() *string {
	return copyOptional(m.expirationTime)
}

func (m *Message) GetNotBefore() *string {
	return copyOptional(m.notBefore)
}

func (m *Message) GetRequestID() *string {
	return copyOptional(m.requestID)
}

func (m *Message) GetResources() []url.URL {
	if m.resources == nil {
		return nil
	}
	resources := make([]url.URL, len(m.resources))
	copy(resources, m.resources)
	return resources
}

// getExpirationTime returns the parsed expiration instant, or nil when
// the message has none. The string was validated at construction, so
// parsing cannot fail here.
func (m *Message) getExpirationTime() *time.Time {
	return parseOptionalTime(m.expirationTime)
}

func (m *Message) getNotBefore() *time.Time {
	return parseOptionalTime(m.notBefore)
}

func copyOptional(s *string) *string {
	if s == nil {
		return nil
	}
	ret := *s
	return &ret
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	ts, err := iso8601.ParseString(*s)
	if err != nil {
		return nil
	}
	return &ts
}
