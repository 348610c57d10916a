package siwe

import (
	"fmt"
	"strings"
)

// String renders the message in the canonical EIP-4361 text form. It
// is a pure function of the message fields: all defaults (nonce,
// issued-at) were resolved at construction, so repeated calls return
// the same bytes.
func (m *Message) String() string {
	var lines []string

	// 1) Authority request line
	if m.scheme != nil {
		lines = append(lines, fmt.Sprintf("%s://%s%s", *m.scheme, m.domain, headerSuffix))
	} else {
		lines = append(lines, m.domain+headerSuffix)
	}

	// 2) Address
	lines = append(lines, m.address)

	// 3) Separator and optional statement. An explicit empty statement
	// still emits its own line; presence is tracked, not emptiness.
	lines = append(lines, "")
	if m.statement != nil {
		lines = append(lines, *m.statement, "")
	}

	// 4) Required fields
	lines = append(lines,
		"URI: "+m.uri.String(),
		"Version: "+m.version,
		fmt.Sprintf("Chain ID: %d", m.chainID),
		"Nonce: "+m.nonce,
		"Issued At: "+m.issuedAt,
	)

	// 5) Optional fields, in grammar order
	if m.expirationTime != nil {
		lines = append(lines, "Expiration Time: "+*m.expirationTime)
	}
	if m.notBefore != nil {
		lines = append(lines, "Not Before: "+*m.notBefore)
	}
	if m.requestID != nil {
		lines = append(lines, "Request ID: "+*m.requestID)
	}
	if len(m.resources) > 0 {
		lines = append(lines, "Resources:")
		for _, resource := range m.resources {
			lines = append(lines, "- "+resource.String())
		}
	}

	return strings.Join(lines, "\n")
}

const headerSuffix = " wants you to sign in with your Ethereum account:"

// PrepareMessage returns the exact text a wallet signs for this
// message. It dispatches on the message version; every version defined
// so far renders through the same canonical serializer, the seam
// exists so a future version can plug in its own rendering without
// touching the verification pipeline.
func (m *Message) PrepareMessage() (string, error) {
	switch m.version {
	default:
		return m.String(), nil
	}
}
