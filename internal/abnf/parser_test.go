package abnf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const validBody = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com/login\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z"

func TestParseFieldsNegative(t *testing.T) {
	negativeExamples := []struct {
		example string
		error   error
	}{
		{
			example: "",
			error:   ErrMessageTooShort,
		},
		{
			example: "\n\n\n\n\n\n",
			error:   ErrMessageTooShort,
		},
		{
			example: "domain.com whatever\n\n\n\n\n\n\n",
			error:   ErrInvalidHeader,
		},
		{
			example: "1http://domain.com wants you to sign in with your Ethereum account:\n" + validBody,
			error:   ErrInvalidScheme,
		},
		{
			example: "******* wants you to sign in with your Ethereum account:\n" + validBody,
			error:   ErrInvalidDomain,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n***************************************\n\n\n\n\n\n\n",
			error:   ErrInvalidAddress,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\nURI: https://domain.com\n\n\n\n\n\n",
			error:   ErrThirdLineNotEmpty,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nStatement\n\nNot Parsable\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z",
			error:   errUnparsableLine(5),
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: ***\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z",
			error:   ErrInvalidURI,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 2\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z",
			error:   errUnsupportedVersion("2"),
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: mainnet\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z",
			error:   ErrInvalidChainID,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: -1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z",
			error:   ErrInvalidChainID,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: short\nIssued At: 2025-01-01T00:00:00Z",
			error:   ErrInvalidNonce,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: not-a-timestamp",
			error:   ErrInvalidIssuedAt,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z\nExpiration Time: not-a-timestamp",
			error:   ErrInvalidExpirationTime,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z\nNot Before: not-a-timestamp",
			error:   ErrInvalidNotBefore,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z\n",
			error:   ErrMissingURI,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z\n",
			error:   ErrMissingChainID,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nIssued At: 2025-01-01T00:00:00Z\n",
			error:   ErrMissingNonce,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nResources:\n- https://domain.com/r",
			error:   ErrMissingIssuedAt,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-02T00:00:00Z\nExpiration Time: 2025-01-01T00:00:00Z",
			error:   ErrIssuedAfterExpiration,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z\nExpiration Time: 2025-01-02T00:00:00Z\nNot Before: 2025-01-03T00:00:00Z",
			error:   ErrNotBeforeAfterExpiration,
		},
		{
			example: "domain.com wants you to sign in with your Ethereum account:\n0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n\nURI: https://domain.com\nVersion: 1\nChain ID: 1\nNonce: abcdefgh\nIssued At: 2025-01-01T00:00:00Z\nResources:\n- https://domain.com/r\n- ***",
			error:   errInvalidResource(1),
		},
	}

	for i, example := range negativeExamples {
		t.Run(fmt.Sprintf("negative-%d", i), func(t *testing.T) {
			fields, err := ParseFields(example.example)
			require.Nil(t, fields)
			require.Equal(t, example.error.Error(), err.Error())
		})
	}
}

func TestParseFieldsComplete(t *testing.T) {
	raw := "https://service.example.com wants you to sign in with your Ethereum account:\n" +
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\n" +
		"\n" +
		"I accept the ServiceOrg Terms of Service\n" +
		"\n" +
		"URI: https://service.example.com/login\n" +
		"Version: 1\n" +
		"Chain ID: 137\n" +
		"Nonce: 32891756\n" +
		"Issued At: 2021-09-30T16:25:24Z\n" +
		"Expiration Time: 2021-10-30T16:25:24Z\n" +
		"Not Before: 2021-09-29T16:25:24Z\n" +
		"Request ID: request-123\n" +
		"Resources:\n" +
		"- ipfs://bafybeiemxf5abjwjbikoz4mc3a3dla6ual3jsgpdr4cjr3oz3evfyavhwq/\n" +
		"- https://example.com/my-web2-claim.json"

	fields, err := ParseFields(raw)
	require.NoError(t, err)

	require.Equal(t, "https", fields.Scheme)
	require.Equal(t, "service.example.com", fields.Domain)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", fields.Address)
	require.NotNil(t, fields.Statement)
	require.Equal(t, "I accept the ServiceOrg Terms of Service", *fields.Statement)
	require.Equal(t, "https://service.example.com/login", fields.URI.String())
	require.Equal(t, "1", fields.Version)
	require.Equal(t, 137, fields.ChainID)
	require.Equal(t, "32891756", fields.Nonce)
	require.Equal(t, "2021-09-30T16:25:24Z", fields.IssuedAt)
	require.NotNil(t, fields.ExpirationTime)
	require.Equal(t, "2021-10-30T16:25:24Z", *fields.ExpirationTime)
	require.NotNil(t, fields.NotBefore)
	require.Equal(t, "2021-09-29T16:25:24Z", *fields.NotBefore)
	require.NotNil(t, fields.RequestID)
	require.Equal(t, "request-123", *fields.RequestID)
	require.Len(t, fields.Resources, 2)
	require.Equal(t, "ipfs://bafybeiemxf5abjwjbikoz4mc3a3dla6ual3jsgpdr4cjr3oz3evfyavhwq/", fields.Resources[0].String())
	require.Equal(t, "https://example.com/my-web2-claim.json", fields.Resources[1].String())
}

func TestParseFieldsMinimal(t *testing.T) {
	raw := "domain.com wants you to sign in with your Ethereum account:\n" + validBody

	fields, err := ParseFields(raw)
	require.NoError(t, err)

	require.Empty(t, fields.Scheme)
	require.Equal(t, "domain.com", fields.Domain)
	require.Nil(t, fields.Statement)
	require.Nil(t, fields.ExpirationTime)
	require.Nil(t, fields.NotBefore)
	require.Nil(t, fields.RequestID)
	require.Empty(t, fields.Resources)
}

func TestIsValidDomain(t *testing.T) {
	for domain, valid := range map[string]bool{
		"domain.com":      true,
		"sub.domain.com":  true,
		"localhost":       true,
		"localhost:3000":  true,
		"domain.com:8080": true,
		"*******":         false,
		"domain":          false,
		"":                false,
	} {
		require.Equal(t, valid, IsValidDomain(domain), "domain %q", domain)
	}
}
