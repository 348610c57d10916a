package siwe

import (
	"crypto/rand"
	"math/big"
)

const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NonceLength is the length of generated nonces. The EIP-4361 grammar
// requires at least 8 alphanumeric characters.
const NonceLength = 16

// GenerateNonce creates a new random alphanumeric nonce.
func GenerateNonce() string {
	alphabetLen := big.NewInt(int64(len(nonceAlphabet)))
	b := make([]byte, NonceLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			panic(err.Error()) // rand should never fail
		}
		b[i] = nonceAlphabet[n.Int64()]
	}
	return string(b)
}
