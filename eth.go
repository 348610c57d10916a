package siwe

import (
	"context"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	pkgerrors "github.com/pkg/errors"
)

// Provider is the read-only chain access needed for EIP-1271
// contract-wallet checks. *ethclient.Client satisfies it.
type Provider = ethereum.ContractCaller

var errSignatureLength = pkgerrors.New("siwe: signature must be 65 bytes")

// RecoverAddress recovers the signer address from an EIP-191
// personal-message signature over message. signature is a hex string
// of the 65-byte [R || S || V] form, with V in {0,1} or {27,28}.
//
// The returned address renders as an EIP-55 checksummed string via
// common.Address.Hex.
func RecoverAddress(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, pkgerrors.Wrap(err, "siwe: signature is not a valid hex string")
	}
	if len(sig) != 65 {
		return common.Address{}, errSignatureLength
	}

	// Normalize V: wallets use 27/28, ecrecover expects 0/1
	sigCopy := make([]byte, 65)
	copy(sigCopy, sig)
	if sigCopy[64] >= 27 {
		sigCopy[64] -= 27
	}

	hash := accounts.TextHash([]byte(message))

	pubKey, err := crypto.SigToPub(hash, sigCopy)
	if err != nil {
		return common.Address{}, pkgerrors.Wrap(err, "siwe: failed to recover public key")
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// EIP-1271: isValidSignature(bytes32,bytes) returns the magic value
// 0x1626ba7e when the contract account considers the signature valid.
// REF: https://eips.ethereum.org/EIPS/eip-1271
const erc1271JSON = `[{"name":"isValidSignature","type":"function","stateMutability":"view","inputs":[{"name":"_hash","type":"bytes32"},{"name":"_signature","type":"bytes"}],"outputs":[{"name":"magicValue","type":"bytes4"}]}]`

var erc1271Magic = [4]byte{0x16, 0x26, 0xba, 0x7e}

var erc1271ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc1271JSON))
	if err != nil {
		panic(err.Error())
	}
	return parsed
}()

// IsValidContractSignature asks the contract account at address
// whether signature is valid for the EIP-191 hash of message, per
// EIP-1271. A semantically-invalid signature returns (false, nil);
// provider and call failures are returned as errors so callers can
// tell a rejection from a network problem.
func IsValidContractSignature(ctx context.Context, provider Provider, address, message, signature string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, pkgerrors.Errorf("siwe: %q is not a valid Ethereum address", address)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, pkgerrors.Wrap(err, "siwe: signature is not a valid hex string")
	}

	var hash [32]byte
	copy(hash[:], accounts.TextHash([]byte(message)))

	data, err := erc1271ABI.Pack("isValidSignature", hash, sig)
	if err != nil {
		return false, pkgerrors.Wrap(err, "siwe: failed to encode isValidSignature call")
	}

	to := common.HexToAddress(address)
	ret, err := provider.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return false, pkgerrors.Wrap(err, "siwe: isValidSignature call failed")
	}

	out, err := erc1271ABI.Unpack("isValidSignature", ret)
	if err != nil {
		return false, pkgerrors.Wrap(err, "siwe: failed to decode isValidSignature return")
	}

	magic, ok := out[0].([4]byte)
	if !ok {
		return false, pkgerrors.New("siwe: unexpected isValidSignature return type")
	}
	return magic == erc1271Magic, nil
}
