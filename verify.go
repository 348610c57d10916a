package siwe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/sirupsen/logrus"
)

// VerifyParams are the per-call inputs of Verify. Signature is
// required; the remaining fields are optional binding overrides
// checked against the message's own recorded values.
type VerifyParams struct {
	// Signature is the hex-encoded EIP-191 signature over the
	// prepared message.
	Signature string

	Scheme *string
	Domain *string
	Nonce  *string

	// Time is the instant the message's temporal validity is checked
	// against. Defaults to the current instant.
	Time *time.Time
}

// FallbackFunc is a caller-supplied verification check consulted when
// the signature does not directly recover to the message address. It
// receives the handle to the still-pending contract-wallet proof so it
// can await or race it. Returning (nil, nil) abstains, leaving the
// decision to the contract-wallet proof; any other return is the
// pipeline's terminal result regardless of the proof's outcome.
type FallbackFunc func(ctx context.Context, m *Message, params *VerifyParams, proof *ContractProof) (*VerificationResult, error)

// VerifyOptions configure a single Verify call.
type VerifyOptions struct {
	// SuppressErrors delivers failures as a failed VerificationResult
	// value instead of an error return.
	SuppressErrors bool

	// Provider enables the EIP-1271 contract-wallet check. Without
	// one, a signature that does not recover to the message address
	// can only be rescued by a Fallback.
	Provider Provider

	Fallback FallbackFunc
}

// VerificationResult is the terminal outcome of one Verify call.
type VerificationResult struct {
	Success bool
	Data    *Message
	Error   *Error
}

// Recognized keys of the map forms accepted by VerifyRecord.
var (
	verifyParamsKeys  = []string{"signature", "scheme", "domain", "nonce", "time"}
	verifyOptionsKeys = []string{"suppressExceptions", "provider", "verificationFallback"}
)

var errMissingSignature = errors.New("siwe: signature is required")

// Verify checks that params.Signature legitimately authorizes the
// message's account under the message's binding and temporal
// constraints. Checks run in a fixed order and stop at the first
// failure: binding overrides (scheme, domain, nonce), temporal bounds,
// then signature recovery with a contract-wallet fallback.
//
// Addresses are compared by exact string equality; callers must supply
// consistently EIP-55 checksummed addresses.
//
// The call settles exactly once: with a *VerificationResult on
// success, with an error on failure, or, when options.SuppressErrors
// is set, with a failed *VerificationResult instead of an error.
func (m *Message) Verify(ctx context.Context, params *VerifyParams, options *VerifyOptions) (*VerificationResult, error) {
	if options == nil {
		options = &VerifyOptions{}
	}

	result, err := m.verify(ctx, params, options)
	if err != nil {
		if options.SuppressErrors {
			return &VerificationResult{Data: m, Error: asError(err)}, nil
		}
		return nil, err
	}
	return result, nil
}

// VerifyRecord is the record form of Verify: params and options arrive
// as key-value records and are validated against the recognized key
// sets before conversion, failing with ErrorKindInvalidInputKeys on
// any unknown key. (The typed Verify cannot carry unknown keys, so it
// skips that stage.)
func (m *Message) VerifyRecord(ctx context.Context, params, options map[string]any) (*VerificationResult, error) {
	typedOptions := &VerifyOptions{}
	if suppress, ok := options["suppressExceptions"].(bool); ok {
		typedOptions.SuppressErrors = suppress
	}

	fail := func(verr *Error) (*VerificationResult, error) {
		if typedOptions.SuppressErrors {
			return &VerificationResult{Data: m, Error: verr}, nil
		}
		return nil, verr
	}

	if unknown := UnrecognizedKeys(params, verifyParamsKeys...); len(unknown) > 0 {
		return fail(newError(ErrorKindInvalidInputKeys, fmt.Sprintf("one of %v", verifyParamsKeys), fmt.Sprintf("%v", unknown)))
	}
	if unknown := UnrecognizedKeys(options, verifyOptionsKeys...); len(unknown) > 0 {
		return fail(newError(ErrorKindInvalidInputKeys, fmt.Sprintf("one of %v", verifyOptionsKeys), fmt.Sprintf("%v", unknown)))
	}

	typedParams := &VerifyParams{}
	typedParams.Signature, _ = params["signature"].(string)
	for key, target := range map[string]**string{
		"scheme": &typedParams.Scheme,
		"domain": &typedParams.Domain,
		"nonce":  &typedParams.Nonce,
	} {
		if value, present := params[key]; present {
			s, ok := value.(string)
			if !ok {
				return fail(newError(ErrorKindInvalidInputKeys, key+" as string", fmt.Sprintf("%T", value)))
			}
			*target = &s
		}
	}

	if value, present := params["time"]; present {
		switch ts := value.(type) {
		case time.Time:
			typedParams.Time = &ts
		case string:
			parsed, err := iso8601.ParseString(ts)
			if err != nil {
				return fail(newError(ErrorKindInvalidInputKeys, "time as ISO8601 timestamp", ts))
			}
			typedParams.Time = &parsed
		default:
			return fail(newError(ErrorKindInvalidInputKeys, "time as string or time.Time", fmt.Sprintf("%T", value)))
		}
	}

	if value, present := options["provider"]; present {
		provider, ok := value.(Provider)
		if !ok {
			return fail(newError(ErrorKindInvalidInputKeys, "provider implementing ContractCaller", fmt.Sprintf("%T", value)))
		}
		typedOptions.Provider = provider
	}
	if value, present := options["verificationFallback"]; present {
		fallback, ok := value.(FallbackFunc)
		if !ok {
			fn, fnOK := value.(func(context.Context, *Message, *VerifyParams, *ContractProof) (*VerificationResult, error))
			if !fnOK {
				return fail(newError(ErrorKindInvalidInputKeys, "verificationFallback as FallbackFunc", fmt.Sprintf("%T", value)))
			}
			fallback = fn
		}
		typedOptions.Fallback = fallback
	}

	return m.Verify(ctx, typedParams, typedOptions)
}

// verify runs the ordered checks. Each failing stage returns
// immediately; later stages assume every earlier one passed.
func (m *Message) verify(ctx context.Context, params *VerifyParams, options *VerifyOptions) (*VerificationResult, error) {
	if params == nil || params.Signature == "" {
		return nil, newError(ErrorKindInvalidSignature, m.address, "").WithInternalError(errMissingSignature)
	}

	// Binding checks against the caller's expected values
	if params.Scheme != nil && !optionalEquals(m.scheme, *params.Scheme) {
		return nil, newError(ErrorKindSchemeMismatch, *params.Scheme, stringOrEmpty(m.scheme))
	}
	if params.Domain != nil && *params.Domain != m.domain {
		return nil, newError(ErrorKindDomainMismatch, *params.Domain, m.domain)
	}
	if params.Nonce != nil && *params.Nonce != m.nonce {
		return nil, newError(ErrorKindNonceMismatch, *params.Nonce, m.nonce)
	}

	checkTime := time.Now().UTC()
	if params.Time != nil {
		checkTime = *params.Time
	}

	// The expiration boundary instant counts as expired; the
	// not-before boundary instant counts as valid.
	if expirationTime := m.getExpirationTime(); expirationTime != nil && !checkTime.Before(*expirationTime) {
		return nil, newError(ErrorKindExpiredMessage, "before "+*m.expirationTime, checkTime.Format(time.RFC3339))
	}
	if notBefore := m.getNotBefore(); notBefore != nil && checkTime.Before(*notBefore) {
		return nil, newError(ErrorKindNotYetValidMessage, "at or after "+*m.notBefore, checkTime.Format(time.RFC3339))
	}

	prepared, err := m.PrepareMessage()
	if err != nil {
		return nil, newError(ErrorKindMalformedMessage, "", "").WithInternalError(err)
	}

	// Recovery failure is not fatal: contract wallets produce
	// signatures that EOA recovery cannot interpret.
	recovered := ""
	if addr, err := RecoverAddress(prepared, params.Signature); err != nil {
		logrus.WithError(err).Warn("siwe: address recovery failed, deferring to contract-wallet check")
	} else {
		recovered = addr.Hex()
	}

	if recovered == m.address {
		return &VerificationResult{Success: true, Data: m}, nil
	}

	return m.verifyContractWallet(ctx, params, options, prepared, recovered)
}

// verifyContractWallet races the two remaining candidate proofs: the
// EIP-1271 contract-wallet check and the caller-supplied fallback. The
// pipeline joins on both before settling; a fallback response, success
// or failure, takes precedence over the contract-wallet outcome.
func (m *Message) verifyContractWallet(ctx context.Context, params *VerifyParams, options *VerifyOptions, prepared, recovered string) (*VerificationResult, error) {
	proof := newContractProof()
	go func() {
		if options.Provider == nil {
			proof.settle(false, errNoProvider)
			return
		}
		valid, err := IsValidContractSignature(ctx, options.Provider, m.address, prepared, params.Signature)
		proof.settle(valid, err)
	}()

	var fallbackResult *VerificationResult
	var fallbackErr error
	if options.Fallback != nil {
		fallbackResult, fallbackErr = options.Fallback(ctx, m, params, proof)
	}

	valid, proofErr := proof.Wait(ctx)

	if fallbackErr != nil {
		return nil, fallbackErr
	}
	if fallbackResult != nil {
		if fallbackResult.Success {
			return fallbackResult, nil
		}
		if fallbackResult.Error != nil {
			return nil, fallbackResult.Error
		}
		return nil, newError(ErrorKindInvalidSignature, m.address, recovered)
	}

	if valid {
		return &VerificationResult{Success: true, Data: m}, nil
	}

	verr := newError(ErrorKindInvalidSignature, m.address, recovered)
	if proofErr != nil && !errors.Is(proofErr, errNoProvider) {
		verr = verr.WithInternalError(proofErr)
	}
	return nil, verr
}

var errNoProvider = errors.New("siwe: no provider configured for contract-wallet check")

// ContractProof is the handle to an in-flight contract-wallet check.
// It settles exactly once; results arriving after settlement are
// impossible by construction since a single goroutine settles it.
type ContractProof struct {
	done  chan struct{}
	valid bool
	err   error
}

func newContractProof() *ContractProof {
	return &ContractProof{done: make(chan struct{})}
}

func (p *ContractProof) settle(valid bool, err error) {
	p.valid = valid
	p.err = err
	close(p.done)
}

// Done is closed once the check has settled.
func (p *ContractProof) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the check settles or ctx is done. A false result
// with a nil error means the contract rejected the signature; a
// non-nil error means the check itself could not be performed.
func (p *ContractProof) Wait(ctx context.Context) (bool, error) {
	select {
	case <-p.done:
		return p.valid, p.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func asError(err error) *Error {
	var verr *Error
	if errors.As(err, &verr) {
		return verr
	}
	return newError(ErrorKindInvalidSignature, "", "").WithInternalError(err)
}

func optionalEquals(value *string, expected string) bool {
	return value != nil && *value == expected
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
