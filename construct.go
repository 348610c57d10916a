package siwe

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/web3id/siwe/internal/abnf"
)

// Recognized keys of the InitMessage options record.
var initMessageKeys = []string{
	"scheme",
	"statement",
	"chainId",
	"nonce",
	"issuedAt",
	"expirationTime",
	"notBefore",
	"requestId",
	"resources",
}

// ParseMessage constructs a Message from its canonical text form. The
// parsed fields are copied verbatim; in particular the nonce found in
// the message is never regenerated.
func ParseMessage(raw string) (*Message, error) {
	fields, err := abnf.ParseFields(raw)
	if err != nil {
		return nil, newError(ErrorKindMalformedMessage, "", "").WithInternalError(err)
	}
	return fromFields(fields), nil
}

// InitMessage constructs a Message from explicit fields. The options
// record accepts the optional fields of the data model; unrecognized
// keys are rejected. A missing nonce is generated, a numeric-string
// chainId is converted, and a missing issuedAt resolves to the current
// time, so the Message is fully determined before its first
// serialization.
//
// The assembled message is serialized and re-parsed as a validation
// step: fields that cannot be represented as a valid EIP-4361 message
// (a statement containing a newline, say) fail construction the same
// way an unparsable raw message does.
func InitMessage(domain, address, uri, version string, options map[string]any) (*Message, error) {
	if unknown := UnrecognizedKeys(options, initMessageKeys...); len(unknown) > 0 {
		return nil, newError(ErrorKindInvalidInputKeys, fmt.Sprintf("one of %v", initMessageKeys), fmt.Sprintf("%v", unknown))
	}

	m := &Message{
		domain:  domain,
		address: address,
		version: version,
	}

	parsedURI, err := url.ParseRequestURI(uri)
	if err != nil {
		return nil, newError(ErrorKindMalformedMessage, "", "").WithInternalError(abnf.ErrInvalidURI)
	}
	m.uri = *parsedURI

	if scheme, ok, err := optionalString(options, "scheme"); err != nil {
		return nil, err
	} else if ok {
		m.scheme = &scheme
	}

	if statement, ok, err := optionalString(options, "statement"); err != nil {
		return nil, err
	} else if ok {
		m.statement = &statement
	}

	chainID, err := coerceChainID(options["chainId"])
	if err != nil {
		return nil, err
	}
	m.chainID = chainID

	if nonce, ok, err := optionalString(options, "nonce"); err != nil {
		return nil, err
	} else if ok {
		m.nonce = nonce
	} else {
		m.nonce = GenerateNonce()
	}

	if issuedAt, ok, err := optionalTimestamp(options, "issuedAt"); err != nil {
		return nil, err
	} else if ok {
		m.issuedAt = issuedAt
	} else {
		m.issuedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if expirationTime, ok, err := optionalTimestamp(options, "expirationTime"); err != nil {
		return nil, err
	} else if ok {
		m.expirationTime = &expirationTime
	}

	if notBefore, ok, err := optionalTimestamp(options, "notBefore"); err != nil {
		return nil, err
	} else if ok {
		m.notBefore = &notBefore
	}

	if requestID, ok, err := optionalString(options, "requestId"); err != nil {
		return nil, err
	} else if ok {
		m.requestID = &requestID
	}

	resources, err := coerceResources(options["resources"])
	if err != nil {
		return nil, err
	}
	m.resources = resources

	// Feeding the rendering back through the grammar is what makes the
	// construction invariant hold: every Message that exists
	// round-trips.
	if _, err := abnf.ParseFields(m.String()); err != nil {
		return nil, newError(ErrorKindMalformedMessage, "", "").WithInternalError(err)
	}

	return m, nil
}

func fromFields(fields *abnf.Fields) *Message {
	m := &Message{
		domain:         fields.Domain,
		address:        fields.Address,
		statement:      fields.Statement,
		uri:            fields.URI,
		version:        fields.Version,
		chainID:        fields.ChainID,
		nonce:          fields.Nonce,
		issuedAt:       fields.IssuedAt,
		expirationTime: fields.ExpirationTime,
		notBefore:      fields.NotBefore,
		requestID:      fields.RequestID,
		resources:      fields.Resources,
	}
	if fields.Scheme != "" {
		scheme := fields.Scheme
		m.scheme = &scheme
	}
	return m
}

func optionalString(options map[string]any, key string) (string, bool, error) {
	value, ok := options[key]
	if !ok {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", false, newError(ErrorKindMalformedMessage, "", "").
			WithInternalError(fmt.Errorf("siwe: %s must be a string, got %T", key, value))
	}
	return s, true, nil
}

// optionalTimestamp accepts an ISO-8601 string or a time.Time, keeping
// a string verbatim so serialization reproduces it byte for byte.
func optionalTimestamp(options map[string]any, key string) (string, bool, error) {
	value, ok := options[key]
	if !ok {
		return "", false, nil
	}
	switch ts := value.(type) {
	case string:
		if _, err := iso8601.ParseString(ts); err != nil {
			return "", false, newError(ErrorKindMalformedMessage, "", "").
				WithInternalError(fmt.Errorf("siwe: %s is not a valid ISO8601 timestamp: %w", key, err))
		}
		return ts, true, nil
	case time.Time:
		return ts.UTC().Format(time.RFC3339), true, nil
	default:
		return "", false, newError(ErrorKindMalformedMessage, "", "").
			WithInternalError(fmt.Errorf("siwe: %s must be a string or time.Time, got %T", key, value))
	}
}

// coerceChainID accepts the integer forms a construction record may
// arrive with, including a numeric string and the float64 that JSON
// decoding produces.
func coerceChainID(value any) (int, error) {
	switch chainID := value.(type) {
	case nil:
		return 0, newError(ErrorKindMalformedMessage, "", "").WithInternalError(abnf.ErrMissingChainID)
	case int:
		return chainID, nil
	case int64:
		return int(chainID), nil
	case float64:
		return int(chainID), nil
	case string:
		parsed, err := strconv.Atoi(chainID)
		if err != nil {
			return 0, newError(ErrorKindMalformedMessage, "", "").WithInternalError(abnf.ErrInvalidChainID)
		}
		return parsed, nil
	default:
		return 0, newError(ErrorKindMalformedMessage, "", "").
			WithInternalError(fmt.Errorf("siwe: chainId must be an integer or numeric string, got %T", value))
	}
}

func coerceResources(value any) ([]url.URL, error) {
	switch resources := value.(type) {
	case nil:
		return nil, nil
	case []url.URL:
		ret := make([]url.URL, len(resources))
		copy(ret, resources)
		return ret, nil
	case []string:
		ret := make([]url.URL, 0, len(resources))
		for i, resource := range resources {
			parsed, err := url.ParseRequestURI(resource)
			if err != nil {
				return nil, newError(ErrorKindMalformedMessage, "", "").
					WithInternalError(fmt.Errorf("siwe: resource at position %d has invalid URI", i))
			}
			ret = append(ret, *parsed)
		}
		return ret, nil
	default:
		return nil, newError(ErrorKindMalformedMessage, "", "").
			WithInternalError(fmt.Errorf("siwe: resources must be a list of URIs, got %T", value))
	}
}
