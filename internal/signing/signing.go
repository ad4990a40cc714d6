// Package signing computes and verifies the HMAC signatures used by the
// payment gateways. All signatures are lowercase hex over a canonical
// key=value string.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"net/url"
	"sort"
	"strings"
)

// Algorithm selects the HMAC hash function
type Algorithm string

const (
	HMACSHA256 Algorithm = "hmac-sha256"
	HMACSHA512 Algorithm = "hmac-sha512"
)

var (
	ErrSecretMissing        = errors.New("signing: secret is empty")
	ErrAlgorithmUnsupported = errors.New("signing: unsupported algorithm")
	ErrSignatureMismatch    = errors.New("signing: signature mismatch")
)

// Signer signs canonical strings with a fixed secret and algorithm
type Signer struct {
	secret []byte
	algo   Algorithm
}

// New creates a Signer. An empty secret is a configuration error and is
// rejected here rather than on every call.
func New(secret string, algo Algorithm) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretMissing
	}
	switch algo {
	case HMACSHA256, HMACSHA512:
	default:
		return nil, ErrAlgorithmUnsupported
	}
	return &Signer{secret: []byte(secret), algo: algo}, nil
}

// Sign returns the lowercase hex HMAC of the canonical string
func (s *Signer) Sign(canonical string) string {
	mac := hmac.New(s.hashFunc(), s.secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares in constant time
func (s *Signer) Verify(canonical, signature string) error {
	expected := s.Sign(canonical)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}

func (s *Signer) hashFunc() func() hash.Hash {
	if s.algo == HMACSHA512 {
		return sha512.New
	}
	return sha256.New
}

// BuildCanonical joins params as k=v pairs sorted by key with &. Keys listed
// in skip and keys with empty values are excluded. When encode is true the
// values are URL query encoded, matching the VNPay convention.
func BuildCanonical(params map[string]string, encode bool, skip ...string) string {
	skipped := make(map[string]struct{}, len(skip))
	for _, k := range skip {
		skipped[k] = struct{}{}
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		if _, ok := skipped[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if encode {
			b.WriteString(url.QueryEscape(params[k]))
		} else {
			b.WriteString(params[k])
		}
	}
	return b.String()
}
