// Package fingerprint computes and parses document fingerprints.
//
// A fingerprint is the SHA-256 digest of the document bytes, rendered as
// "0x" followed by 64 lowercase hex digits. The pages served to the browser
// compute the same value with WebCrypto, so both sides must agree byte for byte.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"regexp"
	"strings"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
)

// Fingerprint is a validated, lowercase document digest.
type Fingerprint string

// Zero is the all-zero fingerprint. The ledger never attests it.
const Zero Fingerprint = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Length is the number of characters of a rendered fingerprint.
const Length = 66

// HashFormatMessage is the message given for any malformed 32-byte hex value.
const HashFormatMessage = "invalid hash format: must start with 0x and contain exactly 64 hexadecimal characters"

var (
	hash32Re  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	address20 = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// FromBytes returns the fingerprint of data.
func FromBytes(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint("0x" + hex.EncodeToString(sum[:]))
}

// FromReader hashes everything read from r.
func FromReader(r io.Reader) (Fingerprint, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errl.Errorf("reading document: %w", err)
	}
	return Fingerprint("0x" + hex.EncodeToString(h.Sum(nil))), nil
}

// Parse validates s and returns it as a lowercase Fingerprint.
// Upper or mixed case hex is accepted; anything else is a validation error.
func Parse(s string) (Fingerprint, error) {
	s = strings.TrimSpace(s)
	if !hash32Re.MatchString(s) {
		return "", apperr.Validation("invalid request", HashFormatMessage)
	}
	return Fingerprint(strings.ToLower(s)), nil
}

// IsHash32 reports whether s has the shape of a fingerprint or transaction hash.
func IsHash32(s string) bool {
	return hash32Re.MatchString(s)
}

// IsAddress reports whether s has the shape of an account or contract identifier.
func IsAddress(s string) bool {
	return address20.MatchString(s)
}

// String implements fmt.Stringer.
func (f Fingerprint) String() string {
	return string(f)
}

// Bytes returns the 32 raw digest bytes.
func (f Fingerprint) Bytes() [32]byte {
	var out [32]byte
	// f is always valid, decoding cannot fail
	b, _ := hex.DecodeString(strings.TrimPrefix(string(f), "0x"))
	copy(out[:], b)
	return out
}

// Short returns the first n characters, for logs.
func (f Fingerprint) Short(n int) string {
	if len(f) <= n {
		return string(f)
	}
	return string(f[:n]) + "..."
}
