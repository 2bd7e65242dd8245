// Package selector computes and normalizes 4-byte Solidity error selectors.
package selector

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidFormat indicates a selector string that is not 4 bytes of hex.
var ErrInvalidFormat = errors.New("invalid selector format")

// Compute returns the selector for a canonical error signature: the first
// 4 bytes of keccak256(signature), as lowercase hex with a 0x prefix.
// The result is always 10 characters.
func Compute(signature string) string {
	hash := crypto.Keccak256([]byte(signature))
	return "0x" + hex.EncodeToString(hash[:4])
}

// Normalize canonicalizes user-supplied selector input: an optional 0x
// prefix is stripped, the remaining 8 hex characters are lowercased and
// re-prefixed. Anything else fails with ErrInvalidFormat.
func Normalize(input string) (string, error) {
	s := input
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s) != 8 {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}
	s = strings.ToLower(s)
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}
	return "0x" + s, nil
}
