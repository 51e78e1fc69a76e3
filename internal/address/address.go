package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned for input that is not a 20-byte hex address.
var ErrInvalidAddress = errors.New("invalid address")

// Normalize returns the EIP-55 checksum form of addr.
// Input casing is ignored, so any spelling of the same address maps to one key.
func Normalize(addr string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(addr))
	if !common.IsHexAddress(lower) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return common.HexToAddress(lower).Hex(), nil
}

// MustNormalize is Normalize for compile-time constants. It panics on bad input.
func MustNormalize(addr string) string {
	out, err := Normalize(addr)
	if err != nil {
		panic(err)
	}
	return out
}

// IsAddress reports whether s parses as a hex address.
func IsAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}

// Canonical renders a decoded address as its map key.
func Canonical(addr common.Address) string {
	return addr.Hex()
}

// NormalizeAll normalizes every entry, skipping blanks.
func NormalizeAll(inputs []string) ([]string, error) {
	out := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		addr, err := Normalize(input)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
