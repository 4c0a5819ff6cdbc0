package amora

import (
	"math/big"
	"strings"
)

// FeltToHex converts a felt to a hex string with 0x prefix, no leading
// zero padding beyond what's needed to represent the value.
func FeltToHex(f Felt) HexString {
	if f == nil {
		return "0x0"
	}
	return "0x" + f.Text(16)
}

// HexToFelt parses a hex string (with or without 0x prefix) into a felt.
// Returns ErrInvalidFormat on malformed hex, ErrOutOfRange if the value
// is >= 2^252 (the wire-format felt range, §4.5/§6.3).
func HexToFelt(s HexString) (Felt, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return nil, wrapf(ErrInvalidFormat, "empty hex felt")
	}
	n, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, wrapf(ErrInvalidFormat, "invalid hex felt %q", s)
	}
	if n.Sign() < 0 || n.Cmp(feltWireBound) >= 0 {
		return nil, wrapf(ErrOutOfRange, "felt %q out of range", s)
	}
	return n, nil
}

// feltWireBound is 2^252, the strict upper bound the textual encodings
// (§4.5/§6.3) accept for a felt value.
var feltWireBound = new(big.Int).Lsh(big.NewInt(1), 252)
