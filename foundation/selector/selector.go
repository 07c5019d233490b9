// Package selector computes the 4 byte function selectors used to route
// calls into a contract.
package selector

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Size is the number of bytes in a selector.
const Size = 4

// Selector is the first 4 bytes of the keccak-256 hash of a canonical
// signature, read as a big endian integer.
type Selector uint32

// Compute returns the selector for an already canonical signature.
func Compute(canonical string) Selector {
	hash := crypto.Keccak256([]byte(canonical))
	return Selector(binary.BigEndian.Uint32(hash[:Size]))
}

// FromSignature canonicalizes the raw signature and returns the canonical
// form with its selector.
func FromSignature(raw string) (Selector, string, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return 0, "", err
	}

	return Compute(canonical), canonical, nil
}

// FromCalldata reads the selector from the first 4 bytes of calldata.
func FromCalldata(data []byte) (Selector, error) {
	if len(data) < Size {
		return 0, fmt.Errorf("calldata too short: got %d bytes, need %d", len(data), Size)
	}

	return Selector(binary.BigEndian.Uint32(data[:Size])), nil
}

// Parse converts the 0x prefixed hex form of a selector.
func Parse(s string) (Selector, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return 0, fmt.Errorf("parsing selector %q: %w", s, err)
	}

	if len(b) != Size {
		return 0, fmt.Errorf("parsing selector %q: got %d bytes, need %d", s, len(b), Size)
	}

	return Selector(binary.BigEndian.Uint32(b)), nil
}

// Bytes returns the big endian encoding of the selector.
func (s Selector) Bytes() []byte {
	b := make([]byte, Size)
	binary.BigEndian.PutUint32(b, uint32(s))
	return b
}

// String returns the selector as 0x followed by 8 hex digits.
func (s Selector) String() string {
	return hexutil.Encode(s.Bytes())
}

// MarshalText implements encoding.TextMarshaler.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Selector) UnmarshalText(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}

	*s = v
	return nil
}
