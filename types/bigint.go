package types

import (
	"bytes"
	"fmt"
	"math/big"
)

// BigInt is a u128-scale unsigned integer. The runner speaks JSON where
// these values appear sometimes as decimal strings and sometimes as bare
// numbers too large for float64, so both forms are accepted on decode.
// Encoding always produces a decimal string.
type BigInt struct {
	big.Int
}

func NewBigInt(x int64) *BigInt {
	b := &BigInt{}
	b.SetInt64(x)
	return b
}

// ParseBigInt parses a decimal string.
func ParseBigInt(s string) (*BigInt, error) {
	b := &BigInt{}
	if _, ok := b.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid decimal integer %q", s)
	}
	return b, nil
}

func (b *BigInt) Copy() *BigInt {
	c := &BigInt{}
	c.Set(&b.Int)
	return c
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	if _, ok := b.SetString(string(data), 10); !ok {
		return fmt.Errorf("invalid integer value %q", data)
	}
	return nil
}
