package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Uint256 decodes an unsigned 256-bit integer given as a JSON number, a
// decimal string or a 0x-prefixed hex string.
type Uint256 big.Int

func NewUint256(value *big.Int) *Uint256 {
	if value == nil {
		return nil
	}
	return (*Uint256)(new(big.Int).Set(value))
}

func (u *Uint256) Big() *big.Int {
	if u == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(u))
}

func (u *Uint256) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	value, err := parseUint256(raw)
	if err != nil {
		return err
	}
	(*big.Int)(u).Set(value)
	return nil
}

func (u *Uint256) MarshalJSON() ([]byte, error) {
	if u == nil {
		return []byte("null"), nil
	}
	return json.Marshal((*big.Int)(u).String())
}

func parseUint256(raw string) (*big.Int, error) {
	if raw == "" {
		return nil, fmt.Errorf("uint256: empty value")
	}
	digits, base := raw, 10
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		digits, base = raw[2:], 16
	}
	if digits == "" || strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		return nil, fmt.Errorf("uint256: invalid value %q", raw)
	}
	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("uint256: invalid value %q", raw)
	}
	if value.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("uint256: value %q exceeds 2^256-1", raw)
	}
	return value, nil
}
