package entities

import (
	"fmt"
	"math"
	"math/big"

	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
)

var maxInt64 = big.NewInt(math.MaxInt64)

// NarrowInt64 converts a verified uint256 value to the store's native width.
// Values outside [0, MaxInt64] are rejected rather than truncated.
func NarrowInt64(field string, value *big.Int) (int64, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: %s is required", domainerrors.ErrMalformedRequest, field)
	}
	if value.Sign() < 0 || value.Cmp(maxInt64) > 0 {
		return 0, fmt.Errorf("%w: %s=%s", domainerrors.ErrNumericOverflow, field, value.String())
	}
	return value.Int64(), nil
}
