// Package math provides checked arithmetic for the fixed-width integer fields
// persisted in actor state. Accounting computations are performed on wide big
// integers; these helpers guard the narrowing back to storage width.
package math

import (
	"math"

	big "github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"
)

var maxUint64 = big.NewIntUnsigned(math.MaxUint64)

// Uint64 converts a wide accounting value to a fixed-width storage value.
// It fails, rather than silently truncating, if the value is negative or
// exceeds the uint64 range.
func Uint64(v big.Int) (uint64, error) {
	if v.Nil() {
		return 0, xerrors.Errorf("undefined value cannot be stored as uint64")
	}
	if v.LessThan(big.Zero()) {
		return 0, xerrors.Errorf("negative value %v cannot be stored as uint64", v)
	}
	if v.GreaterThan(maxUint64) {
		return 0, xerrors.Errorf("value %v exceeds uint64 range", v)
	}
	return v.Uint64(), nil
}

// AddUint64 returns a+b, failing if the sum overflows the uint64 range.
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, xerrors.Errorf("sum of %d and %d overflows uint64", a, b)
	}
	return a + b, nil
}
