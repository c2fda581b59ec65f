package units

import (
	"fmt"

	"github.com/pkg/errors"
)

// Factor is a fraction of a maximum, always within [0, 1].
type Factor float32

const (
	// FactorMax drives at the full achievable maximum.
	FactorMax Factor = 1.0
	// FactorHalf drives at half the achievable maximum.
	FactorHalf Factor = 0.5
)

// NewFactor validates f as a fraction of a maximum.
func NewFactor(f float32) (Factor, error) {
	if !IsFinite(f) || f < 0 || f > 1 {
		return 0, errors.Errorf("factor must be within [0, 1], got %v", f)
	}
	return Factor(f), nil
}

// MustFactor is NewFactor for statically known values; it panics on a bad
// fraction.
func MustFactor(f float32) Factor {
	fac, err := NewFactor(f)
	if err != nil {
		panic(err)
	}
	return fac
}

func (f Factor) String() string {
	return fmt.Sprintf("%.1f%%", float32(f)*100)
}
