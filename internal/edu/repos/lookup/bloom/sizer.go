package bloom

import (
	"math"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/edu-verify/internal/edu/repos/lookup"
)

// defaultFPRate replaces rates outside (0, 1).
const defaultFPRate = 0.01

// sizer implements lookup.BloomSizer with the library's parameter estimate.
// An empty index is sized as if it held one key.
type sizer struct{}

// NewSizer returns a BloomSizer implementation.
func NewSizer() lookup.BloomSizer { return sizer{} }

func (sizer) Size(n uint64, p float64) (uint64, uint8) {
	if n == 0 {
		n = 1
	}
	if !(p > 0 && p < 1) {
		p = defaultFPRate
	}
	m, k := bitsbloom.EstimateParameters(uint(n), p)
	return uint64(max(m, 1)), uint8(min(max(k, 1), math.MaxUint8))
}
