package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/edu-verify/internal/edu/repos/lookup"
)

// factory implements lookup.BloomFactory using the package sizer.
type factory struct {
	sizer lookup.BloomSizer
}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() lookup.BloomFactory { return factory{sizer: NewSizer()} }

// New constructs a filter sized for capacity keys at the target FP rate.
func (f factory) New(capacity uint64, fpRate float64) lookup.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
