// Package bloom adapts bits-and-blooms Bloom filters to the lookup
// prefilter interface.
package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"
)

// filter wraps a bits-and-blooms BloomFilter. It is filled once while the
// repository is built and only read afterwards; Add must not race with
// MightContain.
type filter struct {
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) { f.bf.Add(key) }

func (f *filter) MightContain(key []byte) bool { return f.bf.Test(key) }

