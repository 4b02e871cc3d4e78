package geo

import "github.com/samber/lo"

// Range is an ordered, immutable list of element offsets. It is safe to
// share between goroutines.
type Range struct {
	offsets []Offset
}

// NewRange wraps offsets, which must be ascending and free of duplicates.
// The slice is not copied.
func NewRange(offsets []Offset) Range {
	return Range{offsets: offsets}
}

// Len returns the number of offsets in the range.
func (r Range) Len() int {
	return len(r.offsets)
}

// IsEmpty reports whether the range has no offsets.
func (r Range) IsEmpty() bool {
	return len(r.offsets) == 0
}

// Offsets returns the underlying offsets. Callers must not modify them.
func (r Range) Offsets() []Offset {
	return r.offsets
}

// Blocks cuts the range into consecutive pieces of at most size offsets.
func (r Range) Blocks(size int) []Range {
	if len(r.offsets) == 0 {
		return nil
	}
	if size <= 0 {
		size = PageSize
	}
	return lo.Map(lo.Chunk(r.offsets, size), func(c []Offset, _ int) Range {
		return Range{offsets: c}
	})
}

// Split divides the range into at most n contiguous pieces of nearly equal
// length for read-only parallel traversal.
func (r Range) Split(n int) []Range {
	if len(r.offsets) == 0 {
		return nil
	}
	if n <= 1 {
		return []Range{r}
	}
	size := (len(r.offsets) + n - 1) / n
	return r.Blocks(size)
}
