package zdw

// RangeTracker implements C4: per-block, per-column min/max tracking over
// numeric and CHAR values (spec §4.4). Signed values are tracked using
// their unsigned bit pattern; signedness is reapplied at decode using the
// column's type tag.
type RangeTracker struct {
	hasValue []bool
	min      []uint64
	max      []uint64
}

// NewRangeTracker allocates a tracker for numColumns columns.
func NewRangeTracker(numColumns int) *RangeTracker {
	return &RangeTracker{
		hasValue: make([]bool, numColumns),
		min:      make([]uint64, numColumns),
		max:      make([]uint64, numColumns),
	}
}

// Update folds value into column col's running min/max.
func (rt *RangeTracker) Update(col int, value uint64) {
	if !rt.hasValue[col] {
		rt.hasValue[col] = true
		rt.min[col] = value
		rt.max[col] = value
		return
	}
	if value < rt.min[col] {
		rt.min[col] = value
	}
	if value > rt.max[col] {
		rt.max[col] = value
	}
}

// HasValue reports whether column col saw at least one non-empty value.
func (rt *RangeTracker) HasValue(col int) bool { return rt.hasValue[col] }

// Min returns column col's tracked minimum.
func (rt *RangeTracker) Min(col int) uint64 { return rt.min[col] }

// Max returns column col's tracked maximum.
func (rt *RangeTracker) Max(col int) uint64 { return rt.max[col] }

// SizeBytes returns the minimum number of little-endian bytes, in [1,8],
// needed to store (max - min) for column col (spec §3, Per-column stats).
func (rt *RangeTracker) SizeBytes(col int) uint8 {
	return bytesNeeded(rt.max[col] - rt.min[col])
}

func bytesNeeded(span uint64) uint8 {
	for n := uint8(1); n <= 8; n++ {
		if n == 8 || span < (uint64(1)<<(8*n)) {
			return n
		}
	}
	return 8
}
