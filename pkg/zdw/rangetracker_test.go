package zdw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeTrackerMinMaxSizeBytes(t *testing.T) {
	rt := NewRangeTracker(1)
	rt.Update(0, 100)
	rt.Update(0, 50)
	rt.Update(0, 400)

	require.EqualValues(t, 50, rt.Min(0))
	require.EqualValues(t, 400, rt.Max(0))
	require.EqualValues(t, 2, rt.SizeBytes(0))
}

func TestRangeTrackerSingleValueIsOneByte(t *testing.T) {
	rt := NewRangeTracker(1)
	rt.Update(0, 7)
	require.EqualValues(t, 1, rt.SizeBytes(0))
}

func TestBytesNeeded(t *testing.T) {
	require.EqualValues(t, 1, bytesNeeded(0))
	require.EqualValues(t, 1, bytesNeeded(255))
	require.EqualValues(t, 2, bytesNeeded(256))
	require.EqualValues(t, 2, bytesNeeded(65535))
	require.EqualValues(t, 3, bytesNeeded(65536))
	require.EqualValues(t, 8, bytesNeeded(^uint64(0)))
}
