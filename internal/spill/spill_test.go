package spill

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpillRoundTrip(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	defer w.Remove()

	rows := [][][]byte{
		{[]byte("1"), []byte("a")},
		{[]byte("2"), []byte("b")},
	}
	for _, row := range rows {
		require.NoError(t, w.Put(row))
	}
	require.NoError(t, w.Close())

	r, err := OpenReader(w.Path())
	require.NoError(t, err)
	defer r.Close()

	var got [][][]byte
	for {
		row, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, row)
	}
	require.Equal(t, rows, got)
}
