package compressor

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Gzip, nil)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, Gzip)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestZstdRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Zstd, nil)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello zstd"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, Zstd)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello zstd", string(got))
}

func TestFromExtension(t *testing.T) {
	require.Equal(t, Gzip, FromExtension("dump.zdw.gz"))
	require.Equal(t, Bzip2, FromExtension("dump.zdw.bz2"))
	require.Equal(t, Xz, FromExtension("dump.zdw.xz"))
	require.Equal(t, Zstd, FromExtension("dump.zdw.zst"))
	require.Equal(t, None, FromExtension("dump.zdw"))
}

func TestFromMagicDetectsGzip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Gzip, nil)
	require.NoError(t, err)
	w.Write([]byte("x"))
	require.NoError(t, w.Close())

	require.Equal(t, Gzip, FromMagic(buf.Bytes()[:6]))
}
