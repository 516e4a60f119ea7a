package zdw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadMetadataFilePreservesOrder(t *testing.T) {
	m, err := ReadMetadataFile(strings.NewReader("b=2\na=1\nc=3\n"))
	require.Nil(t, err)
	require.Equal(t, []string{"b", "a", "c"}, m.Keys())

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, "1", v)
}

func TestReadMetadataFileRejectsMissingEquals(t *testing.T) {
	_, err := ReadMetadataFile(strings.NewReader("nope\n"))
	require.NotNil(t, err)
	require.Equal(t, BadMetadataFile, err.Kind)
}

func TestMetadataSetRejectsEqualsInKey(t *testing.T) {
	m := NewMetadata()
	err := m.Set("a=b", "v")
	require.NotNil(t, err)
	require.Equal(t, BadMetadataParam, err.Kind)
}

func TestMetadataBlockRoundTrip(t *testing.T) {
	m := NewMetadata()
	require.Nil(t, m.Set("source", "test"))
	require.Nil(t, m.Set("rows", "3"))

	var buf bytes.Buffer
	require.Nil(t, WriteMetadataBlock(&buf, m))

	m2, err := ReadMetadataBlock(&buf)
	require.Nil(t, err)
	require.Equal(t, m.Keys(), m2.Keys())

	v, ok := m2.Get("rows")
	require.True(t, ok)
	require.Equal(t, "3", v)
}
