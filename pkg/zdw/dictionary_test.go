package zdw

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDictionarySerializeScenario1 pins the exact byte layout from the
// two-entry "hi"/"world" dictionary scenario: 9 bytes total, since the
// final entry omits its trailing null terminator.
func TestDictionarySerializeScenario1(t *testing.T) {
	d := NewDictionary(0)
	require.True(t, d.Insert("world"))
	require.True(t, d.Insert("hi"))

	var buf bytes.Buffer
	n, err := d.Serialize(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 9, n)
	require.Equal(t, 9, buf.Len())

	hiOff, ok := d.Offset("hi")
	require.True(t, ok)
	worldOff, ok := d.Offset("world")
	require.True(t, ok)

	view := ParseDictionary(buf.Bytes())
	s, zerr := view.Lookup(hiOff)
	require.Nil(t, zerr)
	require.Equal(t, "hi", s)

	s, zerr = view.Lookup(worldOff)
	require.Nil(t, zerr)
	require.Equal(t, "world", s)
}

func TestDictionaryEmptyStringOffsetZero(t *testing.T) {
	d := NewDictionary(0)
	off, ok := d.Offset("")
	require.True(t, ok)
	require.EqualValues(t, 0, off)
}

func TestDictionaryLowMemorySignal(t *testing.T) {
	d := NewDictionary(64)
	ok := true
	for i := 0; i < 10 && ok; i++ {
		ok = d.Insert(string(rune('a' + i)))
	}
	require.False(t, ok)
}

func TestDictionaryLookupOutOfRange(t *testing.T) {
	view := ParseDictionary([]byte{0, 'a', 'b', 0})
	_, err := view.Lookup(100)
	require.NotNil(t, err)
	require.Equal(t, CorruptedData, err.Kind)
}

func TestPrefixTreeDictionarySingleChunk(t *testing.T) {
	// One node holding the 2-char string "hi": on disk the chunk is
	// null-padded at the front, then the content stored byte-reversed.
	d := &PrefixTreeDictionary{nodes: []prefixTreeNode{
		{},
		{chunk: [8]byte{0, 0, 0, 0, 0, 0, 'i', 'h'}},
	}}

	s, zerr := d.Lookup(1)
	require.Nil(t, zerr)
	require.Equal(t, "hi", s)
}

func TestPrefixTreeDictionaryChainedChunks(t *testing.T) {
	// Two nodes spanning "ABCDEFGHIJ": the root chunk "ABCDEFGH" is full
	// (stored byte-reversed), the leaf chunk "IJ" is the incomplete tail
	// (stored byte-reversed, padded at the front).
	d := &PrefixTreeDictionary{nodes: []prefixTreeNode{
		{},
		{chunk: [8]byte{'H', 'G', 'F', 'E', 'D', 'C', 'B', 'A'}, prevChar: 0},
		{chunk: [8]byte{0, 0, 0, 0, 0, 0, 'J', 'I'}, prevChar: 1},
	}}

	s, zerr := d.Lookup(2)
	require.Nil(t, zerr)
	require.Equal(t, "ABCDEFGHIJ", s)
}

func TestPrefixTreeDictionaryOutOfRange(t *testing.T) {
	d := &PrefixTreeDictionary{nodes: []prefixTreeNode{{}}}
	_, zerr := d.Lookup(5)
	require.NotNil(t, zerr)
	require.Equal(t, CorruptedData, zerr.Kind)
}
