package zdw

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizerSplitsOnTab(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("a\tb\tc\n"), false)

	fields, ok, err := tok.NextRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, fields)

	_, ok, err = tok.NextRow()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTokenizerEscapedTabIsNotADelimiter(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("a\\\tb\tc\n"), false)

	fields, ok, err := tok.NextRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, fields, 2)
	require.Equal(t, "a\\\tb", string(fields[0]))
	require.Equal(t, "c", string(fields[1]))
}

func TestTokenizerEscapedNewlineContinuesRecord(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("a\\\nb\tc\n"), false)

	fields, ok, err := tok.NextRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, fields, 2)
	require.Equal(t, "a\\\nb", string(fields[0]))
	require.Equal(t, "c", string(fields[1]))
}

func TestTokenizerTrimTrailingSpace(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("a  \tb\n"), true)

	fields, ok, err := tok.NextRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", string(fields[0]))
	require.Equal(t, "b", string(fields[1]))
}

func TestTokenizerMultipleRows(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("1\ta\n2\tb\n3\tc\n"), false)

	var rows [][][]byte
	for {
		fields, ok, err := tok.NextRow()
		require.NoError(t, err)
		if !ok {
			break
		}
		rows = append(rows, fields)
	}
	require.Len(t, rows, 3)
	require.Equal(t, "2", string(rows[1][0]))
}
