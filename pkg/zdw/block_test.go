package zdw

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{Columns: []Column{
		{Name: "id", Type: LONG},
		{Name: "name", Type: VARCHAR, CharSize: 40},
	}}
}

func encodeRows(t *testing.T, schema *Schema, rows [][][]byte) []byte {
	t.Helper()
	bw := NewBlockWriter(schema, 0)
	for i, row := range rows {
		_, zerr := bw.ConsumeRow(i+1, row)
		require.Nil(t, zerr)
	}
	var buf bytes.Buffer
	require.Nil(t, bw.WriteBlock(&buf, true))
	return buf.Bytes()
}

func TestBlockRoundTrip(t *testing.T) {
	schema := testSchema()
	rows := [][][]byte{
		{[]byte("1"), []byte("alice")},
		{[]byte("2"), []byte("bob")},
		{[]byte("1"), []byte("alice")},
	}

	encoded := encodeRows(t, schema, rows)

	blk, zerr := ReadBlock(bytes.NewReader(encoded), schema, CurrentVersion)
	require.Nil(t, zerr)
	require.EqualValues(t, len(rows), blk.NumRows)
	require.True(t, blk.LastBlock)

	for i, row := range rows {
		if diff := cmp.Diff(row, blk.Rows[i]); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestBlockFirstRowBitmapScenario(t *testing.T) {
	// A single-column block whose only value is 0 after min-subtraction:
	// the first row's sameness bit must still be set, per spec scenario
	// 2, even though the stored value trivially equals the zero-valued
	// previous-row vector.
	schema := &Schema{Columns: []Column{{Name: "a", Type: TINY}}}
	rows := [][][]byte{{[]byte("5")}, {[]byte("5")}}

	encoded := encodeRows(t, schema, rows)
	// The block ends with the two row records: row 0's bitmap (bit set)
	// and its 1-byte payload 0, then row 1's bitmap (no bit set).
	require.Equal(t, []byte{0x01, 0x00, 0x00}, encoded[len(encoded)-3:])

	blk, zerr := ReadBlock(bytes.NewReader(encoded), schema, CurrentVersion)
	require.Nil(t, zerr)
	require.Equal(t, "5", string(blk.Rows[0][0]))
	require.Equal(t, "5", string(blk.Rows[1][0]))
}

func TestBlockEmptyFieldsRoundTrip(t *testing.T) {
	schema := testSchema()
	rows := [][][]byte{
		{[]byte(""), []byte("")},
		{[]byte("7"), []byte("")},
	}

	encoded := encodeRows(t, schema, rows)
	blk, zerr := ReadBlock(bytes.NewReader(encoded), schema, CurrentVersion)
	require.Nil(t, zerr)
	require.Empty(t, blk.Rows[0][0])
	require.Equal(t, "7", string(blk.Rows[1][0]))
}

func TestBlockWrongColumnCountRejected(t *testing.T) {
	schema := testSchema()
	bw := NewBlockWriter(schema, 0)
	_, zerr := bw.ConsumeRow(1, [][]byte{[]byte("only one")})
	require.NotNil(t, zerr)
	require.Equal(t, WrongNumOfColumns, zerr.Kind)
	require.Equal(t, 1, zerr.Row)
}

// TestReadBlockLegacyPrefixTreeDictionary decodes a hand-built version-8
// block (spec §6.1, §9: versions <9 use the 8-byte-block prefix-tree
// dictionary instead of the flat sorted-map layout).
func TestReadBlockLegacyPrefixTreeDictionary(t *testing.T) {
	schema := &Schema{Columns: []Column{{Name: "name", Type: VARCHAR, CharSize: 20}}}

	var buf bytes.Buffer
	require.NoError(t, writeUintLE(&buf, 1, 4)) // num_rows
	require.NoError(t, writeUintLE(&buf, 10, 4)) // line_length (version 8 uses 32-bit width)
	require.NoError(t, writeByte(&buf, 1))       // last_block

	require.NoError(t, writeByte(&buf, 1))       // dict_idx_size
	require.NoError(t, writeUintLE(&buf, 1, 1))  // dictionary_size = 1 node
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 'i', 'h'}) // node 1 chunk, storing "hi" reversed+padded
	require.NoError(t, writeByte(&buf, 0))        // node 1 prev_char

	require.NoError(t, writeByte(&buf, 1)) // col_sizes[0]
	require.NoError(t, writeUintLE(&buf, 0, 8)) // col_mins[0]

	require.NoError(t, writeByte(&buf, 1))      // row 0 bitmap: value changed
	require.NoError(t, writeUintLE(&buf, 1, 1)) // row 0 payload: dictionary index 1

	blk, zerr := ReadBlock(&buf, schema, 8)
	require.Nil(t, zerr)
	require.Equal(t, "hi", string(blk.Rows[0][0]))
}

// TestReadBlockLegacyVisitorDictionary decodes a hand-built version-7
// block exercising the VISID_LOW/VISID_HIGH lockstep pair (spec §4.6,
// §6.1: pre-version-8 files carry a separate visitor dictionary keyed by
// 64-bit visitor id).
func TestReadBlockLegacyVisitorDictionary(t *testing.T) {
	schema := &Schema{Columns: []Column{
		{Name: "visid_low", Type: VISID_LOW},
		{Name: "visid_high", Type: VISID_HIGH},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeUintLE(&buf, 1, 4))  // num_rows
	require.NoError(t, writeUintLE(&buf, 10, 4)) // line_length
	require.NoError(t, writeByte(&buf, 1))       // last_block

	require.NoError(t, writeByte(&buf, 0)) // dict_idx_size = 0, no string dictionary

	require.NoError(t, writeByte(&buf, 1))      // visitor dictionary index size
	require.NoError(t, writeUintLE(&buf, 2, 1)) // num_visitors = 2
	require.NoError(t, writeUintLE(&buf, 1001, 8))
	require.NoError(t, writeByte(&buf, 0)) // visitor 1 prev_id -> sentinel
	require.NoError(t, writeUintLE(&buf, 2002, 8))
	require.NoError(t, writeByte(&buf, 1)) // visitor 2 prev_id -> visitor 1

	require.NoError(t, writeByte(&buf, 0)) // col_sizes[visid_low] = 0, never stored
	require.NoError(t, writeByte(&buf, 1)) // col_sizes[visid_high]
	require.NoError(t, writeUintLE(&buf, 0, 8)) // col_mins[visid_high]

	require.NoError(t, writeByte(&buf, 1))      // row 0 bitmap: visid_high changed
	require.NoError(t, writeUintLE(&buf, 2, 1)) // row 0 payload: visitor index 2

	blk, zerr := ReadBlock(&buf, schema, 7)
	require.Nil(t, zerr)
	require.Equal(t, "1001", string(blk.Rows[0][0]))
	require.Equal(t, "2002", string(blk.Rows[0][1]))
}

func TestBlockDictionaryMinimality(t *testing.T) {
	schema := &Schema{Columns: []Column{{Name: "s", Type: VARCHAR, CharSize: 10}}}
	rows := [][][]byte{{[]byte("x")}, {[]byte("x")}, {[]byte("x")}, {[]byte("y")}}

	bw := NewBlockWriter(schema, 0)
	for i, row := range rows {
		_, zerr := bw.ConsumeRow(i+1, row)
		require.Nil(t, zerr)
	}
	require.Equal(t, 2, bw.dict.Len())
}
