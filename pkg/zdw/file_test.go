package zdw

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFileRoundTrip(t *testing.T) {
	schema := &Schema{Columns: []Column{
		{Name: "id", Type: LONGLONG},
		{Name: "name", Type: VARCHAR, CharSize: 32},
		{Name: "flag", Type: CHAR},
	}}

	input := "1\talice\tY\n2\tbob\tN\n3\tcarol\tY\n"

	var out bytes.Buffer
	meta := NewMetadata()
	require.Nil(t, meta.Set("source", "test"))

	zerr := Encode(&out, bytes.NewReader([]byte(input)), schema, EncodeOptions{Metadata: meta})
	require.Nil(t, zerr)

	var decoded [][][]byte
	header, zerr := Decode(bytes.NewReader(out.Bytes()), func(_ *FileHeader, fields [][]byte) *Error {
		decoded = append(decoded, fields)
		return nil
	}, DecodeOptions{})
	require.Nil(t, zerr)

	require.Equal(t, CurrentVersion, header.Version)
	v, ok := header.Metadata.Get("source")
	require.True(t, ok)
	require.Equal(t, "test", v)

	require.Len(t, decoded, 3)
	require.Equal(t, "1", string(decoded[0][0]))
	require.Equal(t, "alice", string(decoded[0][1]))
	require.Equal(t, "Y", string(decoded[0][2]))
	require.Equal(t, "bob", string(decoded[1][1]))
	require.Equal(t, "carol", string(decoded[2][1]))
}

func TestEncodeEmptyInputProducesOneEmptyBlock(t *testing.T) {
	schema := &Schema{Columns: []Column{{Name: "id", Type: LONG}}}

	var out bytes.Buffer
	require.Nil(t, Encode(&out, bytes.NewReader(nil), schema, EncodeOptions{}))

	header, blocks, zerr := ReadFile(bytes.NewReader(out.Bytes()))
	require.Nil(t, zerr)
	require.Equal(t, 1, schema.NumColumns())
	_ = header
	require.Len(t, blocks, 1)
	require.EqualValues(t, 0, blocks[0].NumRows)
	require.True(t, blocks[0].LastBlock)
}

func TestReadFileRejectsTrailingBytes(t *testing.T) {
	schema := &Schema{Columns: []Column{{Name: "id", Type: LONG}}}

	var out bytes.Buffer
	require.Nil(t, Encode(&out, bytes.NewReader([]byte("1\n")), schema, EncodeOptions{}))
	out.WriteByte(0xFF)

	_, _, zerr := ReadFile(bytes.NewReader(out.Bytes()))
	require.NotNil(t, zerr)
	require.Equal(t, CorruptedData, zerr.Kind)
}

// TestWriteFileHeaderLiteralByteLayout pins the exact on-wire header
// layout from spec §6.1/§4.8: a null-terminated name list with a
// trailing empty-name terminator, then a flat type array, then (version
// >= 7) a flat char_size array — never a num_columns length prefix.
func TestWriteFileHeaderLiteralByteLayout(t *testing.T) {
	schema := &Schema{Columns: []Column{
		{Name: "id", Type: LONG, CharSize: 0},
		{Name: "name", Type: VARCHAR, CharSize: 40},
	}}

	var out bytes.Buffer
	zerr := WriteFileHeader(&out, &FileHeader{Version: 7, Schema: schema})
	require.Nil(t, zerr)

	want := []byte{7, 0} // version u16
	want = append(want, []byte("id")...)
	want = append(want, 0) // name terminator
	want = append(want, []byte("name")...)
	want = append(want, 0) // name terminator
	want = append(want, 0) // trailing empty name: end of list
	want = append(want, byte(LONG), byte(VARCHAR))
	want = append(want, 0, 0)  // id char_size = 0
	want = append(want, 40, 0) // name char_size = 40

	require.Equal(t, want, out.Bytes())
}

func TestReadFileHeaderLiteralByteLayout(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{7, 0})
	buf.Write([]byte("id\x00name\x00\x00"))
	buf.Write([]byte{byte(LONG), byte(VARCHAR)})
	buf.Write([]byte{0, 0})
	buf.Write([]byte{40, 0})

	h, zerr := ReadFileHeader(&buf)
	require.Nil(t, zerr)
	require.EqualValues(t, 7, h.Version)
	require.Equal(t, 2, h.Schema.NumColumns())
	require.Equal(t, "id", h.Schema.Columns[0].Name)
	require.Equal(t, LONG, h.Schema.Columns[0].Type)
	require.Equal(t, "name", h.Schema.Columns[1].Name)
	require.Equal(t, VARCHAR, h.Schema.Columns[1].Type)
	require.EqualValues(t, 40, h.Schema.Columns[1].CharSize)
}

func TestReadFileRejectsUnsupportedVersion(t *testing.T) {
	buf := []byte{0xFF, 0xFF}
	_, _, zerr := ReadFile(bytes.NewReader(buf))
	require.NotNil(t, zerr)
	require.Equal(t, UnsupportedVersion, zerr.Kind)
}
