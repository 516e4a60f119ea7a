package zdw

import (
	"io"
)

// FileHeader carries everything in the framed byte stream outside the
// block sequence (spec §6.1): the format version, the schema, and
// (version >= 11) the metadata block.
type FileHeader struct {
	Version  uint16
	Schema   *Schema
	Metadata *Metadata
}

// WriteFileHeader implements half of C8: the version header, the
// version>=11 metadata block, and the column names/types/(char sizes)
// that precede the block sequence (spec §6.1).
func WriteFileHeader(w io.Writer, h *FileHeader) *Error {
	if err := writeUintLE(w, uint64(h.Version), 2); err != nil {
		return newErr(FileCreationErr, "writing version: %v", err)
	}

	if hasMetadataBlock(h.Version) {
		m := h.Metadata
		if m == nil {
			m = NewMetadata()
		}
		if err := WriteMetadataBlock(w, m); err != nil {
			return err
		}
	}

	for _, col := range h.Schema.Columns {
		if _, err := w.Write([]byte(col.Name)); err != nil {
			return newErr(FileCreationErr, "writing column name: %v", err)
		}
		if err := writeByte(w, 0); err != nil {
			return newErr(FileCreationErr, "writing column name terminator: %v", err)
		}
	}
	if err := writeByte(w, 0); err != nil {
		return newErr(FileCreationErr, "writing column name list terminator: %v", err)
	}

	for _, col := range h.Schema.Columns {
		if err := writeByte(w, byte(col.Type)); err != nil {
			return newErr(FileCreationErr, "writing column type: %v", err)
		}
	}

	if hasColumnCharSize(h.Version) {
		for _, col := range h.Schema.Columns {
			if err := writeUintLE(w, uint64(col.CharSize), 2); err != nil {
				return newErr(FileCreationErr, "writing column char_size: %v", err)
			}
		}
	}

	return nil
}

// readNullTerminatedString reads bytes up to and including the next \0,
// returning the bytes before it.
func readNullTerminatedString(r io.Reader) (string, error) {
	var buf []byte
	for {
		b, err := readByte(r)
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

// ReadFileHeader is the inverse of WriteFileHeader.
func ReadFileHeader(r io.Reader) (*FileHeader, *Error) {
	version, err := readUintLE(r, 2)
	if err != nil {
		return nil, newErr(CorruptedData, "reading version: %v", err)
	}
	v := uint16(version)
	if zerr := checkVersion(v); zerr != nil {
		return nil, zerr
	}

	h := &FileHeader{Version: v}

	if hasMetadataBlock(v) {
		m, zerr := ReadMetadataBlock(r)
		if zerr != nil {
			return nil, zerr
		}
		h.Metadata = m
	} else {
		h.Metadata = NewMetadata()
	}

	var names []string
	for {
		name, err := readNullTerminatedString(r)
		if err != nil {
			return nil, newErr(CorruptedData, "reading column name: %v", err)
		}
		if name == "" {
			break
		}
		names = append(names, name)
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		typeByte, err := readByte(r)
		if err != nil {
			return nil, newErr(CorruptedData, "reading column type: %v", err)
		}
		cols[i] = Column{Name: name, Type: ColumnType(typeByte)}
	}

	if hasColumnCharSize(v) {
		for i := range cols {
			charSize, err := readUintLE(r, 2)
			if err != nil {
				return nil, newErr(CorruptedData, "reading column char_size: %v", err)
			}
			cols[i].CharSize = uint16(charSize)
		}
	}

	h.Schema = &Schema{Columns: cols}
	return h, nil
}

// ReadFile reads a complete framed file: the header, then blocks until
// one is marked last_block, then checks no trailing bytes remain (spec
// §6.1, "a decoder that consumes a terminal block's last_block=1 and
// then finds more bytes... is reading a corrupted or truncated file").
func ReadFile(r io.Reader) (*FileHeader, []*Block, *Error) {
	h, zerr := ReadFileHeader(r)
	if zerr != nil {
		return nil, nil, zerr
	}

	var blocks []*Block
	for {
		blk, zerr := ReadBlock(r, h.Schema, h.Version)
		if zerr != nil {
			return nil, nil, zerr
		}
		blocks = append(blocks, blk)
		if blk.LastBlock {
			break
		}
	}

	var probe [1]byte
	if n, err := r.Read(probe[:]); err == nil && n > 0 {
		return nil, nil, newErr(CorruptedData, "trailing bytes after terminal block")
	}

	return h, blocks, nil
}
