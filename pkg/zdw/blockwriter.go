package zdw

import (
	"bytes"
	"io"
)

// Row is one tokenized, field-owning record collected during C5's Pass 1.
// Fields are copied out of the tokenizer's internal buffer so they
// survive across the two passes.
type Row [][]byte

// BlockWriter implements C5: the two-pass block encoder (spec §4.5). Pass
// 1 (ConsumeRow) feeds the dictionary and range tracker and buffers rows;
// Pass 2 (WriteBlock) determines per-column size_bytes/min and emits the
// delta-encoded block.
type BlockWriter struct {
	schema *Schema
	dict   *Dictionary
	ranges *RangeTracker
	used   []bool

	rows        []Row
	longestLine uint32
}

// NewBlockWriter starts a new block for schema, with the dictionary arena
// bounded by memLimitBytes (<=0 uses DefaultMemoryLimitBytes).
func NewBlockWriter(schema *Schema, memLimitBytes int64) *BlockWriter {
	n := schema.NumColumns()
	return &BlockWriter{
		schema: schema,
		dict:   NewDictionary(memLimitBytes),
		ranges: NewRangeTracker(n),
		used:   make([]bool, n),
	}
}

// ConsumeRow is Pass 1 for a single tokenized row. lowMemory is true when
// the dictionary's budget was exceeded by this row's insertions; the
// caller (C7) should finish this block at the next row boundary rather
// than mid-row.
func (b *BlockWriter) ConsumeRow(rowNum int, fields [][]byte) (lowMemory bool, zerr *Error) {
	n := b.schema.NumColumns()
	if len(fields) != n {
		return false, rowErr(WrongNumOfColumns, rowNum, "expected %d columns, got %d", n, len(fields))
	}

	lineLen := uint32(0)
	for _, f := range fields {
		lineLen += uint32(len(f)) + 1
	}
	if lineLen > b.longestLine {
		b.longestLine = lineLen
	}

	row := make(Row, n)
	ok := true

	for i, col := range b.schema.Columns {
		field := fields[i]
		cp := make([]byte, len(field))
		copy(cp, field)
		row[i] = cp

		if len(field) == 0 {
			continue
		}

		switch {
		case col.Type.IsStringLike():
			if !b.dict.Insert(string(field)) {
				ok = false
			}
			b.used[i] = true

		case col.Type == CHAR:
			b.ranges.Update(i, encodeCharText(field))
			b.used[i] = true

		default:
			v, encErr := encodeNumericText(col.Type, field)
			if encErr != nil {
				return false, encErr
			}
			b.ranges.Update(i, v)
			b.used[i] = true
		}
	}

	b.rows = append(b.rows, row)
	return !ok, nil
}

// NumRows returns the number of rows buffered so far this block.
func (b *BlockWriter) NumRows() int { return len(b.rows) }

// WriteBlock is Pass 2: it writes the full block record (header,
// dictionary, per-column stats, delta-encoded rows) to w (spec §4.5,
// §6.1). lastBlock marks this as the terminal block in the file.
func (b *BlockWriter) WriteBlock(w io.Writer, lastBlock bool) *Error {
	n := b.schema.NumColumns()

	if err := writeUint32LE(w, uint32(len(b.rows))); err != nil {
		return newErr(FileCreationErr, "writing num_rows: %v", err)
	}
	if err := writeUint32LE(w, b.longestLine); err != nil {
		return newErr(FileCreationErr, "writing line_length: %v", err)
	}
	lb := byte(0)
	if lastBlock {
		lb = 1
	}
	if err := writeByte(w, lb); err != nil {
		return newErr(FileCreationErr, "writing last_block: %v", err)
	}

	var dictBuf bytes.Buffer
	if _, err := b.dict.Serialize(&dictBuf); err != nil {
		return newErr(FileCreationErr, "serializing dictionary: %v", err)
	}

	dictLen := uint64(dictBuf.Len())
	dictIdxSize := 0
	if dictLen > 0 {
		dictIdxSize = int(bytesNeeded(dictLen))
	}
	if err := writeByte(w, byte(dictIdxSize)); err != nil {
		return newErr(FileCreationErr, "writing dict_idx_size: %v", err)
	}
	if dictIdxSize > 0 {
		if err := writeUintLE(w, dictLen, dictIdxSize); err != nil {
			return newErr(FileCreationErr, "writing dict_size: %v", err)
		}
		if _, err := w.Write(dictBuf.Bytes()); err != nil {
			return newErr(FileCreationErr, "writing dict_bytes: %v", err)
		}
	}

	colSize := make([]uint8, n)
	colMin := make([]uint64, n)

	stringOffsetWidth := uint8(1)
	if dictLen > 0 {
		stringOffsetWidth = bytesNeeded(dictLen)
	}

	for i, col := range b.schema.Columns {
		if !b.used[i] {
			continue
		}
		if col.Type.IsStringLike() {
			colSize[i] = stringOffsetWidth
			colMin[i] = 0
			continue
		}
		colSize[i] = b.ranges.SizeBytes(i)
		colMin[i] = b.ranges.Min(i)
	}

	for i := 0; i < n; i++ {
		if err := writeByte(w, colSize[i]); err != nil {
			return newErr(FileCreationErr, "writing col_sizes: %v", err)
		}
	}
	for i := 0; i < n; i++ {
		if !b.used[i] {
			continue
		}
		if err := writeUint64LE(w, colMin[i]); err != nil {
			return newErr(FileCreationErr, "writing col_mins: %v", err)
		}
	}

	usedIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if b.used[i] {
			usedIdx = append(usedIdx, i)
		}
	}

	prevStored := make([]uint64, n)
	bitmapBytes := (len(usedIdx) + 7) / 8

	for rowIdx, row := range b.rows {
		stored := make([]uint64, n)
		for _, i := range usedIdx {
			stored[i] = b.storedValue(i, row[i], colMin[i])
		}

		bitmap := make([]byte, bitmapBytes)
		setBits := make([]int, 0, len(usedIdx))

		for u, i := range usedIdx {
			differs := rowIdx == 0 || stored[i] != prevStored[i]
			if differs {
				bitmap[u/8] |= 1 << (uint(u) % 8)
				setBits = append(setBits, i)
			}
			prevStored[i] = stored[i]
		}

		if _, err := w.Write(bitmap); err != nil {
			return newErr(FileCreationErr, "writing row bitmap: %v", err)
		}
		for _, i := range setBits {
			if err := writeUintLE(w, stored[i], int(colSize[i])); err != nil {
				return newErr(FileCreationErr, "writing row payload: %v", err)
			}
		}
	}

	return nil
}

// storedValue computes column i's delta-encoded stored value for a single
// row's raw field bytes (spec §4.5, §3).
func (b *BlockWriter) storedValue(col int, field []byte, min uint64) uint64 {
	if len(field) == 0 {
		return 0
	}

	colType := b.schema.Columns[col].Type
	switch {
	case colType.IsStringLike():
		off, _ := b.dict.Offset(string(field))
		return off
	case colType == CHAR:
		return encodeCharText(field) - min
	default:
		v, _ := encodeNumericText(colType, field)
		return v - min
	}
}

func writeUint32LE(w io.Writer, v uint32) error { return writeUintLE(w, uint64(v), 4) }
func writeUint64LE(w io.Writer, v uint64) error { return writeUintLE(w, v, 8) }
