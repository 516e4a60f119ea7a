package zdw

import (
	"io"
)

// Block is the decoded form of one on-wire block (spec §6.1): one set of
// rows, each already expanded back to decimal/text/dictionary field
// bytes in schema column order. A column whose col_size is 0 in this
// block (no non-empty value in any of its rows) decodes to a nil field
// in every row; a clear sameness bit reuses the previous row's stored
// value, it does not by itself produce an empty field.
type Block struct {
	NumRows    uint32
	LineLength uint32
	LastBlock  bool
	Rows       [][][]byte

	// DictSize, ColSize and ColMin carry the per-block stats (spec §3)
	// for callers (e.g. `zdw unconvert -stats`) that want them without
	// re-deriving them from Rows.
	DictSize uint64
	ColSize  []uint8
	ColMin   []uint64
}

// ReadBlock implements C6: the inverse of BlockWriter.WriteBlock (spec
// §4.6, §6.1). version gates pre-CurrentVersion wire-format differences.
func ReadBlock(r io.Reader, schema *Schema, version uint16) (*Block, *Error) {
	if zerr := checkVersion(version); zerr != nil {
		return nil, zerr
	}

	lineLenWidth := 4
	if !has32BitLineLen(version) {
		lineLenWidth = 2
	}

	numRows, err := readUintLE(r, 4)
	if err != nil {
		return nil, newErr(CorruptedData, "reading num_rows: %v", err)
	}
	lineLen, err := readUintLE(r, lineLenWidth)
	if err != nil {
		return nil, newErr(CorruptedData, "reading line_length: %v", err)
	}
	lastByte, err := readByte(r)
	if err != nil {
		return nil, newErr(CorruptedData, "reading last_block: %v", err)
	}

	dictIdxSizeByte, err := readByte(r)
	if err != nil {
		return nil, newErr(CorruptedData, "reading dict_idx_size: %v", err)
	}
	dictIdxSize := int(dictIdxSizeByte)

	var dict stringDict
	var dictSize uint64
	if usesPrefixTreeDict(version) {
		ptDict, n, zerr := readPrefixTreeDictionary(r, dictIdxSize)
		if zerr != nil {
			return nil, zerr
		}
		dict, dictSize = ptDict, n
	} else if dictIdxSize > 0 {
		dictSize, err = readUintLE(r, dictIdxSize)
		if err != nil {
			return nil, newErr(CorruptedData, "reading dict_size: %v", err)
		}
		blob := make([]byte, dictSize)
		if _, err := io.ReadFull(r, blob); err != nil {
			return nil, newErr(CorruptedData, "reading dict_bytes: %v", err)
		}
		dict = ParseDictionary(blob)
	} else {
		dict = ParseDictionary(nil)
	}

	var visitors *legacyVisitorDictionary
	if hasVisitorDict(version) {
		vd, zerr := readVisitorDictionary(r)
		if zerr != nil {
			return nil, zerr
		}
		visitors = vd
	}

	n := schema.NumColumns()
	colSize := make([]uint8, n)
	for i := 0; i < n; i++ {
		b, err := readByte(r)
		if err != nil {
			return nil, newErr(CorruptedData, "reading col_sizes[%d]: %v", i, err)
		}
		colSize[i] = b
	}

	used := make([]bool, n)
	for i := 0; i < n; i++ {
		used[i] = colSize[i] > 0
	}

	colMin := make([]uint64, n)
	for i := 0; i < n; i++ {
		if !used[i] {
			continue
		}
		v, err := readUintLE(r, 8)
		if err != nil {
			return nil, newErr(CorruptedData, "reading col_mins[%d]: %v", i, err)
		}
		colMin[i] = v
	}

	usedIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if used[i] {
			usedIdx = append(usedIdx, i)
		}
	}
	bitmapBytes := (len(usedIdx) + 7) / 8

	blk := &Block{
		NumRows:    uint32(numRows),
		LineLength: uint32(lineLen),
		LastBlock:  lastByte != 0,
		Rows:       make([][][]byte, numRows),
		DictSize:   dictSize,
		ColSize:    colSize,
		ColMin:     colMin,
	}

	visidLowIdx := -1
	for i, c := range schema.Columns {
		if c.Type == VISID_LOW {
			visidLowIdx = i
		}
	}

	prevStored := make([]uint64, n)

	for rowIdx := 0; rowIdx < int(numRows); rowIdx++ {
		bitmap := make([]byte, bitmapBytes)
		if _, err := io.ReadFull(r, bitmap); err != nil {
			return nil, newErr(CorruptedData, "reading row %d bitmap: %v", rowIdx, err)
		}

		row := make([][]byte, n)

		for u, i := range usedIdx {
			bitSet := bitmap[u/8]&(1<<(uint(u)%8)) != 0

			stored := prevStored[i]
			if bitSet {
				v, err := readUintLE(r, int(colSize[i]))
				if err != nil {
					return nil, newErr(CorruptedData, "reading row %d payload col %d: %v", rowIdx, i, err)
				}
				stored = v
				prevStored[i] = v
			}

			if schema.Columns[i].Type == VISID_HIGH {
				if visitors == nil {
					return nil, newErr(CorruptedData, "VISID_HIGH column present but file version %d carries no visitor dictionary", version)
				}
				vid, pairedVID, zerr := visitors.lookup(stored + colMin[i])
				if zerr != nil {
					return nil, zerr
				}
				row[i] = decodeNumericText(VISID_HIGH, vid)
				if visidLowIdx >= 0 {
					row[visidLowIdx] = decodeNumericText(VISID_LOW, pairedVID)
				}
				continue
			}

			field, zerr := decodeStoredField(schema.Columns[i].Type, stored, colMin[i], dict, version)
			if zerr != nil {
				return nil, zerr
			}
			row[i] = field
		}

		blk.Rows[rowIdx] = row
	}

	return blk, nil
}

// decodeStoredField reverses BlockWriter.storedValue for a single column.
// DECIMAL is dictionary-encoded from FormatVersion 4 onward and numeric
// (stored as value*10^12, spec §4.6) before that. VISID_HIGH/VISID_LOW
// are decoded directly by ReadBlock's row loop, which needs the adjacent
// visitor dictionary lockstep; decodeStoredField never sees them.
func decodeStoredField(t ColumnType, stored, min uint64, dict stringDict, version uint16) ([]byte, *Error) {
	if t == DECIMAL && !decimalIsDictEncoded(version) {
		return legacyDecimalText(stored + min), nil
	}

	switch {
	case t.IsStringLike():
		s, zerr := dict.Lookup(stored)
		if zerr != nil {
			return nil, zerr
		}
		return []byte(s), nil
	case t == CHAR:
		return decodeCharText(stored + min), nil
	default:
		return decodeNumericText(t, stored+min), nil
	}
}

// readPrefixTreeDictionary parses the pre-version-9 dictionary layout
// (spec §6.1): a 1-byte count-of-bytes prefix followed, if nonzero, by the
// entry count and then that many {chunk, prevChar} nodes. indexSize sizes
// both the entry count and every node's prevChar pointer.
func readPrefixTreeDictionary(r io.Reader, indexSize int) (*PrefixTreeDictionary, uint64, *Error) {
	var count uint64
	if indexSize > 0 {
		v, err := readUintLE(r, indexSize)
		if err != nil {
			return nil, 0, newErr(CorruptedData, "reading dictionary_size: %v", err)
		}
		count = v
	}

	nodes := make([]prefixTreeNode, count+1)
	for i := uint64(1); i <= count; i++ {
		if _, err := io.ReadFull(r, nodes[i].chunk[:]); err != nil {
			return nil, 0, newErr(CorruptedData, "reading dictionary node %d chunk: %v", i, err)
		}
		if indexSize > 0 {
			prev, err := readUintLE(r, indexSize)
			if err != nil {
				return nil, 0, newErr(CorruptedData, "reading dictionary node %d prev_char: %v", i, err)
			}
			nodes[i].prevChar = prev
		}
	}

	return &PrefixTreeDictionary{nodes: nodes}, count, nil
}

// readVisitorDictionary parses the pre-version-8 visitor dictionary (spec
// §6.1): a 1-byte count-of-bytes prefix followed, if nonzero, by the
// entry count and then that many {8-byte raw id, prevID pointer} nodes.
func readVisitorDictionary(r io.Reader) (*legacyVisitorDictionary, *Error) {
	vIdxSizeByte, err := readByte(r)
	if err != nil {
		return nil, newErr(CorruptedData, "reading visitor dictionary index size: %v", err)
	}
	vIdxSize := int(vIdxSizeByte)

	var numVisitors uint64
	if vIdxSize > 0 {
		v, err := readUintLE(r, vIdxSize)
		if err != nil {
			return nil, newErr(CorruptedData, "reading num_visitors: %v", err)
		}
		numVisitors = v
	}

	entries := make([]legacyVisitorEntry, numVisitors+1)
	for i := uint64(1); i <= numVisitors; i++ {
		vid, err := readUintLE(r, 8)
		if err != nil {
			return nil, newErr(CorruptedData, "reading visitor %d id: %v", i, err)
		}
		entries[i].vid = vid

		if vIdxSize > 0 {
			prev, err := readUintLE(r, vIdxSize)
			if err != nil {
				return nil, newErr(CorruptedData, "reading visitor %d prev_id: %v", i, err)
			}
			entries[i].prevID = prev
		}
	}

	return &legacyVisitorDictionary{entries: entries}, nil
}
