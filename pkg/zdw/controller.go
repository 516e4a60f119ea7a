package zdw

import (
	"io"
)

// EncodeOptions configures a streaming Encode call (spec §4.7, §5).
type EncodeOptions struct {
	// MemLimitBytes bounds each block's dictionary arena (<=0 uses
	// DefaultMemoryLimitBytes).
	MemLimitBytes int64
	// TrimTrailingSpace is forwarded to the tokenizer.
	TrimTrailingSpace bool
	Metadata          *Metadata
}

// Encode implements C7: the multi-block controller driving the encoder
// end to end (spec §4.7's state machine — BEGIN, PARSE_HEADER, read rows
// into a block, rotate on dictionary pressure or EOF, FINISHING, END).
// It reads logical rows from src via a Tokenizer and writes a complete
// framed file to dst.
func Encode(dst io.Writer, src io.Reader, schema *Schema, opts EncodeOptions) *Error {
	if opts.MemLimitBytes <= 0 {
		opts.MemLimitBytes = DefaultMemoryLimitBytes
	}

	header := &FileHeader{Version: CurrentVersion, Schema: schema, Metadata: opts.Metadata}
	if err := WriteFileHeader(dst, header); err != nil {
		return err
	}

	tok := NewTokenizer(src, opts.TrimTrailingSpace)

	rowNum := 0
	pending, havePending, zerr := nextRow(tok, &rowNum)
	if zerr != nil {
		return zerr
	}

	if !havePending {
		bw := NewBlockWriter(schema, opts.MemLimitBytes)
		return bw.WriteBlock(dst, true)
	}

	for havePending {
		bw := NewBlockWriter(schema, opts.MemLimitBytes)

		for havePending {
			lowMem, zerr := bw.ConsumeRow(rowNum, pending)
			if zerr != nil {
				return zerr
			}

			pending, havePending, zerr = nextRow(tok, &rowNum)
			if zerr != nil {
				return zerr
			}

			if lowMem {
				break
			}
		}

		if err := bw.WriteBlock(dst, !havePending); err != nil {
			return err
		}
	}

	return nil
}

// EncodeRows drives the same C7 state machine as Encode, but pulls rows
// from an arbitrary source function instead of tokenizing an io.Reader —
// used to replay a spill file (internal/spill) when the original input
// stream could not be re-read for a second pass.
func EncodeRows(dst io.Writer, schema *Schema, opts EncodeOptions, next func() ([][]byte, bool, error)) *Error {
	if opts.MemLimitBytes <= 0 {
		opts.MemLimitBytes = DefaultMemoryLimitBytes
	}

	header := &FileHeader{Version: CurrentVersion, Schema: schema, Metadata: opts.Metadata}
	if err := WriteFileHeader(dst, header); err != nil {
		return err
	}

	rowNum := 0
	fetch := func() ([][]byte, bool, *Error) {
		fields, ok, err := next()
		if err != nil {
			return nil, false, newErr(FileOpenErr, "reading spilled rows: %v", err)
		}
		if !ok {
			return nil, false, nil
		}
		rowNum++
		return fields, true, nil
	}

	pending, havePending, zerr := fetch()
	if zerr != nil {
		return zerr
	}

	if !havePending {
		bw := NewBlockWriter(schema, opts.MemLimitBytes)
		return bw.WriteBlock(dst, true)
	}

	for havePending {
		bw := NewBlockWriter(schema, opts.MemLimitBytes)

		for havePending {
			lowMem, zerr := bw.ConsumeRow(rowNum, pending)
			if zerr != nil {
				return zerr
			}

			pending, havePending, zerr = fetch()
			if zerr != nil {
				return zerr
			}

			if lowMem {
				break
			}
		}

		if err := bw.WriteBlock(dst, !havePending); err != nil {
			return err
		}
	}

	return nil
}

func nextRow(tok *Tokenizer, rowNum *int) ([][]byte, bool, *Error) {
	fields, ok, err := tok.NextRow()
	if err != nil {
		return nil, false, newErr(FileOpenErr, "reading input: %v", err)
	}
	if !ok {
		return nil, false, nil
	}
	*rowNum++
	return fields, true, nil
}

// DecodeOptions configures a streaming Decode call.
type DecodeOptions struct{}

// Decode implements C7's decode-side driver: read the framed file from
// src and invoke emit once per decoded row (decoded field bytes, in
// schema column order). It stops at the terminal block and reports
// trailing bytes as corruption (spec §6.1).
func Decode(src io.Reader, emit func(header *FileHeader, fields [][]byte) *Error, _ DecodeOptions) (*FileHeader, *Error) {
	header, zerr := ReadFileHeader(src)
	if zerr != nil {
		return nil, zerr
	}

	for {
		blk, zerr := ReadBlock(src, header.Schema, header.Version)
		if zerr != nil {
			return nil, zerr
		}
		for _, row := range blk.Rows {
			if err := emit(header, row); err != nil {
				return nil, err
			}
		}
		if blk.LastBlock {
			break
		}
	}

	var probe [1]byte
	if n, err := src.Read(probe[:]); err == nil && n > 0 {
		return nil, newErr(CorruptedData, "trailing bytes after terminal block")
	}

	return header, nil
}
