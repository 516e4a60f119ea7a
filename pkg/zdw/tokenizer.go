package zdw

import (
	"bufio"
	"io"
)

// Tokenizer implements C1: splitting tab-delimited physical lines into
// fields, honoring backslash-escaped tabs and multi-line escaped records
// (spec §4.1). The tokenizer never rejects input; a row it cannot fully
// read before EOF is reported as an empty row, which callers treat as
// end-of-input.
type Tokenizer struct {
	// TrimTrailingSpace, when set, strips trailing ASCII-space bytes
	// (0x20) from each returned field.
	TrimTrailingSpace bool

	r *bufio.Reader
}

// NewTokenizer wraps r for row-at-a-time reading.
func NewTokenizer(r io.Reader, trimTrailingSpace bool) *Tokenizer {
	return &Tokenizer{TrimTrailingSpace: trimTrailingSpace, r: bufio.NewReaderSize(r, 64*1024)}
}

// NextRow returns the next row's fields. A nil, nil result (empty slice,
// nil error) with ok=false signals end-of-input.
func (t *Tokenizer) NextRow() (fields [][]byte, ok bool, err error) {
	line, eof, err := t.readLogicalLine()
	if err != nil {
		return nil, false, err
	}
	if eof {
		return nil, false, nil
	}

	fields = t.splitFields(line)
	return fields, true, nil
}

// readLogicalLine reads one LF-terminated physical line, then keeps
// appending further physical lines while the running byte tally ends in
// an odd number of consecutive backslashes (an escaped newline). The
// escaped newline itself is preserved as literal content in the returned
// buffer, since it is part of the record, not a delimiter. A trailing CR
// in the final physical line is preserved verbatim (format version >= 5c,
// spec §4.1).
func (t *Tokenizer) readLogicalLine() (line []byte, eof bool, err error) {
	var buf []byte

	for {
		chunk, rerr := t.r.ReadBytes('\n')
		hasNL := len(chunk) > 0 && chunk[len(chunk)-1] == '\n'
		content := chunk
		if hasNL {
			content = chunk[:len(chunk)-1]
		}
		buf = append(buf, content...)

		if rerr != nil {
			if rerr == io.EOF {
				if trailingBackslashCount(buf)%2 == 1 {
					// EOF reached mid-escape: treat as end-of-input.
					return nil, true, nil
				}
				if len(buf) == 0 {
					return nil, true, nil
				}
				return buf, false, nil
			}
			return nil, false, rerr
		}

		if trailingBackslashCount(buf)%2 == 1 {
			// Odd trailing backslashes: the newline we just consumed was
			// escaped and is part of the record. Put it back and keep
			// reading more physical lines.
			buf = append(buf, '\n')
			continue
		}

		return buf, false, nil
	}
}

func trailingBackslashCount(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '\\'; i-- {
		n++
	}
	return n
}

// splitFields splits line on tabs, treating a tab preceded by an odd
// number of consecutive backslashes as part of the field rather than a
// delimiter.
func (t *Tokenizer) splitFields(line []byte) [][]byte {
	fields := make([][]byte, 0, 8)
	start := 0

	for i := 0; i < len(line); i++ {
		if line[i] != '\t' {
			continue
		}

		bs := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			bs++
		}
		if bs%2 == 1 {
			continue
		}

		fields = append(fields, t.maybeTrim(line[start:i]))
		start = i + 1
	}
	fields = append(fields, t.maybeTrim(line[start:]))

	return fields
}

func (t *Tokenizer) maybeTrim(field []byte) []byte {
	if !t.TrimTrailingSpace {
		return field
	}
	end := len(field)
	for end > 0 && field[end-1] == ' ' {
		end--
	}
	return field[:end]
}
