package zdw

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// Validate implements the "-validate" round-trip check from
// original_source/cplusplus/ConvertToZDW.cpp: re-decode a just-written
// file and confirm its rows equal the original input rows, modulo
// trimTrailingSpace. original is the full sequence of tokenized input
// rows in order; decoded is the same shape read back from the output
// file. A fast xxhash pre-check (grounded on cockroachdb-pebble's go.mod
// dependency) short-circuits the common all-equal case; the full
// byte-for-byte comparison always runs before reporting FilesDiffer, so
// the hash is an optimization, not the correctness check itself.
func Validate(original, decoded [][][]byte) *Error {
	if len(original) != len(decoded) {
		return newErr(FilesDiffer, "row count differs: input had %d rows, decoded %d", len(original), len(decoded))
	}

	if hashRows(original) == hashRows(decoded) {
		return nil
	}

	for i := range original {
		if len(original[i]) != len(decoded[i]) {
			return newErr(FilesDiffer, "row %d column count differs", i+1)
		}
		for c := range original[i] {
			if !bytes.Equal(original[i][c], decoded[i][c]) {
				return newErr(FilesDiffer, "row %d column %d differs: %q vs %q", i+1, c, original[i][c], decoded[i][c])
			}
		}
	}
	return nil
}

func hashRows(rows [][][]byte) uint64 {
	h := xxhash.New()
	for _, row := range rows {
		for _, field := range row {
			h.Write(field)
			h.Write([]byte{0})
		}
		h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
