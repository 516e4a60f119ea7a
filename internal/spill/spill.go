// Package spill implements the process-internal scratch storage used
// when an encoder input stream cannot be re-read (stdin, a pipe) but a
// second pass over the same rows is needed — the stdin input path of
// `zdw convert -i`, whose rows are spilled and then replayed into the
// encoder (spec §9 supplemented feature 4).
//
// Spill files are gob-encoded rows, grounded directly on the teacher's
// own gob-over-temp-file pattern (logv-sybil's src/lib/file_encoder.go,
// table_decoder.go); this is the one place gob is reused from the
// teacher, since a spill file is scratch state, never part of the zdw
// wire format.
package spill

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Writer appends gob-encoded rows to a uniquely named temp file. The
// uuid suffix (rather than a PID-based name, as the teacher's own
// temp-file helpers use) avoids collisions across concurrent encodes
// sharing a temp directory.
type Writer struct {
	file *os.File
	enc  *gob.Encoder
}

// New creates a spill file under dir (os.TempDir() if empty).
func New(dir string) (*Writer, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, "zdw-spill-"+uuid.NewString()+".gob")
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f, enc: gob.NewEncoder(f)}, nil
}

// Put appends one row.
func (w *Writer) Put(row [][]byte) error {
	return w.enc.Encode(row)
}

// Path returns the underlying file's path.
func (w *Writer) Path() string { return w.file.Name() }

// Close closes the underlying file without removing it.
func (w *Writer) Close() error { return w.file.Close() }

// Remove closes (if needed) and deletes the spill file.
func (w *Writer) Remove() error {
	w.file.Close()
	return os.Remove(w.file.Name())
}

// Reader replays rows previously written by a Writer.
type Reader struct {
	file *os.File
	dec  *gob.Decoder
}

// OpenReader opens a previously-closed spill file for replay.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, dec: gob.NewDecoder(f)}, nil
}

// Next returns the next spilled row, or ok=false at end of file.
func (r *Reader) Next() (row [][]byte, ok bool, err error) {
	if err := r.dec.Decode(&row); err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row, true, nil
}

func (r *Reader) Close() error { return r.file.Close() }
