package zdw

import (
	"bufio"
	"io"
	"strings"
)

// Metadata implements C11: an insertion-order-preserving key=value map
// (spec §6.3, §4.11). Go map iteration order is unstable, so order is
// kept in a parallel key slice, grounded on the teacher's small
// deterministic-field structs (src/lib/column_store.go's SavedColumnInfo).
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns an empty, ready-to-use Metadata.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Set adds or overwrites key, preserving first-seen position.
func (m *Metadata) Set(key, value string) *Error {
	if strings.Contains(key, "=") {
		return newErr(BadMetadataParam, "metadata key %q must not contain '='", key)
	}
	if strings.ContainsAny(key, "\n") || strings.ContainsAny(value, "\n") {
		return newErr(BadMetadataParam, "metadata key/value must not contain a newline")
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return nil
}

// Get returns key's value and whether it was present.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns metadata keys in insertion order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of entries.
func (m *Metadata) Len() int { return len(m.keys) }

// ReadMetadataFile parses the sidecar `key=value` metadata file format
// (spec §6.3), reporting the 1-based offending line number on error.
func ReadMetadataFile(r io.Reader) (*Metadata, *Error) {
	m := NewMetadata()
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, newErr(BadMetadataFile, "missing '=' on line %d", lineNo)
		}

		key := line[:idx]
		value := line[idx+1:]

		if err := m.Set(key, value); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newErr(FileOpenErr, "reading metadata file: %v", err)
	}
	return m, nil
}

// WriteMetadataFile serializes m back to the sidecar `key=value` format.
func WriteMetadataFile(w io.Writer, m *Metadata) *Error {
	bw := bufio.NewWriter(w)
	for _, k := range m.keys {
		if _, err := bw.WriteString(k + "=" + m.values[k] + "\n"); err != nil {
			return newErr(FileCreationErr, "writing metadata file: %v", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return newErr(FileCreationErr, "writing metadata file: %v", err)
	}
	return nil
}

// WriteMetadataBlock serializes the version>=11 in-file metadata block
// (spec §6.1): meta_len u32 followed by (key\0 value\0) pairs in
// insertion order.
func WriteMetadataBlock(w io.Writer, m *Metadata) *Error {
	var body []byte
	for _, k := range m.keys {
		body = append(body, []byte(k)...)
		body = append(body, 0)
		body = append(body, []byte(m.values[k])...)
		body = append(body, 0)
	}

	if err := writeUint32LE(w, uint32(len(body))); err != nil {
		return newErr(FileCreationErr, "writing meta_len: %v", err)
	}
	if _, err := w.Write(body); err != nil {
		return newErr(FileCreationErr, "writing metadata block: %v", err)
	}
	return nil
}

// ReadMetadataBlock reads the inverse of WriteMetadataBlock.
func ReadMetadataBlock(r io.Reader) (*Metadata, *Error) {
	metaLen, err := readUintLE(r, 4)
	if err != nil {
		return nil, newErr(CorruptedData, "reading meta_len: %v", err)
	}

	body := make([]byte, metaLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, newErr(CorruptedData, "reading metadata block: %v", err)
	}

	m := NewMetadata()
	i := 0
	for i < len(body) {
		keyEnd := indexByte(body, i, 0)
		if keyEnd < 0 {
			return nil, newErr(CorruptedData, "truncated metadata key")
		}
		key := string(body[i:keyEnd])

		valStart := keyEnd + 1
		valEnd := indexByte(body, valStart, 0)
		if valEnd < 0 {
			return nil, newErr(CorruptedData, "truncated metadata value")
		}
		value := string(body[valStart:valEnd])

		if err := m.Set(key, value); err != nil {
			return nil, err
		}
		i = valEnd + 1
	}
	return m, nil
}

func indexByte(b []byte, from int, target byte) int {
	for i := from; i < len(b); i++ {
		if b[i] == target {
			return i
		}
	}
	return -1
}
