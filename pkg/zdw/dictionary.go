package zdw

import (
	"bytes"
	"io"
	"sort"
)

// DefaultMemoryLimitBytes is the default process-wide RAM budget consulted
// by the dictionary arena (spec §5).
const DefaultMemoryLimitBytes int64 = 3 << 30

// arenaChunkBytes is the nominal chunk size the original C++ stringheap
// arena allocates in (spec §4.3). zdw tracks live bytes directly instead
// of real chunked allocations (spec §9, "Memory probe": "An implementation
// free to use a single growable byte buffer plus a hash map... is
// equivalent"), but keeps the constant since a single entry larger than
// one chunk is still worth flagging early rather than only at the byte
// budget boundary.
const arenaChunkBytes = 64 << 20

// Dictionary implements C3: an insertion-order-independent set of distinct
// non-empty string-like field values for one block, assigned 1-based byte
// offsets once serialized (spec §3, §4.3).
type Dictionary struct {
	limit int64
	used  int64
	set   map[string]struct{}

	sorted  []string
	offsets map[string]uint64
}

// NewDictionary creates an empty dictionary bounded by limitBytes (<=0
// uses DefaultMemoryLimitBytes).
func NewDictionary(limitBytes int64) *Dictionary {
	if limitBytes <= 0 {
		limitBytes = DefaultMemoryLimitBytes
	}
	return &Dictionary{limit: limitBytes, set: make(map[string]struct{})}
}

// Insert adds s to the dictionary if not already present. It returns
// ok=false when this insertion pushed the arena's live byte estimate at or
// past the configured budget; per spec §5 this is a soft limit — the
// insertion still happens, the caller just must close the block at the
// next row boundary.
func (d *Dictionary) Insert(s string) (ok bool) {
	if _, exists := d.set[s]; exists {
		return true
	}

	// Approximate per-entry cost: the null-terminated on-wire bytes plus
	// a constant for Go map bookkeeping overhead.
	cost := int64(len(s)) + 1 + 48

	d.set[s] = struct{}{}
	d.used += cost

	if d.used >= d.limit || cost >= arenaChunkBytes {
		return false
	}
	return true
}

// Len returns the number of distinct entries inserted so far.
func (d *Dictionary) Len() int { return len(d.set) }

// UsedBytes returns the arena's live byte estimate.
func (d *Dictionary) UsedBytes() int64 { return d.used }

// Offset returns the 1-based byte offset assigned to s during Serialize.
// It is defined only after Serialize has run; ok is false for a string
// that was never inserted.
func (d *Dictionary) Offset(s string) (offset uint64, ok bool) {
	if s == "" {
		return 0, true
	}
	offset, ok = d.offsets[s]
	return offset, ok
}

// Serialize writes the on-wire dictionary encoding (spec §3, §6.1): one
// origin null byte, followed by each distinct entry sorted by byte-wise
// comparison and null-terminated, except the final entry, whose trailing
// null is omitted since the decoder bounds the blob by dict_size (spec
// §8 scenario 1: a 2-entry dictionary "hi", "world" serializes to exactly
// 9 bytes, one less than a naive every-entry-terminated encoding would
// produce). It returns the number of bytes written and populates Offset
// for every entry.
func (d *Dictionary) Serialize(w io.Writer) (uint64, error) {
	d.sorted = make([]string, 0, len(d.set))
	for s := range d.set {
		d.sorted = append(d.sorted, s)
	}
	sort.Strings(d.sorted)

	d.offsets = make(map[string]uint64, len(d.sorted))

	var buf bytes.Buffer
	buf.WriteByte(0)

	for i, s := range d.sorted {
		d.offsets[s] = uint64(buf.Len())
		buf.WriteString(s)
		if i != len(d.sorted)-1 {
			buf.WriteByte(0)
		}
	}

	n, err := w.Write(buf.Bytes())
	return uint64(n), err
}

// stringDict is satisfied by both the flat post-version-9 dictionary blob
// and the legacy prefix-tree dictionary, so ReadBlock can decode either
// without caring which wire layout produced it.
type stringDict interface {
	Lookup(index uint64) (string, *Error)
}

// DictionaryView is the read side of C3: a decoded, bounds-checked byte
// blob the block reader indexes by offset (spec §4.6).
type DictionaryView struct {
	blob []byte
}

// ParseDictionary wraps a raw dict_bytes blob (spec §6.1) for lookups. The
// blob is not copied.
func ParseDictionary(blob []byte) *DictionaryView {
	return &DictionaryView{blob: blob}
}

// Lookup returns the null-terminated (or blob-end-terminated) string at
// offset, or CorruptedData if offset is out of range.
func (v *DictionaryView) Lookup(offset uint64) (string, *Error) {
	if offset == 0 {
		return "", nil
	}
	if offset >= uint64(len(v.blob)) {
		return "", newErr(CorruptedData, "dictionary offset %d out of range (blob size %d)", offset, len(v.blob))
	}

	end := offset
	for end < uint64(len(v.blob)) && v.blob[end] != 0 {
		end++
	}
	return string(v.blob[offset:end]), nil
}

// prefixTreeBlockSize is the fixed chunk width of the pre-version-9
// dictionary's tree nodes (spec §6.1's "8-byte-block prefix-tree").
const prefixTreeBlockSize = 8

// prefixTreeNode is one entry of the legacy dictionary: an 8-byte chunk of
// a string plus the index of the node holding the chunk preceding it.
// Index 0 is a zero-valued sentinel, matching the "no entry" index 0
// convention used by the flat dictionary's byte-offset 0.
type prefixTreeNode struct {
	chunk    [prefixTreeBlockSize]byte
	prevChar uint64
}

// PrefixTreeDictionary is the pre-version-9 dictionary layout: a tree of
// fixed-size chunks, each pointing to the chunk preceding it, read from
// the leaf backward to reconstruct a full string (spec §6.1).
type PrefixTreeDictionary struct {
	nodes []prefixTreeNode
}

// Lookup walks the chunk chain starting at the leaf index, collecting
// chunks from the leaf toward the root. Concatenating those chunks
// leaf-first and reversing the whole byte run restores the original
// string, since each chunk was laid out on disk already reversed and
// null-padded at its front when incomplete.
func (d *PrefixTreeDictionary) Lookup(index uint64) (string, *Error) {
	if index == 0 {
		return "", nil
	}
	if index >= uint64(len(d.nodes)) {
		return "", newErr(CorruptedData, "prefix-tree dictionary index %d out of range (%d entries)", index, len(d.nodes)-1)
	}

	var buf []byte
	for cur := index; cur != 0; {
		if cur >= uint64(len(d.nodes)) {
			return "", newErr(CorruptedData, "prefix-tree dictionary prev_char index %d out of range (%d entries)", cur, len(d.nodes)-1)
		}
		node := d.nodes[cur]
		buf = append(buf, node.chunk[:]...)
		cur = node.prevChar
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	buf = bytes.TrimRight(buf, "\x00")

	return string(buf), nil
}

// legacyVisitorEntry is one node of the pre-version-8 visitor dictionary:
// a raw 64-bit visitor id plus the index of the entry holding the id it
// was paired with (its VISID_LOW counterpart).
type legacyVisitorEntry struct {
	vid    uint64
	prevID uint64
}

// legacyVisitorDictionary resolves VISID_HIGH/VISID_LOW column pairs
// (spec §4.6, §6.1) for files older than version 8. Index 0 is a
// zero-valued sentinel, same convention as PrefixTreeDictionary.
type legacyVisitorDictionary struct {
	entries []legacyVisitorEntry
}

// lookup returns the visitor id at index and the paired id one PrevID hop
// away (the value VISID_LOW emits for the same row).
func (d *legacyVisitorDictionary) lookup(index uint64) (vid, pairedVID uint64, zerr *Error) {
	if index >= uint64(len(d.entries)) {
		return 0, 0, newErr(CorruptedData, "visitor dictionary index %d out of range (%d entries)", index, len(d.entries)-1)
	}
	entry := d.entries[index]
	if entry.prevID >= uint64(len(d.entries)) {
		return 0, 0, newErr(CorruptedData, "visitor dictionary prev-id index %d out of range (%d entries)", entry.prevID, len(d.entries)-1)
	}
	return entry.vid, d.entries[entry.prevID].vid, nil
}
