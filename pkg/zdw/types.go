package zdw

// ColumnType is a tagged value identifying a column's storage shape
// (spec §3). Values 4-5 are legacy visitor-id columns decoded only in
// files older than FormatVersion 8. Values 64-65 are virtual columns,
// materialized at decode time only and never stored on disk.
type ColumnType uint8

const (
	VARCHAR         ColumnType = 0
	TEXT            ColumnType = 1
	DATETIME        ColumnType = 2
	CHAR_2          ColumnType = 3
	VISID_LOW       ColumnType = 4
	VISID_HIGH      ColumnType = 5
	CHAR            ColumnType = 6
	TINY            ColumnType = 7
	SHORT           ColumnType = 8
	LONG            ColumnType = 9
	LONGLONG        ColumnType = 10
	DECIMAL         ColumnType = 11
	TINY_SIGNED     ColumnType = 12
	SHORT_SIGNED    ColumnType = 13
	LONG_SIGNED     ColumnType = 14
	LONGLONG_SIGNED ColumnType = 15
	TINYTEXT        ColumnType = 16
	MEDIUMTEXT      ColumnType = 17
	LONGTEXT        ColumnType = 18

	// Virtual columns, output-only.
	VirtualExportBasename ColumnType = 64
	VirtualExportRowNum   ColumnType = 65
)

func (t ColumnType) String() string {
	switch t {
	case VARCHAR:
		return "VARCHAR"
	case TEXT:
		return "TEXT"
	case DATETIME:
		return "DATETIME"
	case CHAR_2:
		return "CHAR_2"
	case VISID_LOW:
		return "VISID_LOW"
	case VISID_HIGH:
		return "VISID_HIGH"
	case CHAR:
		return "CHAR"
	case TINY:
		return "TINY"
	case SHORT:
		return "SHORT"
	case LONG:
		return "LONG"
	case LONGLONG:
		return "LONGLONG"
	case DECIMAL:
		return "DECIMAL"
	case TINY_SIGNED:
		return "TINY_SIGNED"
	case SHORT_SIGNED:
		return "SHORT_SIGNED"
	case LONG_SIGNED:
		return "LONG_SIGNED"
	case LONGLONG_SIGNED:
		return "LONGLONG_SIGNED"
	case TINYTEXT:
		return "TINYTEXT"
	case MEDIUMTEXT:
		return "MEDIUMTEXT"
	case LONGTEXT:
		return "LONGTEXT"
	case VirtualExportBasename:
		return "virtual_export_basename"
	case VirtualExportRowNum:
		return "virtual_export_row"
	default:
		return "UNKNOWN"
	}
}

// IsStringLike reports whether values of this type are dictionary-backed
// (spec §3, Dictionary).
func (t ColumnType) IsStringLike() bool {
	switch t {
	case VARCHAR, TEXT, TINYTEXT, MEDIUMTEXT, LONGTEXT, DATETIME, CHAR_2, DECIMAL:
		return true
	default:
		return false
	}
}

// IsSigned reports whether the raw stored bytes should be reinterpreted
// as a signed value at decode time (spec §3, Invariants).
func (t ColumnType) IsSigned() bool {
	switch t {
	case TINY_SIGNED, SHORT_SIGNED, LONG_SIGNED, LONGLONG_SIGNED:
		return true
	default:
		return false
	}
}

// IsVirtual reports whether this is an output-only synthetic column.
func (t ColumnType) IsVirtual() bool {
	return t == VirtualExportBasename || t == VirtualExportRowNum
}

// Column describes one schema entry: name, type, and the char_size that
// matters only for VARCHAR and CHAR(n).
type Column struct {
	Name     string
	Type     ColumnType
	CharSize uint16
}

// Schema is the ordered sequence of Columns for a file (spec §3, Schema).
type Schema struct {
	Columns []Column
}

// NumColumns returns the number of non-virtual columns in the file, i.e.
// the N used throughout §6.1's wire format.
func (s *Schema) NumColumns() int {
	return len(s.Columns)
}

// IndexOf returns the 0-based index of a column by case-insensitive name,
// or -1 if absent (spec §4.9, case-insensitive name matching).
func (s *Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if equalFoldASCII(c.Name, name) {
			return i
		}
	}
	return -1
}

// asciiLower lowercases ASCII letters, used for case-insensitive map keys
// (spec §4.9).
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
