package zdw

import (
	"path/filepath"
	"strconv"
	"strings"
)

// projectedColumn is one output position: either a real schema column
// (SchemaIndex >= 0) or a virtual one (Virtual set).
type projectedColumn struct {
	Name        string
	SchemaIndex int
	Virtual     ColumnType
}

// Shaper implements C9: projecting decoded rows onto a requested output
// column list (spec §4.9). All-columns is the default; an explicit list
// selects an ordered subset (optionally excluded instead of selected),
// matched case-insensitively, with strict/lenient/pad handling for names
// absent from the schema. Virtual columns are appended to the output
// only when named explicitly — they are never part of "all columns".
type Shaper struct {
	schema  *Schema
	columns []projectedColumn
}

// NewShaper builds the identity (all real columns, in schema order)
// projection.
func NewShaper(schema *Schema) *Shaper {
	cols := make([]projectedColumn, schema.NumColumns())
	for i, c := range schema.Columns {
		cols[i] = projectedColumn{Name: c.Name, SchemaIndex: i}
	}
	return &Shaper{schema: schema, columns: cols}
}

// NewShaperFromNames builds a projection from an explicit, ordered list
// of requested names (spec §4.9). exclude inverts the selection to "all
// columns except these". lenient drops an unresolvable name instead of
// returning BadRequestedColumn; pad instead keeps it as an always-empty
// output column. lenient and pad are mutually exclusive preferences —
// pad takes precedence when both are set, since pad is the more
// information-preserving choice.
func NewShaperFromNames(schema *Schema, names []string, exclude, lenient, pad bool) (*Shaper, *Error) {
	if exclude {
		return newExcludeShaper(schema, names)
	}

	cols := make([]projectedColumn, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := asciiLower(name)
		if seen[key] {
			switch {
			case pad:
				cols = append(cols, projectedColumn{Name: name, SchemaIndex: -2})
			case lenient:
				continue
			default:
				return nil, newErr(BadRequestedColumn, "duplicate requested column %q", name)
			}
			continue
		}
		seen[key] = true

		if vt, isVirtual := virtualColumnByName(name); isVirtual {
			cols = append(cols, projectedColumn{Name: name, SchemaIndex: -1, Virtual: vt})
			continue
		}

		idx := schema.IndexOf(name)
		if idx < 0 {
			switch {
			case pad:
				cols = append(cols, projectedColumn{Name: name, SchemaIndex: -2})
			case lenient:
				continue
			default:
				return nil, newErr(BadRequestedColumn, "no such column %q", name)
			}
			continue
		}
		cols = append(cols, projectedColumn{Name: name, SchemaIndex: idx})
	}

	if len(cols) == 0 {
		return nil, newErr(NoColumnsToOutput, "no requested columns resolved to schema columns")
	}

	return &Shaper{schema: schema, columns: cols}, nil
}

func newExcludeShaper(schema *Schema, exclude []string) (*Shaper, *Error) {
	excluded := make(map[int]bool, len(exclude))
	for _, name := range exclude {
		idx := schema.IndexOf(name)
		if idx < 0 {
			return nil, newErr(BadRequestedColumn, "no such column %q", name)
		}
		excluded[idx] = true
	}

	cols := make([]projectedColumn, 0, schema.NumColumns())
	for i, c := range schema.Columns {
		if excluded[i] {
			continue
		}
		cols = append(cols, projectedColumn{Name: c.Name, SchemaIndex: i})
	}

	if len(cols) == 0 {
		return nil, newErr(NoColumnsToOutput, "excluding all columns leaves nothing to output")
	}

	return &Shaper{schema: schema, columns: cols}, nil
}

func virtualColumnByName(name string) (ColumnType, bool) {
	switch {
	case equalFoldASCII(name, "virtual_export_basename"), equalFoldASCII(name, "export_basename"):
		return VirtualExportBasename, true
	case equalFoldASCII(name, "virtual_export_row"), equalFoldASCII(name, "export_row"), equalFoldASCII(name, "row_num"):
		return VirtualExportRowNum, true
	default:
		return 0, false
	}
}

// ExportBasename computes the virtual_export_basename value for path
// (spec §4.9): the input filename stripped of its directory prefix and
// all trailing ".zdw"-prefixed suffixes, so "dir/mytable.zdw.gz" and
// "dir/mytable.zdw" both yield "mytable".
func ExportBasename(path string) string {
	name := filepath.Base(path)
	for {
		idx := strings.Index(name, ".zdw")
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	return name
}

// Names returns the output column names in projection order.
func (s *Shaper) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Apply projects one decoded row (schema.NumColumns() fields, in schema
// order) onto the output column list. basename and rowNum materialize
// virtual columns; rowNum is 1-based.
func (s *Shaper) Apply(row [][]byte, basename string, rowNum int) [][]byte {
	out := make([][]byte, len(s.columns))
	for i, c := range s.columns {
		switch {
		case c.SchemaIndex == -2:
			out[i] = nil
		case c.SchemaIndex == -1:
			out[i] = s.materializeVirtual(c.Virtual, basename, rowNum)
		default:
			out[i] = row[c.SchemaIndex]
		}
	}
	return out
}

func (s *Shaper) materializeVirtual(t ColumnType, basename string, rowNum int) []byte {
	switch t {
	case VirtualExportBasename:
		return []byte(basename)
	case VirtualExportRowNum:
		return []byte(strconv.Itoa(rowNum))
	default:
		return nil
	}
}
