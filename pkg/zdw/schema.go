package zdw

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ReadSchema implements C2: parsing a `.desc` sidecar of
// `name<TAB>sql-like-type` lines into an ordered Schema (spec §4.2). A
// leading line whose first five characters case-insensitively equal
// "Field" is a header and is skipped.
func ReadSchema(r io.Reader) (*Schema, *Error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	cols := make([]Column, 0, 16)
	seenFirst := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if !seenFirst {
			seenFirst = true
			if len(line) >= 5 && equalFoldASCII(line[:5], "Field") {
				continue
			}
		}

		idx := strings.IndexByte(line, '\t')
		if idx < 0 {
			return nil, newErr(BadSchema, "no tab found in descriptor line %q", line)
		}

		name := line[:idx]
		typeExpr := strings.TrimRight(line[idx+1:], "\r")

		ctype, charSize, err := ParseDescType(typeExpr)
		if err != nil {
			return nil, err
		}

		cols = append(cols, Column{Name: name, Type: ctype, CharSize: charSize})
	}
	if err := scanner.Err(); err != nil {
		return nil, newErr(FileOpenErr, "reading schema: %v", err)
	}

	return &Schema{Columns: cols}, nil
}

// WriteSchema writes descriptor lines for s in the `.desc` format (spec
// §6.2), one column per line, without a "Field" header line.
func WriteSchema(w io.Writer, s *Schema) *Error {
	bw := bufio.NewWriter(w)
	for _, c := range s.Columns {
		if _, err := bw.WriteString(c.Name); err != nil {
			return newErr(FileCreationErr, "writing schema: %v", err)
		}
		if _, err := bw.WriteString("\t"); err != nil {
			return newErr(FileCreationErr, "writing schema: %v", err)
		}
		if _, err := bw.WriteString(descTypeExpr(c)); err != nil {
			return newErr(FileCreationErr, "writing schema: %v", err)
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return newErr(FileCreationErr, "writing schema: %v", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return newErr(FileCreationErr, "writing schema: %v", err)
	}
	return nil
}

func descTypeExpr(c Column) string {
	switch c.Type {
	case VARCHAR:
		return "varchar(" + strconv.Itoa(int(c.CharSize)) + ")"
	case CHAR:
		return "char(1)"
	case CHAR_2:
		return "char(2)"
	case TINYTEXT:
		return "tinytext"
	case MEDIUMTEXT:
		return "mediumtext"
	case LONGTEXT:
		return "longtext"
	case TEXT:
		return "text"
	case DATETIME:
		return "datetime"
	case DECIMAL:
		return "decimal(65,30)"
	case TINY:
		return "tinyint unsigned"
	case TINY_SIGNED:
		return "tinyint"
	case SHORT:
		return "smallint unsigned"
	case SHORT_SIGNED:
		return "smallint"
	case LONGLONG:
		return "bigint unsigned"
	case LONGLONG_SIGNED:
		return "bigint"
	case LONG:
		return "int unsigned"
	case LONG_SIGNED:
		return "int"
	default:
		return "int"
	}
}

// ParseDescType maps a `.desc` type expression to a ColumnType and its
// char_size, by prefix as specified in spec §4.2.
func ParseDescType(expr string) (ColumnType, uint16, *Error) {
	e := strings.ToLower(strings.TrimSpace(expr))

	switch {
	case strings.HasPrefix(e, "varchar("):
		n, err := extractParenInt(e)
		if err != nil {
			return 0, 0, err
		}
		return VARCHAR, uint16(n), nil

	case strings.HasPrefix(e, "char(1)"):
		return CHAR, 0, nil

	case strings.HasPrefix(e, "char(2)"):
		return CHAR_2, 0, nil

	case strings.HasPrefix(e, "char("):
		n, err := extractParenInt(e)
		if err != nil {
			return 0, 0, err
		}
		if n >= 3 {
			return VARCHAR, uint16(n), nil
		}
		return CHAR, 0, nil

	case strings.HasPrefix(e, "tinytext"):
		return TINYTEXT, 0, nil

	case strings.HasPrefix(e, "mediumtext"):
		return MEDIUMTEXT, 0, nil

	case strings.HasPrefix(e, "longtext"):
		return LONGTEXT, 0, nil

	case strings.HasPrefix(e, "text"):
		return TEXT, 0, nil

	case strings.HasPrefix(e, "datetime"):
		return DATETIME, 0, nil

	case strings.HasPrefix(e, "decimal"), strings.HasPrefix(e, "udecimal"):
		return DECIMAL, 0, nil

	case strings.HasPrefix(e, "tinyint"):
		if strings.Contains(e, "unsigned") {
			return TINY, 0, nil
		}
		return TINY_SIGNED, 0, nil

	case strings.HasPrefix(e, "smallint"):
		if strings.Contains(e, "unsigned") {
			return SHORT, 0, nil
		}
		return SHORT_SIGNED, 0, nil

	case strings.HasPrefix(e, "bigint"):
		if strings.Contains(e, "unsigned") {
			return LONGLONG, 0, nil
		}
		return LONGLONG_SIGNED, 0, nil

	default:
		if e == "" {
			return 0, 0, newErr(DescFileMissingType, "empty type expression")
		}
		if strings.Contains(e, "unsigned") {
			return LONG, 0, nil
		}
		return LONG_SIGNED, 0, nil
	}
}

func extractParenInt(e string) (int, *Error) {
	open := strings.IndexByte(e, '(')
	close := strings.IndexByte(e, ')')
	if open < 0 || close < 0 || close < open {
		return 0, newErr(DescFileMissingType, "malformed type expression %q", e)
	}
	inner := e[open+1 : close]
	if comma := strings.IndexByte(inner, ','); comma >= 0 {
		inner = inner[:comma]
	}
	n, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil {
		return 0, newErr(DescFileMissingType, "bad numeric size in %q: %v", e, err)
	}
	return n, nil
}
