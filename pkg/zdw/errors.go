package zdw

import "fmt"

// Kind identifies one member of the ERR_CODE taxonomy (spec §7). The
// teacher calls a single Error() helper that log.Fatalln's; zdw is a
// library first, so codec entry points return *Error instead, and only
// the CLI layer (cmd/) turns a Kind into a fatal exit with a distinct
// code.
type Kind string

const (
	NoArgs              Kind = "NoArgs"
	MissingArgument     Kind = "MissingArgument"
	BadParameter        Kind = "BadParameter"
	MissingSqlFile      Kind = "MissingSqlFile"
	MissingDescFile     Kind = "MissingDescFile"
	FileOpenErr         Kind = "FileOpenErr"
	FileCreationErr     Kind = "FileCreationErr"
	CantOpenTempFile    Kind = "CantOpenTempFile"
	DescFileMissingType Kind = "DescFileMissingTypeInfo"
	BadMetadataFile     Kind = "BadMetadataFile"
	BadMetadataParam    Kind = "BadMetadataParam"
	WrongNumOfColumns   Kind = "WrongNumOfColumnsOnARow"
	OutOfMemory         Kind = "OutOfMemory"
	UnsupportedVersion  Kind = "UnsupportedZdwVersion"
	GzreadFailed        Kind = "GzreadFailed"
	CorruptedData       Kind = "CorruptedData"
	BadRequestedColumn  Kind = "BadRequestedColumn"
	NoColumnsToOutput   Kind = "NoColumnsToOutput"
	FilesDiffer         Kind = "FilesDiffer"
	BadSchema           Kind = "BadSchema"
)

// Error is the one error type every codec entry point returns.
type Error struct {
	Kind Kind
	Msg  string

	// Row is the 1-based offending row number, set by WrongNumOfColumns.
	Row int
	// Path is the file this error pertains to, when known.
	Path string
}

func (e *Error) Error() string {
	switch {
	case e.Row > 0 && e.Path != "":
		return fmt.Sprintf("%s: %s (row %d, file %s)", e.Kind, e.Msg, e.Row, e.Path)
	case e.Row > 0:
		return fmt.Sprintf("%s: %s (row %d)", e.Kind, e.Msg, e.Row)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (file %s)", e.Kind, e.Msg, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func rowErr(kind Kind, row int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Row: row}
}

func pathErr(kind Kind, path string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Path: path}
}

// The Wrap* and New* helpers below are the exported constructors the
// cmd/ CLI layer uses to turn an os/io error (or a plain message) into
// the *Error taxonomy at the point where a path is already known.

func WrapFileOpenErr(path string, err error) *Error     { return pathErr(FileOpenErr, path, "%v", err) }
func WrapFileCreationErr(path string, err error) *Error { return pathErr(FileCreationErr, path, "%v", err) }
func WrapMissingSqlFile(path string, err error) *Error  { return pathErr(MissingSqlFile, path, "%v", err) }
func WrapMissingDescFile(path string, err error) *Error { return pathErr(MissingDescFile, path, "%v", err) }

func NewBadMetadataParam(msg string) *Error { return newErr(BadMetadataParam, "%s", msg) }

// ExitCode maps a Kind onto a small positive process exit code, used by
// the CLI layer. 0 is reserved for success and is never returned here.
func (k Kind) ExitCode() int {
	codes := map[Kind]int{
		NoArgs:              1,
		MissingArgument:     2,
		BadParameter:        3,
		MissingSqlFile:      4,
		MissingDescFile:     5,
		FileOpenErr:         6,
		FileCreationErr:     7,
		CantOpenTempFile:    8,
		DescFileMissingType: 9,
		BadMetadataFile:     10,
		BadMetadataParam:    11,
		WrongNumOfColumns:   12,
		OutOfMemory:         13,
		UnsupportedVersion:  14,
		GzreadFailed:        15,
		CorruptedData:       16,
		BadRequestedColumn:  17,
		NoColumnsToOutput:   18,
		FilesDiffer:         19,
		BadSchema:           20,
	}
	if code, ok := codes[k]; ok {
		return code
	}
	return 99
}
