package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/logv/zdw/internal/compressor"
	"github.com/logv/zdw/internal/spill"
	"github.com/logv/zdw/internal/zdwlog"
	"github.com/logv/zdw/pkg/zdw"
)

// repeatedFlag collects the values of a flag passed more than once,
// e.g. -meta k=v -meta k2=v2 (spec §6.4, §9 supplemented feature 2).
type repeatedFlag []string

func (r *repeatedFlag) String() string     { return strings.Join(*r, ",") }
func (r *repeatedFlag) Set(v string) error { *r = append(*r, v); return nil }

// RunConvertCmdLine implements the `zdw convert` encoder driver (spec
// §6.4, §4.7), grounded on the teacher's RunIngestCmdLine
// (src/lib/cmd_ingest.go): parse flags, then drive one Encode per input.
func RunConvertCmdLine() {
	outDir := flag.String("o", "", "output directory (default: alongside each input)")
	gzipFlag := flag.Bool("gzip", false, "compress output with gzip (default)")
	bzip2Flag := flag.Bool("bzip2", false, "compress output with bzip2")
	xzFlag := flag.Bool("xz", false, "compress output with xz")
	zstdFlag := flag.Bool("zstd", false, "compress output with zstd")
	trimSpaces := flag.Bool("trim-spaces", false, "trim trailing spaces from each field")
	validate := flag.Bool("validate", false, "re-decode the output and compare against the input")
	quiet := flag.Bool("quiet", false, "suppress progress logging")
	metaFlag := repeatedFlag{}
	flag.Var(&metaFlag, "meta", "metadata key=value (repeatable)")
	metaFile := flag.String("meta-file", "", "metadata sidecar file (spec §6.3)")
	memLimitMB := flag.Int("mem-limit-mb", 0, "per-block dictionary arena budget in MiB (default 3072)")
	compressorArgsStr := flag.String("compressor-args", "", "extra args forwarded to the bzip2/xz subprocess")
	stdin := flag.Bool("i", false, "read data from stdin instead of positional <stub>.sql files")

	flag.Parse()

	if *quiet {
		zdwlog.SetDebug(false)
	}

	kind := compressor.Gzip
	switch {
	case *bzip2Flag:
		kind = compressor.Bzip2
	case *xzFlag:
		kind = compressor.Xz
	case *zstdFlag:
		kind = compressor.Zstd
	case *gzipFlag:
		kind = compressor.Gzip
	}

	meta := zdw.NewMetadata()
	fileKeys := map[string]bool{}
	if *metaFile != "" {
		f, err := os.Open(*metaFile)
		if err != nil {
			exitOnErr(zdw.WrapFileOpenErr(*metaFile, err))
		}
		defer f.Close()
		m, zerr := zdw.ReadMetadataFile(f)
		exitOnErr(zerr)
		meta = m
		for _, k := range m.Keys() {
			fileKeys[k] = true
		}
	}
	for _, kv := range metaFlag {
		idx := strings.IndexByte(kv, '=')
		if idx < 0 {
			exitOnErr(zdw.NewBadMetadataParam(fmt.Sprintf("malformed -meta %q, expected key=value", kv)))
		}
		if fileKeys[kv[:idx]] {
			exitOnErr(zdw.NewBadMetadataParam(fmt.Sprintf("metadata key %q given both by -meta and in -meta-file", kv[:idx])))
		}
		if zerr := meta.Set(kv[:idx], kv[idx+1:]); zerr != nil {
			exitOnErr(zerr)
		}
	}

	memLimit := int64(0)
	if *memLimitMB > 0 {
		memLimit = int64(*memLimitMB) << 20
	}

	var compressorArgs []string
	if *compressorArgsStr != "" {
		compressorArgs = strings.Fields(*compressorArgsStr)
	}

	opts := convertOptions{
		outDir:         *outDir,
		kind:           kind,
		trimSpaces:     *trimSpaces,
		validate:       *validate,
		meta:           meta,
		memLimit:       memLimit,
		compressorArgs: compressorArgs,
	}

	if *stdin {
		runConvertStdin(opts)
		return
	}

	stubs := flag.Args()
	if len(stubs) == 0 {
		zdwlog.Warn("zdw convert: no input files given (pass <stub>.sql paths or -i)")
		os.Exit(zdw.MissingArgument.ExitCode())
	}

	for _, stub := range stubs {
		runConvertFile(stub, opts)
	}
}

type convertOptions struct {
	outDir         string
	kind           compressor.Kind
	trimSpaces     bool
	validate       bool
	meta           *zdw.Metadata
	memLimit       int64
	compressorArgs []string
}

func runConvertFile(sqlPath string, opts convertOptions) {
	base := strings.TrimSuffix(sqlPath, ".sql")
	descPath := base + ".desc"

	descFile, err := os.Open(descPath)
	if err != nil {
		exitOnErr(zdw.WrapMissingDescFile(descPath, err))
	}
	defer descFile.Close()

	schema, zerr := zdw.ReadSchema(descFile)
	exitOnErr(zerr)

	dataFile, err := os.Open(sqlPath)
	if err != nil {
		exitOnErr(zdw.WrapMissingSqlFile(sqlPath, err))
	}
	defer dataFile.Close()

	outPath := outputPath(base, opts.outDir, opts.kind)
	tmpPath := outPath + ".creating"

	out, err := os.Create(tmpPath)
	if err != nil {
		exitOnErr(zdw.WrapFileCreationErr(tmpPath, err))
	}

	cw, err := compressor.NewWriter(out, opts.kind, opts.compressorArgs)
	if err != nil {
		out.Close()
		os.Remove(tmpPath)
		exitOnErr(zdw.WrapFileCreationErr(tmpPath, err))
	}

	var src io.Reader = dataFile
	var recorded [][][]byte
	if opts.validate {
		src = &recordingReader{r: dataFile, trim: opts.trimSpaces, rows: &recorded}
	}

	zerr = zdw.Encode(cw, src, schema, zdw.EncodeOptions{
		MemLimitBytes:     opts.memLimit,
		TrimTrailingSpace: opts.trimSpaces,
		Metadata:          opts.meta,
	})
	if cerr := cw.Close(); zerr == nil && cerr != nil {
		zerr = zdw.WrapFileCreationErr(tmpPath, cerr)
	}
	out.Close()

	if zerr != nil {
		os.Remove(tmpPath)
		exitOnErr(zerr)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		exitOnErr(zdw.WrapFileCreationErr(outPath, err))
	}

	if opts.validate {
		validateOutput(outPath, opts.kind, recorded)
	}

	zdwlog.Debug("wrote", outPath)
}

func runConvertStdin(opts convertOptions) {
	descPath := flag.Arg(0)
	if descPath == "" {
		zdwlog.Warn("zdw convert -i: a .desc path is required as the sole positional argument")
		os.Exit(zdw.MissingArgument.ExitCode())
	}

	descFile, err := os.Open(descPath)
	if err != nil {
		exitOnErr(zdw.WrapMissingDescFile(descPath, err))
	}
	defer descFile.Close()

	schema, zerr := zdw.ReadSchema(descFile)
	exitOnErr(zerr)

	sp, err := spill.New("")
	if err != nil {
		exitOnErr(zdw.WrapFileCreationErr("spill", err))
	}
	defer sp.Remove()

	tok := zdw.NewTokenizer(bufio.NewReader(os.Stdin), opts.trimSpaces)
	var recorded [][][]byte
	for {
		fields, ok, err := tok.NextRow()
		if err != nil {
			exitOnErr(zdw.WrapFileOpenErr("stdin", err))
		}
		if !ok {
			break
		}
		cp := make([][]byte, len(fields))
		for i, f := range fields {
			b := make([]byte, len(f))
			copy(b, f)
			cp[i] = b
		}
		if err := sp.Put(cp); err != nil {
			exitOnErr(zdw.WrapFileCreationErr(sp.Path(), err))
		}
		if opts.validate {
			recorded = append(recorded, cp)
		}
	}
	sp.Close()

	replay, err := spill.OpenReader(sp.Path())
	if err != nil {
		exitOnErr(zdw.WrapFileOpenErr(sp.Path(), err))
	}
	defer replay.Close()

	outPath := outputPath("stdin", opts.outDir, opts.kind)
	tmpPath := outPath + ".creating"
	out, err := os.Create(tmpPath)
	if err != nil {
		exitOnErr(zdw.WrapFileCreationErr(tmpPath, err))
	}
	cw, err := compressor.NewWriter(out, opts.kind, opts.compressorArgs)
	if err != nil {
		out.Close()
		os.Remove(tmpPath)
		exitOnErr(zdw.WrapFileCreationErr(tmpPath, err))
	}

	zerr = zdw.EncodeRows(cw, schema, zdw.EncodeOptions{MemLimitBytes: opts.memLimit, Metadata: opts.meta}, func() ([][]byte, bool, error) {
		return replay.Next()
	})
	if cerr := cw.Close(); zerr == nil && cerr != nil {
		zerr = zdw.WrapFileCreationErr(tmpPath, cerr)
	}
	out.Close()

	if zerr != nil {
		os.Remove(tmpPath)
		exitOnErr(zerr)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		exitOnErr(zdw.WrapFileCreationErr(outPath, err))
	}

	if opts.validate {
		validateOutput(outPath, opts.kind, recorded)
	}

	zdwlog.Debug("wrote", outPath)
}

func outputPath(stub, outDir string, kind compressor.Kind) string {
	name := filepath.Base(stub) + ".zdw" + kind.Extension()
	if outDir == "" {
		return filepath.Join(filepath.Dir(stub), name)
	}
	return filepath.Join(outDir, name)
}

func validateOutput(outPath string, kind compressor.Kind, original [][][]byte) {
	in, err := os.Open(outPath)
	if err != nil {
		exitOnErr(zdw.WrapFileOpenErr(outPath, err))
	}
	defer in.Close()

	cr, err := compressor.NewReader(in, kind)
	if err != nil {
		exitOnErr(zdw.WrapFileOpenErr(outPath, err))
	}
	defer cr.Close()

	var decoded [][][]byte
	_, zerr := zdw.Decode(cr, func(_ *zdw.FileHeader, fields [][]byte) *zdw.Error {
		decoded = append(decoded, fields)
		return nil
	}, zdw.DecodeOptions{})
	exitOnErr(zerr)

	exitOnErr(zdw.Validate(original, decoded))
	zdwlog.Debug("validated", outPath)
}

// recordingReader wraps a data file, tee-ing each tokenized row into a
// slice so -validate can compare against it afterward without re-reading
// the (possibly already-consumed) source.
type recordingReader struct {
	r    io.Reader
	trim bool
	rows *[][][]byte

	buf []byte
	tok *zdw.Tokenizer
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	if rr.tok == nil {
		rr.tok = zdw.NewTokenizer(rr.r, rr.trim)
	}
	for len(rr.buf) == 0 {
		fields, ok, err := rr.tok.NextRow()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
		cp := make([][]byte, len(fields))
		for i, f := range fields {
			b := make([]byte, len(f))
			copy(b, f)
			cp[i] = b
		}
		*rr.rows = append(*rr.rows, cp)

		rr.buf = joinRow(cp)
	}
	n := copy(p, rr.buf)
	rr.buf = rr.buf[n:]
	return n, nil
}

func joinRow(fields [][]byte) []byte {
	var out []byte
	for i, f := range fields {
		if i > 0 {
			out = append(out, '\t')
		}
		out = append(out, f...)
	}
	out = append(out, '\n')
	return out
}
