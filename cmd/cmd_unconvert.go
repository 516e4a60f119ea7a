package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/logv/zdw/internal/compressor"
	"github.com/logv/zdw/internal/zdwlog"
	"github.com/logv/zdw/pkg/zdw"
)

// RunUnconvertCmdLine implements the `zdw unconvert` decoder driver
// (spec §6.4, §4.6-§4.9), grounded on the same flag-per-command shape as
// RunConvertCmdLine / the teacher's RunIngestCmdLine.
func RunUnconvertCmdLine() {
	outDir := flag.String("o", "", "output directory (default: alongside each input)")
	columns := flag.String("columns", "", "comma-separated ordered column list to output (default: all)")
	columnsPad := flag.Bool("columns-pad", false, "pad unresolvable requested columns with empty values instead of failing")
	columnsExclude := flag.Bool("columns-exclude", false, "treat -columns as an exclusion list")
	lenient := flag.Bool("lenient", false, "drop unresolvable requested columns instead of failing")
	descOnly := flag.Bool("desc-only", false, "print the schema and exit, without decoding rows")
	testOnly := flag.Bool("test", false, "decode every block without writing any output, reporting the first corruption found")
	statsOnly := flag.Bool("stats", false, "print per-block stats without writing any rows out")
	noExt := flag.Bool("no-ext", false, "write output without a trailing extension")
	renameExt := flag.String("rename-ext", "", "output extension to use instead of .sql")
	toStdout := flag.Bool("stdout", false, "write decoded rows to stdout instead of a file")
	dumpMetadata := flag.Bool("dump-metadata", false, "print the file's metadata block and exit")
	stdin := flag.Bool("i", false, "read a zdw stream from stdin")

	flag.Parse()

	inputs := flag.Args()
	if !*stdin && len(inputs) == 0 {
		zdwlog.Warn("zdw unconvert: no input files given (pass .zdw paths or -i)")
		os.Exit(zdw.MissingArgument.ExitCode())
	}

	opts := unconvertOptions{
		outDir:         *outDir,
		columns:        splitNonEmpty(*columns),
		columnsPad:     *columnsPad,
		columnsExclude: *columnsExclude,
		lenient:        *lenient,
		descOnly:       *descOnly,
		testOnly:       *testOnly,
		statsOnly:      *statsOnly,
		noExt:          *noExt,
		renameExt:      *renameExt,
		toStdout:       *toStdout,
		dumpMetadata:   *dumpMetadata,
	}

	if *stdin {
		runUnconvertOne("stdin", os.Stdin, opts)
		return
	}

	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			exitOnErr(zdw.WrapFileOpenErr(path, err))
		}
		runUnconvertOne(path, f, opts)
		f.Close()
	}
}

type unconvertOptions struct {
	outDir         string
	columns        []string
	columnsPad     bool
	columnsExclude bool
	lenient        bool
	descOnly       bool
	testOnly       bool
	statsOnly      bool
	noExt          bool
	renameExt      string
	toStdout       bool
	dumpMetadata   bool
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func runUnconvertOne(path string, f *os.File, opts unconvertOptions) {
	var r = bufferedFile(f)

	kind := compressor.FromExtension(path)
	if kind == compressor.None {
		peek, _ := r.Peek(6)
		kind = compressor.FromMagic(peek)
	}

	cr, err := compressor.NewReader(r, kind)
	if err != nil {
		exitOnErr(zdw.WrapFileOpenErr(path, err))
	}
	defer cr.Close()

	header, zerr := zdw.ReadFileHeader(cr)
	exitOnErr(zerr)

	if opts.dumpMetadata {
		for _, k := range header.Metadata.Keys() {
			v, _ := header.Metadata.Get(k)
			fmt.Printf("%s=%s\n", k, v)
		}
		return
	}

	if opts.descOnly {
		exitOnErr(zdw.WriteSchema(os.Stdout, header.Schema))
		return
	}

	if opts.testOnly {
		blockNum := 0
		for {
			blk, zerr := zdw.ReadBlock(cr, header.Schema, header.Version)
			exitOnErr(zerr)
			blockNum++
			if blk.LastBlock {
				break
			}
		}
		fmt.Printf("%s: OK (%d blocks)\n", path, blockNum)
		return
	}

	var shaper *zdw.Shaper
	if len(opts.columns) == 0 {
		shaper = zdw.NewShaper(header.Schema)
	} else {
		s, zerr := zdw.NewShaperFromNames(header.Schema, opts.columns, opts.columnsExclude, opts.lenient, opts.columnsPad)
		exitOnErr(zerr)
		shaper = s
	}

	var bw *bufio.Writer
	var closeOut func()
	if !opts.statsOnly {
		var out *os.File
		out, closeOut = openUnconvertOutput(path, opts)
		defer closeOut()
		bw = bufio.NewWriter(out)
		defer bw.Flush()
	}

	basename := zdw.ExportBasename(path)
	rowNum := 0

	blockNum := 0
	for {
		blk, zerr := zdw.ReadBlock(cr, header.Schema, header.Version)
		exitOnErr(zerr)
		blockNum++

		if opts.statsOnly {
			printBlockStats(blockNum, header.Schema, blk)
		} else {
			for _, row := range blk.Rows {
				rowNum++
				fields := shaper.Apply(row, basename, rowNum)
				writeTSVRow(bw, fields)
			}
		}
		if blk.LastBlock {
			break
		}
	}
}

func printBlockStats(blockNum int, schema *zdw.Schema, blk *zdw.Block) {
	fmt.Printf("block %d: num_rows=%d dict_size=%d\n", blockNum, blk.NumRows, blk.DictSize)
	for i, col := range schema.Columns {
		if blk.ColSize[i] == 0 {
			continue
		}
		fmt.Printf("  %s: size_bytes=%d min=%d\n", col.Name, blk.ColSize[i], blk.ColMin[i])
	}
}

func bufferedFile(f *os.File) *bufio.Reader {
	return bufio.NewReaderSize(f, 64*1024)
}

func openUnconvertOutput(path string, opts unconvertOptions) (*os.File, func()) {
	if opts.toStdout {
		return os.Stdout, func() {}
	}

	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, ".zdw")

	name := base
	switch {
	case opts.noExt:
		// no extension
	case opts.renameExt != "":
		name = base + "." + strings.TrimPrefix(opts.renameExt, ".")
	default:
		name = base + ".sql"
	}

	dir := opts.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	outPath := filepath.Join(dir, name)

	f, err := os.Create(outPath)
	if err != nil {
		exitOnErr(zdw.WrapFileCreationErr(outPath, err))
	}
	return f, func() { f.Close() }
}

func writeTSVRow(w *bufio.Writer, fields [][]byte) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte('\t')
		}
		w.Write(f)
	}
	w.WriteByte('\n')
}
